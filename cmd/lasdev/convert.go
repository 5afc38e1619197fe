package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/textio"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		to        string
		delimiter string
		encoding  string
	)
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite a LAS file in canonical, unwrapped form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.loader.WriteOptions()
			if cmd.Flags().Changed("to") {
				target, err := las.ParseTarget(to)
				if err != nil {
					return err
				}
				opts.Target = target
			}
			if cmd.Flags().Changed("dlm") {
				opts.Delimiter = delimiter
			}
			if encoding != "" {
				if _, err := textio.Lookup(encoding); err != nil {
					return err
				}
			}

			doc, err := a.loader.ReadLAS(args[0])
			if err != nil {
				return err
			}
			if encoding != "" {
				doc.Encoding = encoding
			}
			if err := a.loader.WriteLAS(args[1], doc, opts); err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			log.Info().Str("in", args[0]).Str("out", args[1]).Str("dialect", opts.Target.String()).Msg("converted")
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "output dialect: keep, 2.0 or 3.0")
	cmd.Flags().StringVar(&delimiter, "dlm", "", "3.0 data delimiter: space, comma or tab")
	cmd.Flags().StringVar(&encoding, "encoding", "", "output encoding (default: encoding of the input)")
	return cmd
}
