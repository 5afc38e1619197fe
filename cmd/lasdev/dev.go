package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/lasdev/internal/dev"
)

func newDevCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dev FILE",
		Short: "Parse a DEV deviation survey and print or write it canonically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loader.ReadDev(args[0])
			if err != nil {
				return err
			}
			if out != "" {
				return a.loader.WriteDev(out, doc)
			}
			var b strings.Builder
			if err := dev.Encode(&b, doc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), field("columns", strings.Join(doc.Columns, " ")))
			fmt.Fprintln(cmd.ErrOrStderr(), field("rows", fmt.Sprint(doc.Rows())))
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the canonical survey to this path")
	return cmd
}
