package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/lasdev/internal/compare"
)

func newCompareCmd(a *app) *cobra.Command {
	opts := compare.DefaultOptions()
	var dev bool
	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Check two files for equivalence within numeric tolerance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if dev {
				err = compareDev(a, args[0], args[1], opts)
			} else {
				err = compareLAS(a, args[0], args[1], opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("equal"))
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.RTol, "rtol", opts.RTol, "relative tolerance")
	cmd.Flags().Float64Var(&opts.ATol, "atol", opts.ATol, "absolute tolerance")
	cmd.Flags().BoolVar(&dev, "dev", false, "compare DEV surveys instead of LAS files")
	return cmd
}

func compareLAS(a *app, left, right string, opts compare.Options) error {
	da, err := a.loader.ReadLAS(left)
	if err != nil {
		return err
	}
	db, err := a.loader.ReadLAS(right)
	if err != nil {
		return err
	}
	return compare.Documents(da, db, opts)
}

func compareDev(a *app, left, right string, opts compare.Options) error {
	da, err := a.loader.ReadDev(left)
	if err != nil {
		return err
	}
	db, err := a.loader.ReadDev(right)
	if err != nil {
		return err
	}
	return compare.Dev(da, db, opts)
}
