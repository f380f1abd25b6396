package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
)

func newSeedCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load *.tex templates from a directory",
		Long: `Create one public template per *.tex file in --dir, named after the file.
Templates that already exist are left untouched.

Example:
  resumectl seed --dir ./templates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			svc, closeDB, err := bootstrap.OpenTemplates(ctx, cfg)
			if err != nil {
				return errors.Wrap(err, "open template store")
			}
			defer closeDB()

			report, err := svc.Seed(ctx, dir)
			if err != nil {
				return errors.Wrapf(err, "seed templates from %s", dir)
			}
			out := cmd.OutOrStdout()
			for _, name := range report.Created {
				fmt.Fprintf(out, "created %s\n", name)
			}
			for _, name := range report.Skipped {
				fmt.Fprintf(out, "skipped %s (exists)\n", name)
			}
			fmt.Fprintf(out, "%d created, %d skipped\n", len(report.Created), len(report.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "templates", "Directory of .tex templates")
	return cmd
}
