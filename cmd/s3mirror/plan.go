package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perivale/s3mirror/errors"
)

var planCmd = &cobra.Command{
	Use:   "plan [targets...]",
	Short: "Show what a run would download without fetching anything",
	Long: `Plan performs the listing pass only: it discovers subfolders,
expands the configured filenames and child subfolders into transfer
items and prints them. Nothing is written to disk and no object body
is fetched.`,
	Example: `  s3mirror plan --config mirror.yaml
  s3mirror plan --config mirror.yaml -v folder1`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Targets = args
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := newLogger(cfg)
		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		result, err := client.Plan(cmd.Context(),
			cfg.Bucket, cfg.BasePrefix, cfg.LocalRoot, cfg.Targets,
			mirrorOptions(cfg, nil)...)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderPlan(result, isVerbose(cmd)))
		if result.TotalItems() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), renderWarning(errors.ErrEmptyPlan.Error()))
		}
		return nil
	},
}
