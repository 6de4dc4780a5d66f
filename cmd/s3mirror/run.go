package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perivale/s3mirror/mirrortypes"
)

var runCmd = &cobra.Command{
	Use:   "run [targets...]",
	Short: "Mirror the configured scan targets to the local root",
	Long: `Run discovers the subfolders under every scan target, plans the
objects to transfer and downloads whatever is not on disk yet.

Targets given as arguments override the configured target list.
Individual download failures are counted and reported but do not fail
the command; only configuration and listing errors exit non-zero.`,
	Example: `  s3mirror run --config mirror.yaml
  s3mirror run --config mirror.yaml folder1 folder2
  S3MIRROR_BUCKET=my-bucket S3MIRROR_LOCAL_ROOT=./archive s3mirror run folder1`,
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

		var reporter mirrortypes.Reporter
		if isVerbose(cmd) {
			reporter = newConsoleReporter(cmd.OutOrStdout())
		}

		result, err := client.Mirror(cmd.Context(),
			cfg.Bucket, cfg.BasePrefix, cfg.LocalRoot, cfg.Targets,
			mirrorOptions(cfg, reporter)...)
		if result != nil {
			fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(result))
		}
		return err
	},
}
