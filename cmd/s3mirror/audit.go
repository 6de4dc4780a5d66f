package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perivale/s3mirror/errors"
)

var auditCmd = &cobra.Command{
	Use:   "audit [root]",
	Short: "Check mirrored files against the types their names claim",
	Long: `Audit walks a mirrored tree and sniffs each file whose extension
maps to a known content type. Files whose content disagrees with their
extension are reported; stored error pages and truncated downloads
typically show up this way.

The root argument overrides the configured local_root.`,
	Example: `  s3mirror audit --config mirror.yaml
  s3mirror audit ./archive`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		root := cfg.LocalRoot
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			return fmt.Errorf("%w: local root is required", errors.ErrInvalidConfig)
		}

		logger := newLogger(cfg)
		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		report, err := client.Audit(cmd.Context(), root)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderAudit(report))
		return nil
	},
}
