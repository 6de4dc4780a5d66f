package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/perivale/s3mirror"
	"github.com/perivale/s3mirror/config"
	"github.com/perivale/s3mirror/mirrortypes"
)

var rootCmd = &cobra.Command{
	Use:   "s3mirror",
	Short: "Mirror trees of S3 objects into a local directory",
	Long: `s3mirror bulk-downloads objects from an S3 bucket into a local
directory that mirrors the remote layout. Objects already present
locally are skipped, so interrupted runs can simply be started again.

Configuration comes from a YAML file, a .env file and S3MIRROR_*
environment variables; flags override all of them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(auditCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Bucket to mirror from (overrides config)")
	rootCmd.PersistentFlags().String("endpoint", "", "Custom S3 endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringP("local-root", "l", "", "Local destination directory (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// loadConfig resolves the effective configuration for a command,
// merging flag overrides over file and environment values. Validation
// is left to the command, which may still override targets from its
// arguments.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	var overrides config.Config
	overrides.Bucket, _ = cmd.Flags().GetString("bucket")
	overrides.Endpoint, _ = cmd.Flags().GetString("endpoint")
	overrides.LocalRoot, _ = cmd.Flags().GetString("local-root")
	if isVerbose(cmd) {
		overrides.LogLevel = "debug"
	}
	return cfg.Merge(overrides), nil
}

// isVerbose reads the persistent verbose flag.
func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// newLogger builds the run logger from the configured level.
func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
}

// newClient builds the mirror client from the configuration. Custom
// endpoints imply path-style addressing, which every S3-compatible
// local stack expects.
func newClient(cfg config.Config, logger *slog.Logger) (*s3mirror.Client, error) {
	opts := []mirrortypes.Option{
		s3mirror.WithRegion(cfg.Region),
		s3mirror.WithPageSize(int32(cfg.PageSize)),
		s3mirror.WithLogger(logger),
	}
	switch {
	case cfg.Endpoint != "":
		opts = append(opts,
			s3mirror.WithEndpoint(cfg.Endpoint),
			s3mirror.WithForcePathStyle(true))
	case cfg.ForcePathStyle:
		opts = append(opts, s3mirror.WithForcePathStyle(true))
	}
	return s3mirror.New(opts...)
}

// mirrorOptions builds the per-run options from the configuration.
func mirrorOptions(cfg config.Config, reporter mirrortypes.Reporter) []mirrortypes.MirrorOption {
	opts := []mirrortypes.MirrorOption{
		s3mirror.WithSubfolders(cfg.Subfolders...),
		s3mirror.WithFilenames(cfg.Filenames...),
		s3mirror.WithConcurrency(cfg.Concurrency),
		s3mirror.WithAbortPolicy(cfg.Abort()),
		s3mirror.WithCountEmptyTargets(cfg.CountEmptyTargets),
	}
	if reporter != nil {
		opts = append(opts, s3mirror.WithReporter(reporter))
	}
	return opts
}
