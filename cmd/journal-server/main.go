package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/journal/internal/config"
	"github.com/ehr/journal/internal/platform/snapshot"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "journal-server",
		Short: "Clinical journal server backed by XML collection files",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(snapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the journal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create missing collection files with their seed content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a := newApp(cfg, logger, nil)
			if err := a.initCollections(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collections ready in %s\n", cfg.DataDir)
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Decode every collection file and report its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a := newApp(cfg, logger, nil)
			return runCheck(cmd.Context(), cmd.OutOrStdout(), a)
		},
	}
}

func snapshotCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Upload the collection files to the configured S3 bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.SnapshotEnabled() {
				return fmt.Errorf("SNAPSHOT_BUCKET is not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := snapshot.NewClient(ctx, snapshot.Config{
				Bucket:    cfg.SnapshotBucket,
				Region:    cfg.SnapshotRegion,
				Endpoint:  cfg.SnapshotEndpoint,
				Prefix:    cfg.SnapshotPrefix,
				PathStyle: cfg.SnapshotPathStyle,
			})
			if err != nil {
				return err
			}

			a := newApp(cfg, logger, nil)
			s := snapshot.New(client, cfg.SnapshotBucket, cfg.SnapshotPrefix, logger)
			objects, err := s.Upload(ctx, a.files())
			if err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			for _, o := range objects {
				fmt.Fprintf(cmd.OutOrStdout(), "s3://%s/%s (%d bytes)\n", cfg.SnapshotBucket, o.Key, o.Bytes)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall upload deadline")
	return cmd
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	logger := newLogger(os.Getenv("ENV"), "info")

	cfg, err := config.Load()
	if err != nil {
		return nil, logger, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, logger, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, newLogger(cfg.Env, cfg.LogLevel), nil
}

func newLogger(env, level string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
