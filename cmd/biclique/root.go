package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/resultstore"
	miniostore "github.com/hupe1980/biclique/resultstore/minio"
	s3store "github.com/hupe1980/biclique/resultstore/s3"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "biclique",
		Short:        "Search block ciphers for independent bicliques",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file")

	cmd.AddCommand(
		newSearchCmd(flags),
		newListCmd(flags),
		newInspectCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biclique %s (%s)\n", version, runtime.Version())
		},
	}
}

func newLogger(cfg LogConfig, w io.Writer) (*biclique.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return biclique.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return biclique.NewLogger(slog.NewTextHandler(w, opts)), nil
}

// openStore returns nil for the "none" store.
func openStore(ctx context.Context, cfg OutputConfig) (resultstore.Store, error) {
	var (
		store resultstore.Store
		err   error
	)
	switch cfg.Store {
	case "none":
		return nil, nil
	case "local":
		// Local reads are not throttled.
		return resultstore.NewLocalStore(cfg.Dir, resultstore.WithWriteLimit(cfg.IOLimit)), nil
	case "minio":
		store, err = miniostore.New(cfg.Minio)
	case "s3":
		store, err = s3store.New(ctx, cfg.S3.Bucket,
			s3store.WithPrefix(cfg.S3.Prefix),
			s3store.WithRegion(cfg.S3.Region),
			s3store.WithEndpoint(cfg.S3.Endpoint),
		)
	default:
		return nil, fmt.Errorf("unknown output store %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	if cfg.IOLimit > 0 {
		store = resultstore.NewRateLimited(store, cfg.IOLimit)
	}
	return store, nil
}
