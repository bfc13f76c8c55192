// Package cmd provides the CLI commands for vectorlib.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vectorlib/internal/config"
	"github.com/Aman-CERP/vectorlib/internal/index"
	"github.com/Aman-CERP/vectorlib/internal/lock"
	"github.com/Aman-CERP/vectorlib/internal/searchcache"
	"github.com/Aman-CERP/vectorlib/internal/service"
	"github.com/Aman-CERP/vectorlib/internal/store"
	"github.com/Aman-CERP/vectorlib/internal/vlog"
	"github.com/Aman-CERP/vectorlib/pkg/version"
)

var configDir string

// NewRootCmd creates the root command for the vectorlib CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vectorlib",
		Short:   "In-process vector database core",
		Long:    `vectorlib stores libraries of embedded chunks and serves approximate nearest-neighbor search over a pluggable index strategy.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("vectorlib version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory to look for vectorlib.yaml in")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// buildService wires a fresh Service from the effective configuration in
// configDir, restoring state from the configured snapshot path if one
// exists. The returned cleanup closes any log file opened for it and must
// be called once the service is no longer needed.
func buildService(cfg *config.Config) (*service.Service, func(), error) {
	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(service.Deps{
		Libraries:          store.NewLibraryRepository(),
		Documents:          store.NewDocumentRepository(),
		Chunks:             store.NewChunkRepository(),
		Locks:              lock.NewRegistry(),
		Indexes:            index.NewRegistry(),
		Cache:              searchcache.New(cfg.SearchCache.Size),
		Logger:             logger,
		DefaultIndexConfig: cfg.DefaultIndex,
	})

	if cfg.Storage.SnapshotPath != "" {
		loaded, err := svc.LoadSnapshot(cfg.Storage.SnapshotPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		if loaded {
			logger.Info("snapshot loaded", slog.String("path", cfg.Storage.SnapshotPath))
		}
	}

	return svc, cleanup, nil
}

// newLogger builds the logger vectorlib's CLI commands share. Most
// subcommands just want leveled JSON on stderr; setting server.log_file
// (or VECTORLIB_LOG_FILE) switches to internal/vlog's rotating file writer,
// tagged with a "server" component attribute, for long-running "serve".
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.Server.LogFile == "" {
		level := vlog.LevelFromString(cfg.Server.LogLevel)
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return logger, func() {}, nil
	}

	logger, cleanup, err := vlog.Setup(vlog.Config{
		Level:         cfg.Server.LogLevel,
		FilePath:      cfg.Server.LogFile,
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
		Component:     "server",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up file logging: %w", err)
	}
	return logger, cleanup, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
