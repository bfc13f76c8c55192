package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vectorlib/internal/service"
	transporthttp "github.com/Aman-CERP/vectorlib/internal/transport/http"
	"github.com/Aman-CERP/vectorlib/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the vectorlib HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configured server.address")
	return cmd
}

func runServe(ctx context.Context, addrOverride string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.Server.Address = addrOverride
	}

	svc, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := svc.RebuildAll(); err != nil {
		return fmt.Errorf("failed to rebuild indexes: %w", err)
	}

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: transporthttp.New(svc),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.SnapshotPath != "" {
		go watchSnapshot(ctx, svc, cfg.Storage.SnapshotPath)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("vectorlib listening", slog.String("address", cfg.Server.Address))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server cleanly: %w", err)
		}
	}

	if cfg.Storage.SnapshotPath != "" {
		if err := svc.SaveSnapshot(cfg.Storage.SnapshotPath); err != nil {
			return fmt.Errorf("failed to save snapshot on shutdown: %w", err)
		}
		slog.Info("snapshot saved", slog.String("path", cfg.Storage.SnapshotPath))
	}

	return nil
}

// watchSnapshot reloads the snapshot file into svc whenever it changes on
// disk, letting an operator restore a backup or sync a snapshot from another
// process without restarting the server. Errors are logged, not fatal: a
// malformed snapshot write should not take down a running server.
func watchSnapshot(ctx context.Context, svc *service.Service, path string) {
	w := watcher.New(path)
	err := w.Watch(ctx, func() {
		loaded, err := svc.LoadSnapshot(path)
		if err != nil {
			slog.Error("failed to reload snapshot", slog.String("path", path), slog.Any("error", err))
			return
		}
		if loaded {
			slog.Info("reloaded snapshot after external change", slog.String("path", path))
		}
	})
	if err != nil {
		slog.Error("snapshot watcher stopped", slog.Any("error", err))
	}
}
