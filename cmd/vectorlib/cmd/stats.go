package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vectorlib/internal/output"
	"github.com/Aman-CERP/vectorlib/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a summary of every library, its index type, and its chunk count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "open a live-updating dashboard instead of a one-shot summary")
	return cmd
}

func runStats(cmd *cobra.Command, watch bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := svc.RebuildAll(); err != nil {
		return err
	}

	if watch {
		return ui.RunStatsWatch(cmd.Context(), svc, cfg.Storage.SnapshotPath, time.Second)
	}

	w := output.New(os.Stdout)
	libs := svc.ListLibraries(cmd.Context())
	if len(libs) == 0 {
		w.Status("", "no libraries")
		return nil
	}

	for _, lib := range libs {
		docs, err := svc.ListDocumentsByLibrary(cmd.Context(), lib.ID)
		if err != nil {
			return err
		}
		w.Statusf("", "%s  name=%s  index=%s  dim=%d  documents=%d  version=%d",
			lib.ID, lib.Name, lib.IndexConfig.Type, lib.EmbeddingDim, len(docs), lib.Version)
	}
	return nil
}
