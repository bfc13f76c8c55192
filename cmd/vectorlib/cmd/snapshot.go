package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the JSON snapshot",
	}

	cmd.AddCommand(newSnapshotInfoCmd())
	return cmd
}

func newSnapshotInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the configured snapshot path and how many libraries it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.SnapshotPath == "" {
				fmt.Println("snapshot storage is disabled")
				return nil
			}

			svc, cleanup, err := buildService(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			libs := svc.ListLibraries(cmd.Context())
			fmt.Printf("snapshot path: %s\n", cfg.Storage.SnapshotPath)
			fmt.Printf("libraries: %d\n", len(libs))
			return nil
		},
	}
}
