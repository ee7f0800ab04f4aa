package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/seqatlas/internal/api"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refetch the reference collection and rewrite the local snapshot",
	Long: `Refresh forces a download of the reference collection, replacing both the
in-memory cache and the local sqlite snapshot in one step. Use it when the
upstream dataset has been updated and the snapshot has not yet expired.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	client := api.NewClient(cfg.API)
	cache, closeStore := openCache(client, cfg.Cache)
	defer closeStore()

	if err := cache.Refresh(cmd.Context()); err != nil {
		return discardKeyOnAuth(err)
	}

	fmt.Printf("Reference collection refreshed: %d entries as of %s\n",
		cache.Index().Len(), cache.LoadedAt().Format("2006-01-02 15:04:05 MST"))
	return nil
}
