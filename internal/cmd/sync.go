package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsugi-app/tsugi/internal/auth"
	"github.com/tsugi-app/tsugi/internal/registry"
	"github.com/tsugi-app/tsugi/internal/repository/anilist"
	"github.com/tsugi-app/tsugi/internal/service"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

// syncCmd pushes progress recorded while offline to AniList without opening
// the TUI.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push locally recorded watch progress to AniList",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		client, err := anilist.NewClient(ctx, auth.ResolveToken(cfg))
		handleErr(err)
		if !client.Authenticated() {
			handleErr(fmt.Errorf("not authenticated, run 'tsugi auth' first"))
		}

		reg, err := registry.Load()
		handleErr(err)

		svc := service.NewWatchService(cfg, nil, anilist.NewMediaRepository(client), reg)
		count, err := svc.SyncDirty(ctx)
		handleErr(err)

		if count == 0 {
			fmt.Println("Nothing to sync.")
			return
		}
		fmt.Printf("Synced %d show(s) to AniList.\n", count)
	},
}
