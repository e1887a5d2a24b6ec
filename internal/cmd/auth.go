package cmd

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tsugi-app/tsugi/internal/auth"
	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/repository/anilist"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.Flags().Bool("logout", false, "Remove the stored AniList token")
}

// authCmd runs the browser-based AniList login and stores the token in the
// system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with AniList",
	Long: "Opens the AniList authorization page in your browser and waits for\n" +
		"approval.  The access token is stored in the system keyring, never in\n" +
		"the config file.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("logout")) {
			handleErr(auth.DeleteToken())
			fmt.Println("Logged out.  The stored AniList token has been removed.")
			return
		}

		flow := auth.NewFlow()
		fmt.Println("Opening browser for AniList login...")
		fmt.Println("If nothing opens, visit:", flow.LoginURL())

		result := flow.Run(context.Background())
		handleErr(result.Error)

		// Validate the token before trusting it
		client, err := anilist.NewClient(context.Background(), result.Token)
		handleErr(err)

		handleErr(auth.StoreToken(result.Token))
		log.Info("Stored AniList token", "user", client.User().Name)
		fmt.Printf("Authenticated as %s.\n", client.User().Name)
	},
}
