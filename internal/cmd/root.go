// Package cmd implements the command-line interface for tsugi.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/ui/tui"
	"github.com/tsugi-app/tsugi/internal/version"
)

// cfg is the loaded application configuration, set by Execute before any
// command runs.
var cfg *config.Config

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
	rootCmd.PersistentFlags().StringP("quality", "q", "", "Preferred stream quality (e.g. 1080, 720)")
	rootCmd.PersistentFlags().StringP("translation", "t", "", "Translation type: sub or dub")
}

// rootCmd launches the interactive TUI.
var rootCmd = &cobra.Command{
	Use:   "tsugi",
	Short: "Watch anime from the terminal with seamless episode navigation",
	Long: "Tsugi searches AniList, resolves streams, and plays them in mpv.\n" +
		"During playback Shift+N / Shift+P jump between episodes without\n" +
		"restarting the player, and finished episodes sync back to AniList.",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		checkDependencies()
		applyFlagOverrides(cmd)
		handleErr(tui.Run(cfg))
	},
}

// Execute is the CLI entry point.
func Execute(loadedCfg *config.Config) {
	cfg = loadedCfg

	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// applyFlagOverrides layers command-line flags over the loaded config
func applyFlagOverrides(cmd *cobra.Command) {
	if quality := lo.Must(cmd.Flags().GetString("quality")); quality != "" {
		cfg.Stream.Quality = quality
	}
	if translation := lo.Must(cmd.Flags().GetString("translation")); translation != "" {
		cfg.Stream.TranslationType = translation
	}
}

// checkDependencies verifies the configured player binary is reachable before
// starting a session that will need it.
func checkDependencies() {
	playerPath := cfg.Player.Path
	if playerPath == "" {
		playerPath = "mpv"
	}

	if _, err := exec.LookPath(playerPath); err != nil {
		printMissingDependencyError(playerPath)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install mpv"
	case "linux":
		installCmd = "sudo apt install mpv"
	case "windows":
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#E06C75")).
		Padding(1, 2).
		Margin(1, 0)

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E06C75")).
		Render("Error: Missing Dependency")
	body := fmt.Sprintf("The required player '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s",
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5AC8FA")).Render(installCmd))
	}

	fmt.Println(box.Render(title + "\n\n" + body + suggestion))
}

func handleErr(err error) {
	if err != nil {
		log.Error("Command failed", "error", err)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

// versionCmd displays application version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(version.GetVersion())
			return
		}

		cmd.Printf("%s\n  Build Date  %s\n  Platform    %s/%s\n",
			version.GetVersionInfo(), version.GetBuildTime(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string")
}
