package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Configuration flags (-a, -d, -c, ...) are read by config.LoadConfig from
// os.Args, so cobra is told to let them through.
var passConfigFlags = cobra.FParseErrWhitelist{UnknownFlags: true}

var rootCmd = &cobra.Command{
	Use:   "signify",
	Short: "Signify - learning platform backend",
	Long: `Signify serves the learning platform API: accounts, sessions with
daily practice streaks, lessons, practice scoring and chat history.

Without a subcommand it runs the server.`,
	Version:            Version,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: passConfigFlags,
	SilenceUsage:       true,
	RunE:               runServe,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Signify version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reclaimCmd)
	rootCmd.AddCommand(adduserCmd)
}
