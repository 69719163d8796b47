package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plyst/server"
)

var rootCmd = &cobra.Command{
	Use:   "plyst",
	Short: "PLYST is a music discovery backend.",
	Run: func(cmd *cobra.Command, args []string) {
		// Running without a subcommand starts the HTTP server.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
