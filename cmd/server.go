package cmd

import (
	"github.com/spf13/cobra"

	"plyst/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the PLYST HTTP server",
	Long:  `Start the PLYST backend: Spotify catalog proxy, YouTube track resolution and the playback session API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
