package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"plyst/config"
	"plyst/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Check the preference store connection",
	Long:  `Connect to Redis and run a basic read/write round trip against the preference store.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		st, err := store.ConnectRedis(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer st.Close()

		if err := st.Check(context.Background()); err != nil {
			log.Fatalf("Store check failed: %v", err)
		}
		fmt.Println("Store check passed, connection closed.")
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
