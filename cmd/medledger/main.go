package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "medledger",
		Short:         "Patient record registry with wallet-gated document access",
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to an env-format config file (default .env)")

	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(migrateCmd(&configFile))
	rootCmd.AddCommand(rosterCmd(&configFile))
	rootCmd.AddCommand(tokenCmd(&configFile))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
