package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "gomart",
	Short:         "GoMart storefront backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// @title GoMart API
// @version 1.0
// @description Catalog, server-side cart with stock reservations, and vendor stock management.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (default ./config.yaml when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
