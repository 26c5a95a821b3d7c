package cmd

import (
	"fmt"
	"os"

	"erp-backend/config"
	"erp-backend/controllers"
	"erp-backend/logger"
	"erp-backend/middlewares"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "erp-backend",
	Short: "Invoice, payment and party ledger backend",
	Long: `erp-backend serves the multi-tenant invoicing API and ships the
maintenance commands around it: tenant migrations, legacy imports,
offline party statements and development tokens.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Setup(c.GetLoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = c
		middlewares.SetJWTSecret(c.JWTSecret)
		controllers.SetDefaults(c.BaseCurrency, c.CurrencySymbol)
		return nil
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
