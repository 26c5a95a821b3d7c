package cmd

import (
	"fmt"

	"erp-backend/database"
	"erp-backend/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and migrate a tenant schema",
	Example: `  erp-backend migrate --schema acme`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("schema", "", "Tenant schema to create or upgrade")
	_ = migrateCmd.MarkFlagRequired("schema")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")
	schema, _ := cmd.Flags().GetString("schema")

	if err := database.ValidSchema(schema); err != nil {
		return err
	}
	if err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.MigrateTenantSchema(schema); err != nil {
		return fmt.Errorf("migrate %s: %w", schema, err)
	}

	log.Info().Str("schema", schema).Msg("Tenant schema migrated")
	return nil
}
