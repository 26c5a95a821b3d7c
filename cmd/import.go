package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"erp-backend/database"
	"erp-backend/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a legacy JSON export into a tenant",
	Long: `Import normalizes a legacy export (mixed field names, inline payments,
mutated cash and bank balances) and bulk-inserts it into a tenant schema.
The schema is migrated first. Everything runs in one transaction.`,
	Example: `  erp-backend import --schema acme --file export.json`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("schema", "", "Tenant schema to import into")
	importCmd.Flags().String("file", "", "Path to the legacy JSON export")
	_ = importCmd.MarkFlagRequired("schema")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")
	schema, _ := cmd.Flags().GetString("schema")
	file, _ := cmd.Flags().GetString("file")

	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.MigrateTenantSchema(schema); err != nil {
		return err
	}

	var res database.ImportResult
	err = database.WithTenant(schema, func(tx *gorm.DB) error {
		var err error
		res, err = database.ImportLegacy(tx, raw)
		return err
	})
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		log.Warn().Str("schema", schema).Msg(w)
	}
	log.Info().
		Str("schema", schema).
		Interface("counts", res.Counts).
		Int("warnings", len(res.Warnings)).
		Msg("Legacy snapshot imported")

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
