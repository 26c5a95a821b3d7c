package database

import (
	"fmt"

	"erp-backend/models"

	"gorm.io/gorm"
)

// TenantModels are the tables every tenant schema carries.
var TenantModels = []any{
	&models.Customer{},
	&models.Supplier{},
	&models.Item{},
	&models.Invoice{},
	&models.Payment{},
	&models.Bank{},
	&models.Expense{},
	&models.Return{},
	&models.Note{},
	&models.CashEntry{},
	&models.Settings{},
	&models.IdempotencyKey{},
}

// MigrateTenantSchema applies (idempotent) schema migrations for a single tenant schema.
// It creates the schema when missing, pins search_path to it and performs:
// - AutoMigrate (tables/columns)
// - Indexes (invoice numbering, payment lookups)
// - Basic CHECK constraints
func MigrateTenantSchema(schema string) error {
	if err := CreateSchema(schema); err != nil {
		return err
	}

	return WithTenant(schema, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(TenantModels...); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_kind_number ON invoices (kind, number) WHERE number <> ''`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_kind_date ON invoices (kind, date)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_invoice_date ON payments (invoice_id, date)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_party ON payments (party_type, party_id)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := []struct{ table, name, expr string }{
			{"payments", "chk_payments_amount_nonneg", "amount >= 0 AND discount >= 0"},
			{"payments", "chk_payments_type", "type IN ('in', 'out')"},
			{"invoices", "chk_invoices_kind", "kind IN ('sale', 'purchase')"},
			{"invoices", "chk_invoices_fx_rate_pos", "fx_rate_to_business > 0"},
			{"expenses", "chk_expenses_amount_nonneg", "amount >= 0"},
		}
		for _, ck := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
	END IF;
END $$;`, ck.table, ck.name, ck.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", ck.name, err)
			}
		}
		return nil
	})
}
