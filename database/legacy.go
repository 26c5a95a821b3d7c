package database

import (
	"fmt"

	"erp-backend/billing"
	"erp-backend/ledger"
	"erp-backend/models"

	"gorm.io/gorm"
)

// ImportResult reports what a legacy import wrote and what the normalizer had to guess.
type ImportResult struct {
	Counts   ImportCounts `json:"counts"`
	Warnings []string     `json:"warnings"`
}

// PrepareLegacy normalizes a legacy export into a snapshot that can be stored as is:
// mutated cash/bank balances become opening balances and every invoice gets
// fresh paid/balance fields.
func PrepareLegacy(raw []byte) (*models.NormalizeResult, error) {
	res, err := models.NormalizeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	ledger.RebaseOpeningBalances(res)
	res.Snapshot.Apply(models.Patch{Invoices: billing.SyncAll(res.Snapshot)})
	return res, nil
}

// ImportLegacy prepares raw and bulk-inserts it into the tenant bound to db.
func ImportLegacy(db *gorm.DB, raw []byte) (ImportResult, error) {
	const op = "database.ImportLegacy"

	res, err := PrepareLegacy(raw)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%s: %w", op, err)
	}
	counts, err := ImportSnapshot(db, res.Snapshot)
	if err != nil {
		return ImportResult{Counts: counts, Warnings: res.Warnings}, err
	}
	return ImportResult{Counts: counts, Warnings: res.Warnings}, nil
}
