package database

import (
	"errors"
	"fmt"
	"strings"

	"erp-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 200

// LoadSnapshot reads every collection of the tenant bound to db.
func LoadSnapshot(db *gorm.DB) (*models.Snapshot, error) {
	const op = "database.LoadSnapshot"

	var invoices []models.Invoice
	snap := &models.Snapshot{}
	loads := []struct {
		name string
		dst  any
	}{
		{"invoices", &invoices},
		{"payments", &snap.Payments},
		{"customers", &snap.Customers},
		{"suppliers", &snap.Suppliers},
		{"items", &snap.Items},
		{"banks", &snap.Banks},
		{"expenses", &snap.Expenses},
		{"returns", &snap.Returns},
		{"notes", &snap.Notes},
		{"cash entries", &snap.CashEntries},
	}
	for _, l := range loads {
		if err := db.Find(l.dst).Error; err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, l.name, err)
		}
	}
	for _, inv := range invoices {
		if inv.Kind == models.KindPurchase {
			snap.Purchases = append(snap.Purchases, inv)
		} else {
			snap.Sales = append(snap.Sales, inv)
		}
	}

	settings, err := LoadSettings(db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	snap.CashInHand = settings.CashInHand
	snap.BaseCurrency = settings.BaseCurrency
	snap.CurrencySymbol = settings.CurrencySymbol
	return snap, nil
}

// LoadSettings returns the tenant's settings row, or a zero value when none exists.
func LoadSettings(db *gorm.DB) (models.Settings, error) {
	var s models.Settings
	err := db.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Settings{}, nil
	}
	return s, err
}

// ApplyPatch persists a patch in the order models.Snapshot.Apply merges it.
func ApplyPatch(db *gorm.DB, p models.Patch) error {
	const op = "database.ApplyPatch"

	if len(p.DeletePaymentIDs) > 0 {
		if err := db.Where("id IN ?", p.DeletePaymentIDs).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("%s: delete payments: %w", op, err)
		}
	}
	for i := range p.UpdatePayments {
		if err := db.Save(&p.UpdatePayments[i]).Error; err != nil {
			return fmt.Errorf("%s: update payment %s: %w", op, p.UpdatePayments[i].ID, err)
		}
	}
	if len(p.CreatePayments) > 0 {
		if err := db.Create(&p.CreatePayments).Error; err != nil {
			return fmt.Errorf("%s: create payments: %w", op, err)
		}
	}
	if len(p.DeleteInvoiceIDs) > 0 {
		if err := db.Where("id IN ?", p.DeleteInvoiceIDs).Delete(&models.Invoice{}).Error; err != nil {
			return fmt.Errorf("%s: delete invoices: %w", op, err)
		}
	}
	for _, ip := range p.Invoices {
		err := db.Model(&models.Invoice{}).Where("id = ?", ip.ID).Updates(map[string]any{
			"paid_total_local": ip.PaidTotalLocal,
			"balance_local":    ip.BalanceLocal,
			"status":           ip.Status,
		}).Error
		if err != nil {
			return fmt.Errorf("%s: sync invoice %s: %w", op, ip.ID, err)
		}
	}
	return nil
}

// ImportCounts is how many rows of each collection an import wrote.
type ImportCounts map[string]int

// ImportSnapshot bulk-inserts a normalized snapshot into the tenant bound to db.
func ImportSnapshot(db *gorm.DB, snap *models.Snapshot) (ImportCounts, error) {
	const op = "database.ImportSnapshot"

	counts := ImportCounts{}
	insert := func(name string, rows any, n int) error {
		if n == 0 {
			return nil
		}
		// re-importing the same export overwrites rows by primary key
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, importBatchSize).Error; err != nil {
			return fmt.Errorf("%s: %s: %w", op, name, err)
		}
		counts[name] = n
		return nil
	}

	invoices := snap.Invoices()
	steps := []struct {
		name string
		rows any
		n    int
	}{
		{"customers", &snap.Customers, len(snap.Customers)},
		{"suppliers", &snap.Suppliers, len(snap.Suppliers)},
		{"items", &snap.Items, len(snap.Items)},
		{"banks", &snap.Banks, len(snap.Banks)},
		{"invoices", &invoices, len(invoices)},
		{"payments", &snap.Payments, len(snap.Payments)},
		{"expenses", &snap.Expenses, len(snap.Expenses)},
		{"returns", &snap.Returns, len(snap.Returns)},
		{"notes", &snap.Notes, len(snap.Notes)},
		{"cashEntries", &snap.CashEntries, len(snap.CashEntries)},
	}
	for _, s := range steps {
		if err := insert(s.name, s.rows, s.n); err != nil {
			return counts, err
		}
	}

	settings, err := LoadSettings(db)
	if err != nil {
		return counts, fmt.Errorf("%s: settings: %w", op, err)
	}
	settings.CashInHand = snap.CashInHand
	if snap.BaseCurrency != "" {
		settings.BaseCurrency = strings.ToUpper(snap.BaseCurrency)
	}
	if snap.CurrencySymbol != "" {
		settings.CurrencySymbol = snap.CurrencySymbol
	}
	if err := db.Save(&settings).Error; err != nil {
		return counts, fmt.Errorf("%s: settings: %w", op, err)
	}
	return counts, nil
}
