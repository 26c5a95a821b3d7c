package controllers

import (
	"strings"
	"time"

	"erp-backend/database"
	"erp-backend/logger"
	"erp-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	defaultCurrency = "USD"
	defaultSymbol   = "$"
)

// SetDefaults sets the currency used for tenants whose settings row has none.
func SetDefaults(baseCurrency, currencySymbol string) {
	if baseCurrency != "" {
		defaultCurrency = strings.ToUpper(baseCurrency)
	}
	if currencySymbol != "" {
		defaultSymbol = currencySymbol
	}
}

func requestLog(c *fiber.Ctx, component string) zerolog.Logger {
	schema, _ := c.Locals("schema").(string)
	userID, _ := c.Locals("userID").(string)
	return logger.WithTenant(component, schema, userID)
}

// tenantSnapshot loads the tenant snapshot on the request's TX.
func tenantSnapshot(c *fiber.Ctx) (*gorm.DB, *models.Snapshot, error) {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return nil, nil, err
	}
	snap, err := database.LoadSnapshot(db)
	if err != nil {
		return nil, nil, err
	}
	if snap.BaseCurrency == "" {
		snap.BaseCurrency = defaultCurrency
	}
	if snap.CurrencySymbol == "" {
		snap.CurrencySymbol = defaultSymbol
	}
	return db, snap, nil
}

func parsePartyType(raw string) (models.PartyType, error) {
	pt := models.PartyType(strings.ToLower(strings.TrimSpace(raw)))
	if !pt.Valid() {
		return "", fiber.NewError(fiber.StatusBadRequest, "partyType must be customer or supplier")
	}
	return pt, nil
}

// parseDay reads a YYYY-MM-DD (or RFC3339) query value. endOfDay moves a bare date
// to its last nanosecond so "to" stays inclusive.
func parseDay(c *fiber.Ctx, key string, endOfDay bool) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+" date, expected YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func findInvoice(snap *models.Snapshot, id string) (*models.Invoice, error) {
	if inv, ok := snap.InvoiceIndex()[id]; ok {
		return inv, nil
	}
	return nil, fiber.NewError(fiber.StatusNotFound, "invoice not found")
}

func findPayment(snap *models.Snapshot, id string) (models.Payment, error) {
	for _, p := range snap.Payments {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Payment{}, fiber.NewError(fiber.StatusNotFound, "payment not found")
}
