package database

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetTenantDB returns a *gorm.DB bound to the request's tenant.
// Prefer an existing per-request TX (middlewares.TenantTx), else fall back to a session
// where we set the search_path for the connection.
func GetTenantDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}

	schema, _ := c.Locals("schema").(string)
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return nil, ErrTenantMissing
	}
	if err := ValidSchema(schema); err != nil {
		return nil, err
	}
	if DB == nil {
		return nil, ErrNotInitialized
	}

	sess := DB.Session(&gorm.Session{})
	if err := sess.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
		return nil, fmt.Errorf("set search_path failed: %w", err)
	}
	return sess, nil
}

// PinTenant scopes tx to schema until the transaction ends.
func PinTenant(tx *gorm.DB, schema string) error {
	if err := ValidSchema(schema); err != nil {
		return err
	}
	if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
		return fmt.Errorf("set search_path failed: %w", err)
	}
	return nil
}

// WithTenant runs fn in one transaction pinned to schema. Used outside HTTP
// requests (CLI import, migrations).
func WithTenant(schema string, fn func(tx *gorm.DB) error) error {
	if DB == nil {
		return ErrNotInitialized
	}
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := PinTenant(tx, schema); err != nil {
			return err
		}
		return fn(tx)
	})
}
