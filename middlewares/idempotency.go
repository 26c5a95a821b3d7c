package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"erp-backend/database"
	"erp-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Idempotency processes Idempotency-Key for mutating HTTP methods in a schema-safe way.
// It uses its own short transaction and SET LOCAL search_path to avoid leaking search_path
// on pooled connections. A retried payment post replays the stored response instead of
// allocating the money a second time.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		schema, _ := c.Locals("schema").(string)
		userID, _ := c.Locals("userID").(string)
		if schema == "" || userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
		}
		if database.DB == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}

		path := c.OriginalURL()
		reqHash := requestHash(method, path, c.Body(), userID)

		// ---- Phase 1: read/create "pending" under a short TX
		var existing models.IdempotencyKey
		replay := false
		err := database.WithTenant(schema, func(tx *gorm.DB) error {
			if err := tx.Where("key = ?", key).First(&existing).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
				}
				rec := models.IdempotencyKey{
					Key:         key,
					RequestHash: reqHash,
					Method:      method,
					Path:        path,
					UserID:      userID,
				}
				if e2 := tx.Create(&rec).Error; e2 != nil {
					// unique race: read again
					if e3 := tx.Where("key = ?", key).First(&existing).Error; e3 != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
					}
				} else {
					existing = rec
					return nil
				}
			}

			if existing.RequestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			if existing.Completed() {
				replay = true
				return nil
			}
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		})
		if err != nil {
			return err
		}
		if replay {
			c.Set("Idempotent-Replayed", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(existing.ResponseStatus).Send([]byte(existing.ResponseBody))
		}

		if err := c.Next(); err != nil {
			_ = database.WithTenant(schema, func(tx *gorm.DB) error {
				return tx.Where("key = ? AND response_status = 0", key).Delete(&models.IdempotencyKey{}).Error
			})
			return err
		}

		// ---- Phase 2: store the response under another short TX
		status := c.Response().StatusCode()
		resp := c.Response().Body()
		if status >= fiber.StatusBadRequest || !json.Valid(resp) {
			// nothing worth replaying; let the client retry
			_ = database.WithTenant(schema, func(tx *gorm.DB) error {
				return tx.Where("key = ?", key).Delete(&models.IdempotencyKey{}).Error
			})
			return nil
		}
		blob := make([]byte, len(resp))
		copy(blob, resp)
		_ = database.WithTenant(schema, func(tx *gorm.DB) error {
			now := time.Now().UTC()
			return tx.Model(&models.IdempotencyKey{}).
				Where("key = ?", key).
				Updates(map[string]any{
					"response_status": status,
					"response_body":   blob,
					"completed_at":    &now,
				}).Error
		})
		return nil
	}
}

// requestHash is sha256 over method|path|body|user. The schema is not part of
// it because keys live in the tenant's own schema.
func requestHash(method, path string, body []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}
