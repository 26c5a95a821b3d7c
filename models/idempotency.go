package models

import (
	"time"

	"gorm.io/datatypes"
)

// IdempotencyKey remembers the first completed response of a mutating request
// (payment posting, invoice save) so client retries do not post money twice.
// It lives in the tenant schema.
type IdempotencyKey struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Key            string         `json:"key" gorm:"size:128;uniqueIndex"`
	RequestHash    string         `json:"request_hash" gorm:"size:64"` // sha256 of method|path|body|user
	Method         string         `json:"method" gorm:"size:10"`
	Path           string         `json:"path" gorm:"size:255"`
	UserID         string         `json:"user_id" gorm:"size:128"`
	ResponseStatus int            `json:"response_status"` // 0 while the first request is still running
	ResponseBody   datatypes.JSON `json:"-" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

// Completed reports whether a stored response can be replayed.
func (k *IdempotencyKey) Completed() bool {
	return k.ResponseStatus != 0 && len(k.ResponseBody) > 0
}
