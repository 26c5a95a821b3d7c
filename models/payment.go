package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentIn  PaymentType = "in"  // customer -> business
	PaymentOut PaymentType = "out" // business -> supplier
)

type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodBank PaymentMethod = "bank"
)

// Payment is money movement tied to zero or one invoice. One allocation across
// several invoices yields one Payment per invoice, sharing a GroupID.
type Payment struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	GroupID   string      `json:"groupId,omitempty" gorm:"index"`
	Type      PaymentType `json:"type" gorm:"size:3;not null" validate:"oneof=in out"`
	Date      time.Time   `json:"date" gorm:"index"`
	PartyID   string      `json:"partyId,omitempty" gorm:"index"`
	PartyType PartyType   `json:"partyType,omitempty" gorm:"size:10"`
	InvoiceID string      `json:"invoiceId,omitempty" gorm:"index"`

	Amount   float64 `json:"amount" gorm:"type:numeric(14,2)" validate:"gte=0"`
	Discount float64 `json:"discount" gorm:"type:numeric(14,2)" validate:"gte=0"`

	Method PaymentMethod `json:"method" gorm:"size:10" validate:"omitempty,oneof=cash bank"`
	BankID string        `json:"bankId,omitempty"`

	// Category marks bookkeeping moves (cash_adjustment, bank_transfer, ...)
	// that never appear on a party statement.
	Category string `json:"category,omitempty" gorm:"size:32"`

	Reference string    `json:"reference,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// internalCategories are bookkeeping moves that never settle an invoice or
// show on a party statement.
var internalCategories = map[string]struct{}{
	"cash_adjustment":      {},
	"bank_transfer":        {},
	"opening_balance_seed": {},
	"rounding":             {},
	"internal_settlement":  {},
	"auto_cash_post":       {},
}

// IsInternalCategory reports whether c is an internal bookkeeping category.
func IsInternalCategory(c string) bool {
	_, ok := internalCategories[c]
	return ok
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	return
}
