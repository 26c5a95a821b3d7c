package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Bank struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	Name           string  `json:"name" gorm:"not null" validate:"required"`
	AccountNo      string  `json:"accountNo"`
	OpeningBalance float64 `json:"openingBalance" gorm:"type:numeric(14,2)"`
}

func (bank *Bank) BeforeCreate(tx *gorm.DB) (err error) {
	if bank.ID == "" {
		bank.ID = uuid.NewString()
	}
	return
}

type Expense struct {
	ID       string        `json:"id" gorm:"primaryKey"`
	Date     time.Time     `json:"date" gorm:"index"`
	Category string        `json:"category"`
	Amount   float64       `json:"amount" gorm:"type:numeric(14,2)" validate:"gte=0"`
	Method   PaymentMethod `json:"method" gorm:"size:10"`
	BankID   string        `json:"bankId,omitempty"`
	Note     string        `json:"note,omitempty"`
}

func (expense *Expense) BeforeCreate(tx *gorm.DB) (err error) {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	return
}

// CashEntry is a signed movement on a single account (cash drawer or one bank):
// manual adjustments, one half of a transfer, opening seeds.
type CashEntry struct {
	ID     string        `json:"id" gorm:"primaryKey"`
	Date   time.Time     `json:"date" gorm:"index"`
	Type   string        `json:"type" gorm:"size:32"` // cash_adjustment, bank_transfer, ...
	Method PaymentMethod `json:"method" gorm:"size:10"`
	BankID string        `json:"bankId,omitempty"`
	Amount float64       `json:"amount" gorm:"type:numeric(14,2)"`
	Note   string        `json:"note,omitempty"`
}

func (entry *CashEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return
}

// Settings is the single per-tenant business profile row.
type Settings struct {
	ID             uint    `json:"-" gorm:"primaryKey"`
	BusinessName   string  `json:"businessName"`
	BaseCurrency   string  `json:"baseCurrency" gorm:"size:3"`
	CurrencySymbol string  `json:"currencySymbol" gorm:"size:8"`
	CashInHand     float64 `json:"cashInHand" gorm:"type:numeric(14,2)"` // opening cash balance
}
