package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceKind string

const (
	KindSale     InvoiceKind = "sale"
	KindPurchase InvoiceKind = "purchase"
)

// NumberPrefix is the human-readable sequence prefix (S-0001 / P-0001).
func (k InvoiceKind) NumberPrefix() string {
	if k == KindPurchase {
		return "P"
	}
	return "S"
}

// PaymentFlow is the payment direction that settles an invoice of this kind.
func (k InvoiceKind) PaymentFlow() PaymentType {
	if k == KindPurchase {
		return PaymentOut
	}
	return PaymentIn
}

// PartyType is the kind of party an invoice of this kind is issued to.
func (k InvoiceKind) PartyType() PartyType {
	if k == KindPurchase {
		return PartySupplier
	}
	return PartyCustomer
}

// LineItem is one ordered invoice line. Quantity of a serial-tracked item equals len(Serials).
type LineItem struct {
	ItemID         string   `json:"itemId" validate:"required"`
	Description    string   `json:"description,omitempty"`
	Quantity       float64  `json:"quantity" validate:"gt=0"`
	UnitPrice      float64  `json:"unitPrice" validate:"gte=0"`
	UnitPriceLocal float64  `json:"unitPrice_local" validate:"gte=0"`
	Serials        []string `json:"serials,omitempty"`
}

// Invoice is the live state of a sale or purchase. Monetary fields come in
// foreign/local pairs; local = foreign × FxRateToBusiness, frozen at save.
type Invoice struct {
	ID         string      `json:"id" gorm:"primaryKey"`
	Kind       InvoiceKind `json:"kind" gorm:"size:10;index;not null" validate:"oneof=sale purchase"`
	Number     string      `json:"number" gorm:"size:20;index"`
	Date       time.Time   `json:"date" gorm:"index" validate:"required"`
	CustomerID string      `json:"customerId,omitempty" gorm:"index"`
	SupplierID string      `json:"supplierId,omitempty" gorm:"index"`

	Currency         string  `json:"currency" gorm:"size:3"`
	FxRateToBusiness float64 `json:"fx_rate_to_business" validate:"gt=0"`

	Items datatypes.JSONSlice[LineItem] `json:"items" gorm:"type:jsonb" validate:"required,min=1,dive"`

	Subtotal      float64 `json:"subtotal" gorm:"type:numeric(14,2)"`
	SubtotalLocal float64 `json:"subtotal_local" gorm:"type:numeric(14,2)"`
	Discount      float64 `json:"discount" gorm:"type:numeric(14,2)"`
	DiscountLocal float64 `json:"discount_local" gorm:"type:numeric(14,2)"`
	Tax           float64 `json:"tax" gorm:"type:numeric(14,2)"`
	TaxLocal      float64 `json:"tax_local" gorm:"type:numeric(14,2)"`
	Shipping      float64 `json:"shipping" gorm:"type:numeric(14,2)"`
	ShippingLocal float64 `json:"shipping_local" gorm:"type:numeric(14,2)"`
	Total         float64 `json:"total" gorm:"type:numeric(14,2)"`
	TotalLocal    float64 `json:"total_local" gorm:"type:numeric(14,2)"`

	// Legacy inline payment taken at save time. Ignored once any explicit
	// Payment row references this invoice.
	PaidAmountLocal float64       `json:"paid_amount_local" gorm:"type:numeric(14,2)"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty" gorm:"size:10"`
	BankID          string        `json:"bankId,omitempty"`

	// Snapshot cache, rewritten by billing.RecalculateAndSyncInvoices.
	PaidTotalLocal float64 `json:"paid_total_local" gorm:"type:numeric(14,2)"`
	BalanceLocal   float64 `json:"balance_local" gorm:"type:numeric(14,2)"`
	Status         string  `json:"status" gorm:"size:10"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	return
}

// PartyID returns the customer id of a sale or the supplier id of a purchase.
func (invoice *Invoice) PartyID() string {
	if invoice.Kind == KindPurchase {
		return invoice.SupplierID
	}
	return invoice.CustomerID
}
