package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReturnKind string

const (
	SaleReturn     ReturnKind = "sale_return"
	PurchaseReturn ReturnKind = "purchase_return"
)

// Return reverses (part of) an invoice. PartyID may be empty on old records;
// the party is then inferred through InvoiceID.
type Return struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Kind        ReturnKind `json:"kind" gorm:"size:16" validate:"oneof=sale_return purchase_return"`
	Date        time.Time  `json:"date" gorm:"index"`
	InvoiceID   string     `json:"invoiceId,omitempty" gorm:"index"`
	PartyID     string     `json:"partyId,omitempty" gorm:"index"`
	PartyType   PartyType  `json:"partyType,omitempty" gorm:"size:10"`
	AmountLocal float64    `json:"amount_local" gorm:"type:numeric(14,2)"`
	Note        string     `json:"note,omitempty"`
}

func (r *Return) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return
}

type NoteKind string

const (
	CreditNote NoteKind = "credit_note"
	DebitNote  NoteKind = "debit_note"
)

// Note is a credit or debit note issued against a party.
type Note struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Kind        NoteKind  `json:"kind" gorm:"size:16" validate:"oneof=credit_note debit_note"`
	Date        time.Time `json:"date" gorm:"index"`
	InvoiceID   string    `json:"invoiceId,omitempty" gorm:"index"`
	PartyID     string    `json:"partyId,omitempty" gorm:"index"`
	PartyType   PartyType `json:"partyType,omitempty" gorm:"size:10"`
	AmountLocal float64   `json:"amount_local" gorm:"type:numeric(14,2)"`
	Reason      string    `json:"reason,omitempty"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return
}
