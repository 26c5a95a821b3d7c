package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartySupplier PartyType = "supplier"
)

// Valid reports whether t is one of the two party kinds.
func (t PartyType) Valid() bool {
	return t == PartyCustomer || t == PartySupplier
}

// Customer carries no balance; what a customer owes is always derived from the ledger.
type Customer struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null" validate:"required"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	TaxID     string    `json:"taxId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (customer *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	return
}
