package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Supplier struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null" validate:"required"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"` // default purchase currency
	CreatedAt time.Time `json:"createdAt"`
}

func (supplier *Supplier) BeforeCreate(tx *gorm.DB) (err error) {
	if supplier.ID == "" {
		supplier.ID = uuid.NewString()
	}
	return
}
