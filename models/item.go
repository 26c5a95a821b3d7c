package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is a stock article. Serial-tracked items are costed per serial/IMEI.
type Item struct {
	ID            string  `json:"id" gorm:"primaryKey"`
	Name          string  `json:"name" gorm:"not null" validate:"required"`
	SKU           string  `json:"sku" gorm:"index"`
	Unit          string  `json:"unit"`
	SalePrice     float64 `json:"salePrice" gorm:"type:numeric(14,2)"`
	SerialTracked bool    `json:"serialTracked"`
}

func (item *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return
}
