package controllers

import (
	"erp-backend/database"
	"erp-backend/middlewares"
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type itemDTO struct {
	Name          string  `json:"name" validate:"required"`
	SKU           string  `json:"sku"`
	Unit          string  `json:"unit"`
	SalePrice     float64 `json:"salePrice" validate:"gte=0"`
	SerialTracked bool    `json:"serialTracked"`
}

// CreateItems accepts a single item or a batch.
func CreateItems(c *fiber.Ctx) error {
	var batch []itemDTO
	if err := c.BodyParser(&batch); err != nil {
		var one itemDTO
		if err := c.BodyParser(&one); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		batch = []itemDTO{one}
	}
	if len(batch) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no items given")
	}

	items := make([]models.Item, 0, len(batch))
	for i := range batch {
		utils.NormalizeDTO(&batch[i])
		if err := middlewares.ValidateStruct(batch[i]); err != nil {
			return err
		}
		items = append(items, models.Item{
			Name:          batch[i].Name,
			SKU:           batch[i].SKU,
			Unit:          batch[i].Unit,
			SalePrice:     batch[i].SalePrice,
			SerialTracked: batch[i].SerialTracked,
		})
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"items": items})
}

func GetItems(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var items []models.Item
	if err := db.Order("name").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items":   items,
		"message": "success",
	})
}
