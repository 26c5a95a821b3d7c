package controllers

import (
	"strings"

	"erp-backend/database"
	"erp-backend/ledger"
	"erp-backend/middlewares"
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type supplierDTO struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type supplierPatchDTO struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Country  *string `json:"country"`
	Currency *string `json:"currency" validate:"omitempty,len=3"`
}

func CreateSupplier(c *fiber.Ctx) error {
	var dto supplierDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	supplier := models.Supplier{
		Name:     dto.Name,
		Phone:    dto.Phone,
		Email:    dto.Email,
		Address:  dto.Address,
		City:     dto.City,
		Country:  dto.Country,
		Currency: strings.ToUpper(dto.Currency),
	}
	if err := db.Create(&supplier).Error; err != nil {
		return err
	}

	log := requestLog(c, "suppliers")
	log.Info().Str("supplier_id", supplier.ID).Msg("supplier created")
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// GetSuppliers lists suppliers with what the business owes each of them.
func GetSuppliers(c *fiber.Ctx) error {
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	type row struct {
		models.Supplier
		Balance float64 `json:"balance"`
	}
	out := make([]row, 0, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		out = append(out, row{Supplier: s, Balance: ledger.PartyBalance(models.PartySupplier, s.ID, snap)})
	}
	return c.JSON(fiber.Map{
		"suppliers": out,
		"message":   "success",
	})
}

func UpdateSupplier(c *fiber.Ctx) error {
	var dto supplierPatchDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)
	if dto.Currency != nil {
		upper := strings.ToUpper(*dto.Currency)
		dto.Currency = &upper
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var supplier models.Supplier
	if err := db.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	if updates := utils.UpdatesFromPtrDTO(&dto); len(updates) > 0 {
		if err := db.Model(&supplier).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := db.First(&supplier, "id = ?", supplier.ID).Error; err != nil {
		return err
	}
	return c.JSON(supplier)
}
