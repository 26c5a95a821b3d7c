package controllers

import (
	"erp-backend/database"
	"erp-backend/ledger"
	"erp-backend/middlewares"
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type customerDTO struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	TaxID   string `json:"taxId"`
}

type customerPatchDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Country *string `json:"country"`
	TaxID   *string `json:"taxId"`
}

func CreateCustomer(c *fiber.Ctx) error {
	var dto customerDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	customer := models.Customer{
		Name:    dto.Name,
		Phone:   dto.Phone,
		Email:   dto.Email,
		Address: dto.Address,
		City:    dto.City,
		Country: dto.Country,
		TaxID:   dto.TaxID,
	}
	if err := db.Create(&customer).Error; err != nil {
		return err
	}

	log := requestLog(c, "customers")
	log.Info().Str("customer_id", customer.ID).Msg("customer created")
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func GetCustomers(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var customers []models.Customer
	if err := db.Order("name").Find(&customers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"customers": customers,
		"message":   "success",
	})
}

// GetCustomer returns the customer with the balance derived from the ledger.
func GetCustomer(c *fiber.Ctx) error {
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	for _, customer := range snap.Customers {
		if customer.ID == id {
			balance := ledger.PartyBalance(models.PartyCustomer, id, snap)
			return c.JSON(fiber.Map{
				"customer":  customer,
				"balance":   balance,
				"formatted": utils.FormatMoney(balance, snap.CurrencySymbol),
			})
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "customer not found")
}

func UpdateCustomer(c *fiber.Ctx) error {
	var dto customerPatchDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := db.First(&customer, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	if updates := utils.UpdatesFromPtrDTO(&dto); len(updates) > 0 {
		if err := db.Model(&customer).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := db.First(&customer, "id = ?", customer.ID).Error; err != nil {
		return err
	}
	return c.JSON(customer)
}
