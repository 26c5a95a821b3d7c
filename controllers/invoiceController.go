package controllers

import (
	"time"

	"erp-backend/billing"
	"erp-backend/database"
	"erp-backend/middlewares"
	"erp-backend/models"
	"erp-backend/profit"
	"erp-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type lineDTO struct {
	ItemID      string   `json:"itemId" validate:"required"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity" validate:"gt=0"`
	UnitPrice   float64  `json:"unitPrice" validate:"gte=0"`
	Serials     []string `json:"serials"`
}

// invoiceDTO is the editable part of an invoice. Amounts are foreign; local
// amounts are derived at save. Rates and quantities are not rounded.
type invoiceDTO struct {
	Number           string               `json:"number"`
	Date             time.Time            `json:"date" validate:"required"`
	CustomerID       string               `json:"customerId"`
	SupplierID       string               `json:"supplierId"`
	Currency         string               `json:"currency" validate:"omitempty,len=3"`
	FxRateToBusiness float64              `json:"fx_rate_to_business" validate:"gte=0"`
	Items            []lineDTO            `json:"items" validate:"required,min=1,dive"`
	Discount         float64              `json:"discount" validate:"gte=0"`
	Tax              float64              `json:"tax" validate:"gte=0"`
	Shipping         float64              `json:"shipping" validate:"gte=0"`
	PaidAmountLocal  float64              `json:"paid_amount_local" validate:"gte=0"`
	PaymentMethod    models.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash bank"`
	BankID           string               `json:"bankId"`
	Notes            string               `json:"notes"`
}

func (dto invoiceDTO) invoice(kind models.InvoiceKind) models.Invoice {
	lines := make([]models.LineItem, 0, len(dto.Items))
	for _, li := range dto.Items {
		lines = append(lines, models.LineItem{
			ItemID:      li.ItemID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Serials:     li.Serials,
		})
	}
	inv := models.Invoice{
		Kind:             kind,
		Number:           dto.Number,
		Date:             dto.Date,
		Currency:         dto.Currency,
		FxRateToBusiness: dto.FxRateToBusiness,
		Items:            datatypes.JSONSlice[models.LineItem](lines),
		Discount:         dto.Discount,
		Tax:              dto.Tax,
		Shipping:         dto.Shipping,
		PaidAmountLocal:  utils.Round2(dto.PaidAmountLocal),
		PaymentMethod:    dto.PaymentMethod,
		BankID:           dto.BankID,
		Notes:            dto.Notes,
	}
	if kind == models.KindPurchase {
		inv.SupplierID = dto.SupplierID
	} else {
		inv.CustomerID = dto.CustomerID
	}
	if inv.PaidAmountLocal > 0 && inv.PaymentMethod == "" {
		inv.PaymentMethod = models.MethodCash
	}
	return inv
}

// syncInvoice writes the paid/balance snapshot fields of inv from payments.
func syncInvoice(inv *models.Invoice, payments []models.Payment) {
	for _, p := range billing.RecalculateAndSyncInvoices([]string{inv.ID}, models.InvoiceIndex{inv.ID: inv}, payments) {
		inv.PaidTotalLocal = p.PaidTotalLocal
		inv.BalanceLocal = p.BalanceLocal
		inv.Status = p.Status
	}
}

func CreateSale(c *fiber.Ctx) error {
	return createInvoice(c, models.KindSale)
}

func CreatePurchase(c *fiber.Ctx) error {
	return createInvoice(c, models.KindPurchase)
}

func createInvoice(c *fiber.Ctx, kind models.InvoiceKind) error {
	var dto invoiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	db, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	inv := dto.invoice(kind)
	if !snap.PartyExists(kind.PartyType(), inv.PartyID()) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, string(kind.PartyType())+" not found")
	}
	if err := billing.PrepareInvoice(&inv, snap); err != nil {
		return err
	}
	inv.ID = uuid.NewString()
	syncInvoice(&inv, snap.Payments)

	if err := db.Create(&inv).Error; err != nil {
		return err
	}

	log := requestLog(c, "invoices")
	log.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("kind", string(kind)).
		Float64("total_local", inv.TotalLocal).
		Msg("invoice created")
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// UpdateInvoice replaces the editable fields and re-derives totals, local
// amounts and the paid/balance snapshot.
func UpdateInvoice(c *fiber.Ctx) error {
	var dto invoiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	db, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	current, err := findInvoice(snap, c.Params("id"))
	if err != nil {
		return err
	}

	inv := dto.invoice(current.Kind)
	inv.ID = current.ID
	inv.CreatedAt = current.CreatedAt
	if inv.Number == "" {
		inv.Number = current.Number
	}
	if !snap.PartyExists(inv.Kind.PartyType(), inv.PartyID()) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, string(inv.Kind.PartyType())+" not found")
	}
	if err := billing.PrepareInvoice(&inv, snap); err != nil {
		return err
	}
	syncInvoice(&inv, snap.Payments)

	if err := db.Save(&inv).Error; err != nil {
		return err
	}
	return c.JSON(inv)
}

// DeleteInvoice removes the invoice and every payment recorded against it.
func DeleteInvoice(c *fiber.Ctx) error {
	db, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	inv, err := findInvoice(snap, c.Params("id"))
	if err != nil {
		return err
	}
	patch := billing.DeleteInvoicePatch(inv.ID, snap)
	if err := database.ApplyPatch(db, patch); err != nil {
		return err
	}

	log := requestLog(c, "invoices")
	log.Info().
		Str("invoice_id", inv.ID).
		Int("payments_deleted", len(patch.DeletePaymentIDs)).
		Msg("invoice deleted")
	return c.JSON(fiber.Map{
		"deleted":         inv.ID,
		"deletedPayments": patch.DeletePaymentIDs,
	})
}

func GetInvoice(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	var inv models.Invoice
	if err := db.First(&inv, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	return c.JSON(inv)
}

func GetInvoices(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	q := db.Order("date DESC").Order("number DESC")
	switch kind := models.InvoiceKind(c.Query("kind")); kind {
	case "":
	case models.KindSale, models.KindPurchase:
		q = q.Where("kind = ?", kind)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "kind must be sale or purchase")
	}
	if limit := utils.ParseIntDefault(c.Query("limit"), 0); limit > 0 {
		q = q.Limit(limit).Offset(utils.ParseIntDefault(c.Query("offset"), 0))
	}
	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoices": invoices,
		"message":  "success",
	})
}

// GetInvoiceStatus recomputes the status from payments rather than trusting
// the stored snapshot fields.
func GetInvoiceStatus(c *fiber.Ctx) error {
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	inv, err := findInvoice(snap, c.Params("id"))
	if err != nil {
		return err
	}
	st := billing.GetInvoiceStatus(*inv, billing.PaymentsByInvoice(snap.Payments)[inv.ID])
	return c.JSON(fiber.Map{
		"invoiceId":  inv.ID,
		"number":     inv.Number,
		"status":     st.Status,
		"paidAmount": st.PaidAmount,
		"balance":    st.Balance,
		"total":      inv.TotalLocal,
		"formatted":  utils.FormatFx(inv.Total, inv.Currency, inv.TotalLocal, snap.BaseCurrency),
	})
}

func GetSaleProfit(c *fiber.Ctx) error {
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	inv, err := findInvoice(snap, c.Params("id"))
	if err != nil {
		return err
	}
	if inv.Kind != models.KindSale {
		return fiber.NewError(fiber.StatusBadRequest, "profit is only defined for sales")
	}
	return c.JSON(profit.GetProfitOfSale(*inv, snap))
}

// PreviewSaleProfit costs an unsaved sale. With an id in ?id= the stored sale
// is replaced by the edited one.
func PreviewSaleProfit(c *fiber.Ctx) error {
	var dto invoiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	inv := dto.invoice(models.KindSale)
	inv.ID = c.Query("id", "preview")
	if inv.Number == "" {
		inv.Number = "preview"
	}
	if err := billing.PrepareInvoice(&inv, snap); err != nil {
		return err
	}
	return c.JSON(profit.GetProfitOfSale(inv, snap))
}

// GetProfitReport costs every sale, optionally within ?from=&to=.
func GetProfitReport(c *fiber.Ctx) error {
	from, err := parseDay(c, "from", false)
	if err != nil {
		return err
	}
	to, err := parseDay(c, "to", true)
	if err != nil {
		return err
	}
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}

	dates := make(map[string]time.Time, len(snap.Sales))
	for _, s := range snap.Sales {
		dates[s.ID] = s.Date
	}
	var sales []profit.SaleProfit
	for _, sp := range profit.ProfitOfSales(snap) {
		d := dates[sp.SaleID]
		if (!from.IsZero() && d.Before(from)) || (!to.IsZero() && d.After(to)) {
			continue
		}
		sales = append(sales, sp)
	}
	revenue, cogs, total := profit.Summary(sales)
	return c.JSON(fiber.Map{
		"sales":   sales,
		"revenue": revenue,
		"cogs":    cogs,
		"profit":  total,
	})
}
