package controllers

import (
	"time"

	"erp-backend/billing"
	"erp-backend/database"
	"erp-backend/middlewares"
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type paymentUpdateDTO struct {
	Date      *time.Time            `json:"date"`
	InvoiceID *string               `json:"invoiceId"`
	Amount    *float64              `json:"amount" validate:"omitempty,gte=0"`
	Discount  *float64              `json:"discount" validate:"omitempty,gte=0"`
	Method    *models.PaymentMethod `json:"method" validate:"omitempty,oneof=cash bank"`
	BankID    *string               `json:"bankId"`
	Reference *string               `json:"reference"`
	Note      *string               `json:"note"`
}

func (dto paymentUpdateDTO) apply(p *models.Payment) {
	if dto.Date != nil {
		p.Date = *dto.Date
	}
	if dto.InvoiceID != nil {
		p.InvoiceID = *dto.InvoiceID
	}
	if dto.Amount != nil {
		p.Amount = utils.Round2(*dto.Amount)
	}
	if dto.Discount != nil {
		p.Discount = utils.Round2(*dto.Discount)
	}
	if dto.Method != nil {
		p.Method = *dto.Method
	}
	if dto.BankID != nil {
		p.BankID = *dto.BankID
	}
	if dto.Reference != nil {
		p.Reference = *dto.Reference
	}
	if dto.Note != nil {
		p.Note = *dto.Note
	}
	if p.Method == models.MethodCash {
		p.BankID = ""
	}
}

// GetOutstanding lists the party's unpaid invoices in auto-allocation order.
func GetOutstanding(c *fiber.Ctx) error {
	partyType, err := parsePartyType(c.Params("partyType"))
	if err != nil {
		return err
	}
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	partyID := c.Params("partyId")
	if !snap.PartyExists(partyType, partyID) {
		return fiber.NewError(fiber.StatusNotFound, string(partyType)+" not found")
	}

	outstanding := billing.OutstandingInvoices(snap, partyType, partyID)
	dues := make([]any, 0, len(outstanding))
	for _, o := range outstanding {
		dues = append(dues, o.Due)
	}
	return c.JSON(fiber.Map{
		"partyType":   partyType,
		"partyId":     partyID,
		"outstanding": outstanding,
		"totalDue":    utils.Round2(utils.SafeSum(dues...)),
	})
}

func planPayment(c *fiber.Ctx) (*billing.AllocationPlan, *models.Snapshot, error) {
	var req billing.PaymentRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return nil, nil, err
	}
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return nil, nil, err
	}
	if !snap.PartyExists(req.PartyType, req.PartyID) {
		return nil, nil, fiber.NewError(fiber.StatusUnprocessableEntity, string(req.PartyType)+" not found")
	}
	plan, err := billing.AllocatePayment(req, snap)
	if err != nil {
		return nil, nil, err
	}
	return plan, snap, nil
}

// PreviewAllocation shows how a payment would be split without saving it.
func PreviewAllocation(c *fiber.Ctx) error {
	plan, _, err := planPayment(c)
	if err != nil {
		return err
	}
	return c.JSON(plan)
}

// CreatePayment allocates a payment, stores one row per invoice and resyncs
// every invoice it touches.
func CreatePayment(c *fiber.Ctx) error {
	plan, snap, err := planPayment(c)
	if err != nil {
		return err
	}
	if len(plan.Payments) == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "party has no outstanding invoices to allocate to")
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	patch := billing.PaymentsPatch(snap, plan.Payments, nil, nil)
	if err := database.ApplyPatch(db, patch); err != nil {
		return err
	}

	log := requestLog(c, "payments")
	log.Info().
		Str("group_id", plan.Payments[0].GroupID).
		Int("rows", len(plan.Payments)).
		Float64("allocated", plan.Allocated).
		Float64("unallocated", plan.Unallocated).
		Msg("payment posted")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payments":    patch.CreatePayments,
		"invoices":    patch.Invoices,
		"allocated":   plan.Allocated,
		"unallocated": plan.Unallocated,
		"warnings":    plan.Warnings,
	})
}

func GetPayments(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	q := db.Order("date DESC").Order("id")
	if id := c.Query("invoiceId"); id != "" {
		q = q.Where("invoice_id = ?", id)
	}
	if id := c.Query("partyId"); id != "" {
		q = q.Where("party_id = ?", id)
	}
	if limit := utils.ParseIntDefault(c.Query("limit"), 0); limit > 0 {
		q = q.Limit(limit).Offset(utils.ParseIntDefault(c.Query("offset"), 0))
	}
	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"payments": payments,
		"message":  "success",
	})
}

// UpdatePayment edits one payment row; the previous and the new invoice are
// both resynced.
func UpdatePayment(c *fiber.Ctx) error {
	var dto paymentUpdateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	db, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	payment, err := findPayment(snap, c.Params("id"))
	if err != nil {
		return err
	}
	dto.apply(&payment)

	if err := middlewares.ValidateStruct(payment); err != nil {
		return err
	}
	if payment.Method == models.MethodBank && payment.BankID == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "bank payment needs a bank account")
	}
	if payment.InvoiceID != "" {
		inv, err := findInvoice(snap, payment.InvoiceID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown invoice "+payment.InvoiceID)
		}
		if err := checkInvoiceLink(payment, *inv); err != nil {
			return err
		}
	}

	patch := billing.PaymentsPatch(snap, nil, []models.Payment{payment}, nil)
	if err := database.ApplyPatch(db, patch); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"payment":  payment,
		"invoices": patch.Invoices,
	})
}

// checkInvoiceLink rejects pointing payment at an invoice it cannot settle.
// A payment without a party inherits the invoice's.
func checkInvoiceLink(payment models.Payment, inv models.Invoice) error {
	if inv.Kind.PaymentFlow() != payment.Type {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "payment direction does not settle a "+string(inv.Kind))
	}
	if payment.PartyType == "" && payment.PartyID == "" {
		return nil
	}
	if inv.Kind.PartyType() != payment.PartyType || inv.PartyID() != payment.PartyID {
		return fiber.NewError(fiber.StatusUnprocessableEntity,
			"invoice "+inv.ID+" does not belong to "+string(payment.PartyType)+" "+payment.PartyID)
	}
	return nil
}

func DeletePayment(c *fiber.Ctx) error {
	db, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	payment, err := findPayment(snap, c.Params("id"))
	if err != nil {
		return err
	}
	patch := billing.PaymentsPatch(snap, nil, nil, []string{payment.ID})
	if err := database.ApplyPatch(db, patch); err != nil {
		return err
	}

	log := requestLog(c, "payments")
	log.Info().Str("payment_id", payment.ID).Str("invoice_id", payment.InvoiceID).Msg("payment deleted")
	return c.JSON(fiber.Map{
		"deleted":  payment.ID,
		"invoices": patch.Invoices,
	})
}
