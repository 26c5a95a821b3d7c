package billing

import (
	"fmt"
	"strconv"
	"strings"

	"erp-backend/models"
	"erp-backend/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NextNumber returns the next human-readable number for kind: one past the
// highest existing number with the same prefix, zero-padded to 4 digits.
func NextNumber(kind models.InvoiceKind, existing []models.Invoice) string {
	prefix := kind.NumberPrefix() + "-"
	highest := 0
	for _, inv := range existing {
		if inv.Kind != kind || !strings.HasPrefix(inv.Number, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(inv.Number, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, highest+1)
}

// ComputeTotals derives subtotal and total (foreign) from the lines.
func ComputeTotals(inv *models.Invoice) {
	var lines []any
	for _, li := range inv.Items {
		lines = append(lines, utils.Round2(li.Quantity*li.UnitPrice))
	}
	inv.Subtotal = utils.Round2(utils.SafeSum(lines...))
	inv.Total = utils.Round2(utils.SafeSum(inv.Subtotal, -inv.Discount, inv.Tax, inv.Shipping))
}

// FreezeLocalAmounts sets every local amount from its foreign counterpart using
// the invoice's rate. Called once at save; the rate then stays on the invoice.
func FreezeLocalAmounts(inv *models.Invoice) {
	if inv.FxRateToBusiness <= 0 {
		inv.FxRateToBusiness = 1
	}
	r := inv.FxRateToBusiness
	inv.SubtotalLocal = utils.ToLocal(inv.Subtotal, r)
	inv.DiscountLocal = utils.ToLocal(inv.Discount, r)
	inv.TaxLocal = utils.ToLocal(inv.Tax, r)
	inv.ShippingLocal = utils.ToLocal(inv.Shipping, r)
	inv.TotalLocal = utils.ToLocal(inv.Total, r)
	for i := range inv.Items {
		inv.Items[i].UnitPriceLocal = utils.ToLocal(inv.Items[i].UnitPrice, r)
	}
}

// ValidateInvoice checks an invoice before save. items may be nil to skip the
// catalogue checks.
func ValidateInvoice(inv models.Invoice, items map[string]models.Item) error {
	const op = "ValidateInvoice"

	if err := validate.Struct(inv); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch inv.Kind {
	case models.KindSale:
		if inv.CustomerID == "" || inv.SupplierID != "" {
			return newValidationError(op, ErrInvalidInvoice, "customerId", "a sale references exactly one customer")
		}
	case models.KindPurchase:
		if inv.SupplierID == "" || inv.CustomerID != "" {
			return newValidationError(op, ErrInvalidInvoice, "supplierId", "a purchase references exactly one supplier")
		}
	}

	seen := map[string]int{}
	for i, li := range inv.Items {
		field := fmt.Sprintf("items[%d]", i)
		if items != nil {
			item, ok := items[li.ItemID]
			if !ok {
				return newValidationError(op, ErrInvalidInvoice, field+".itemId", "unknown item %s", li.ItemID)
			}
			if item.SerialTracked && !utils.ApproxEqual(li.Quantity, float64(len(li.Serials))) {
				return newValidationError(op, ErrInvalidInvoice, field+".serials",
					"quantity %.0f but %d serials", li.Quantity, len(li.Serials))
			}
		}
		for _, s := range li.Serials {
			if prev, dup := seen[s]; dup {
				return newValidationError(op, ErrInvalidInvoice, field+".serials",
					"serial %s already on line %d", s, prev)
			}
			seen[s] = i
		}
		if !utils.ApproxEqual(li.UnitPriceLocal, utils.ToLocal(li.UnitPrice, inv.FxRateToBusiness)) {
			return newValidationError(op, ErrInvalidInvoice, field+".unitPrice_local", "does not match unitPrice × rate")
		}
	}

	pairs := []struct {
		name           string
		foreign, local float64
	}{
		{"subtotal", inv.Subtotal, inv.SubtotalLocal},
		{"discount", inv.Discount, inv.DiscountLocal},
		{"tax", inv.Tax, inv.TaxLocal},
		{"shipping", inv.Shipping, inv.ShippingLocal},
		{"total", inv.Total, inv.TotalLocal},
	}
	for _, p := range pairs {
		if !utils.ApproxEqual(p.local, utils.ToLocal(p.foreign, inv.FxRateToBusiness)) {
			return newValidationError(op, ErrInvalidInvoice, p.name+"_local",
				"%.2f does not match %.2f × %g", p.local, p.foreign, inv.FxRateToBusiness)
		}
	}

	if inv.PaidAmountLocal < 0 || inv.PaidAmountLocal > inv.TotalLocal+utils.Tolerance {
		return newValidationError(op, ErrInvalidInvoice, "paid_amount_local",
			"%.2f outside 0..%.2f", inv.PaidAmountLocal, inv.TotalLocal)
	}
	if inv.PaidAmountLocal > 0 && inv.PaymentMethod == models.MethodBank && inv.BankID == "" {
		return newValidationError(op, ErrInvalidInvoice, "bankId", "bank payment needs a bank account")
	}
	return nil
}

// PrepareInvoice runs the save pipeline on a new or edited invoice: totals,
// frozen local amounts, validation. Number is assigned when empty.
func PrepareInvoice(inv *models.Invoice, snap *models.Snapshot) error {
	if inv.Number == "" {
		existing := snap.Sales
		if inv.Kind == models.KindPurchase {
			existing = snap.Purchases
		}
		inv.Number = NextNumber(inv.Kind, existing)
	}
	inv.Currency = strings.ToUpper(inv.Currency)
	if inv.Currency == "" {
		inv.Currency = strings.ToUpper(snap.BaseCurrency)
	}
	ComputeTotals(inv)
	FreezeLocalAmounts(inv)
	return ValidateInvoice(*inv, snap.ItemIndex())
}
