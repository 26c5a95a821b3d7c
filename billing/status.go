package billing

import (
	"erp-backend/models"
	"erp-backend/utils"
)

type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPartial Status = "Partial"
	StatusCredit  Status = "Credit"
)

// InvoiceStatus is the derived settlement state of one invoice, in local currency.
type InvoiceStatus struct {
	Status     Status  `json:"status"`
	PaidAmount float64 `json:"paidAmount"`
	Balance    float64 `json:"balance"`
}

// GetInvoiceStatus derives how much of invoice has been paid from the payments
// ledger. Payments that reference the invoice with the settling flow count with
// their discount; the inline paid_amount_local only counts when there are none.
// Overpayment yields a negative balance and still reads as Paid.
func GetInvoiceStatus(invoice models.Invoice, payments []models.Payment) InvoiceStatus {
	paid := PaidAmount(invoice, payments)
	balance := utils.SafeSum(invoice.TotalLocal, -paid)

	st := InvoiceStatus{PaidAmount: paid, Balance: balance}
	switch {
	case balance < utils.Tolerance:
		st.Status = StatusPaid
	case utils.ApproxZero(paid):
		st.Status = StatusCredit
	default:
		st.Status = StatusPartial
	}
	return st
}

// PaidAmount is the paid side of GetInvoiceStatus.
func PaidAmount(invoice models.Invoice, payments []models.Payment) float64 {
	var parts []any
	explicit := false
	for _, p := range payments {
		if !Settles(p, invoice) {
			continue
		}
		explicit = true
		parts = append(parts, p.Amount, p.Discount)
	}
	if !explicit {
		parts = append(parts, invoice.PaidAmountLocal)
	}
	return utils.Round2(utils.SafeSum(parts...))
}

// Settles reports whether p pays down invoice. Internal bookkeeping moves and
// payments against the invoice's flow never do.
func Settles(p models.Payment, invoice models.Invoice) bool {
	return p.InvoiceID == invoice.ID &&
		p.Type == invoice.Kind.PaymentFlow() &&
		!models.IsInternalCategory(p.Category)
}

// HasSettlingPayment reports whether any payment settles invoice. While none
// does, the invoice's inline paid amount stands in for them.
func HasSettlingPayment(invoice models.Invoice, payments []models.Payment) bool {
	for _, p := range payments {
		if Settles(p, invoice) {
			return true
		}
	}
	return false
}

// PaymentsByInvoice groups payments by the invoice they reference. Unlinked
// payments are left out.
func PaymentsByInvoice(payments []models.Payment) map[string][]models.Payment {
	out := make(map[string][]models.Payment)
	for _, p := range payments {
		if p.InvoiceID == "" {
			continue
		}
		out[p.InvoiceID] = append(out[p.InvoiceID], p)
	}
	return out
}
