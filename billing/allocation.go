package billing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"erp-backend/models"
	"erp-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// OutstandingInvoice is an invoice of one party with money still due.
type OutstandingInvoice struct {
	ID     string    `json:"id"`
	Number string    `json:"number"`
	Date   time.Time `json:"date"`
	Total  float64   `json:"total"`
	Paid   float64   `json:"paid"`
	Due    float64   `json:"due"`
}

// OutstandingInvoices lists the party's invoices whose balance is at least one
// cent, oldest first (ties by id).
func OutstandingInvoices(snap *models.Snapshot, partyType models.PartyType, partyID string) []OutstandingInvoice {
	var out []OutstandingInvoice
	for _, inv := range partyInvoices(snap, partyType, partyID) {
		st := GetInvoiceStatus(inv, snap.Payments)
		if st.Balance < utils.Tolerance {
			continue
		}
		out = append(out, OutstandingInvoice{
			ID:     inv.ID,
			Number: inv.Number,
			Date:   inv.Date,
			Total:  inv.TotalLocal,
			Paid:   st.PaidAmount,
			Due:    st.Balance,
		})
	}
	sortOutstanding(out)
	return out
}

func partyInvoices(snap *models.Snapshot, partyType models.PartyType, partyID string) []models.Invoice {
	src := snap.Sales
	if partyType == models.PartySupplier {
		src = snap.Purchases
	}
	var out []models.Invoice
	for _, inv := range src {
		if inv.PartyID() == partyID {
			out = append(out, inv)
		}
	}
	return out
}

func sortOutstanding(list []OutstandingInvoice) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].ID < list[j].ID
	})
}

// Allocation maps invoice id to the amount of a payment assigned to it.
type Allocation map[string]float64

// AllocationResult is the outcome of splitting one payment across invoices.
type AllocationResult struct {
	Allocations Allocation `json:"allocations"`
	// Order holds the allocated invoice ids, oldest first.
	Order       []string `json:"order"`
	Allocated   float64  `json:"allocated"`
	Unallocated float64  `json:"unallocated"`
	Warnings    []string `json:"warnings,omitempty"`
}

// AutoAllocate assigns amount to the outstanding invoices oldest first, each
// capped at its due. Invoices reached after the amount is exhausted get 0; an
// excess over the total due stays unallocated. Deterministic for fixed inputs.
func AutoAllocate(amount float64, outstanding []OutstandingInvoice) AllocationResult {
	list := append([]OutstandingInvoice(nil), outstanding...)
	sortOutstanding(list)

	remaining := decimal.NewFromFloat(math.Max(utils.ToNumber(amount), 0))
	res := AllocationResult{Allocations: make(Allocation, len(list))}
	allocated := decimal.Zero
	for _, inv := range list {
		due := decimal.NewFromFloat(math.Max(inv.Due, 0))
		take := decimal.Min(remaining, due).Round(2)
		res.Allocations[inv.ID] = take.InexactFloat64()
		if take.IsPositive() {
			res.Order = append(res.Order, inv.ID)
		}
		remaining = remaining.Sub(take)
		allocated = allocated.Add(take)
	}
	res.Allocated = allocated.InexactFloat64()
	res.Unallocated = remaining.Round(2).InexactFloat64()
	return res
}

// ValidateAllocation checks that manual allocations are non-negative and sum to
// amount within one cent.
func ValidateAllocation(amount float64, alloc Allocation) error {
	const op = "ValidateAllocation"

	var parts []any
	for id, v := range alloc {
		if v < 0 {
			return newValidationError(op, ErrInvalidPayment, "allocations", "negative allocation %.2f for invoice %s", v, id)
		}
		parts = append(parts, v)
	}
	sum := utils.SafeSum(parts...)
	if !utils.ApproxEqual(sum, amount) {
		return newValidationError(op, ErrAllocationMismatch, "allocations",
			"allocated %.2f of payment %.2f", sum, amount)
	}
	return nil
}

// PaymentRequest is one user "payment in/out" against a party's invoices.
type PaymentRequest struct {
	PartyType   models.PartyType     `json:"partyType" validate:"required,oneof=customer supplier"`
	PartyID     string               `json:"partyId" validate:"required"`
	Date        time.Time            `json:"date"`
	Amount      float64              `json:"amount" validate:"gt=0"`
	Discount    float64              `json:"discount" validate:"gte=0"`
	Method      models.PaymentMethod `json:"method" validate:"omitempty,oneof=cash bank"`
	BankID      string               `json:"bankId"`
	Reference   string               `json:"reference"`
	Note        string               `json:"note"`
	Mode        Mode                 `json:"mode" validate:"omitempty,oneof=auto manual"`
	Allocations Allocation           `json:"allocations"`
}

// AllocationPlan is an allocation plus the Payment records that realize it.
type AllocationPlan struct {
	AllocationResult
	Outstanding []OutstandingInvoice `json:"outstanding"`
	Payments    []models.Payment     `json:"payments"`
}

// AllocatePayment splits req across the party's invoices and builds one Payment
// per invoice that receives a non-zero share. The rows share a group id; the
// whole discount goes on the first row in allocation order.
func AllocatePayment(req PaymentRequest, snap *models.Snapshot) (*AllocationPlan, error) {
	const op = "AllocatePayment"

	if !req.PartyType.Valid() {
		return nil, newValidationError(op, ErrInvalidPayment, "partyType", "unknown party type %q", req.PartyType)
	}
	if req.Method == models.MethodBank && req.BankID == "" {
		return nil, newValidationError(op, ErrInvalidPayment, "bankId", "bank payment needs a bank account")
	}

	outstanding := OutstandingInvoices(snap, req.PartyType, req.PartyID)
	plan := &AllocationPlan{Outstanding: outstanding}

	switch req.Mode {
	case "", ModeAuto:
		plan.AllocationResult = AutoAllocate(req.Amount, outstanding)
	case ModeManual:
		res, err := manualAllocation(req, snap, outstanding)
		if err != nil {
			return nil, err
		}
		plan.AllocationResult = res
	default:
		return nil, newValidationError(op, ErrInvalidPayment, "mode", "unknown allocation mode %q", req.Mode)
	}

	if plan.Unallocated >= utils.Tolerance {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("payment exceeds outstanding due by %.2f", plan.Unallocated))
	}

	flow := models.PaymentIn
	if req.PartyType == models.PartySupplier {
		flow = models.PaymentOut
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	method := req.Method
	if method == "" {
		method = models.MethodCash
	}

	group := uuid.NewString()
	for i, id := range plan.Order {
		p := models.Payment{
			ID:        uuid.NewString(),
			GroupID:   group,
			Type:      flow,
			Date:      date,
			PartyID:   req.PartyID,
			PartyType: req.PartyType,
			InvoiceID: id,
			Amount:    plan.Allocations[id],
			Method:    method,
			BankID:    req.BankID,
			Reference: req.Reference,
			Note:      req.Note,
		}
		if i == 0 {
			p.Discount = utils.Round2(req.Discount)
		}
		plan.Payments = append(plan.Payments, p)
	}
	if req.Discount > 0 && len(plan.Payments) > 0 {
		first := plan.Payments[0]
		if due, ok := dueOf(outstanding, first.InvoiceID); ok && first.Amount+first.Discount > due+utils.Tolerance {
			plan.Warnings = append(plan.Warnings, "discount overpays invoice "+first.InvoiceID)
		}
	}
	return plan, nil
}

func manualAllocation(req PaymentRequest, snap *models.Snapshot, outstanding []OutstandingInvoice) (AllocationResult, error) {
	const op = "AllocatePayment"

	if err := ValidateAllocation(req.Amount, req.Allocations); err != nil {
		return AllocationResult{}, err
	}

	idx := snap.InvoiceIndex()
	res := AllocationResult{Allocations: make(Allocation, len(req.Allocations))}
	var ids []string
	for id, v := range req.Allocations {
		inv, ok := idx[id]
		if !ok || inv.Kind.PartyType() != req.PartyType || inv.PartyID() != req.PartyID {
			return AllocationResult{}, newValidationError(op, ErrUnknownInvoice, "allocations",
				"invoice %s does not belong to %s %s", id, req.PartyType, req.PartyID)
		}
		v = utils.Round2(v)
		res.Allocations[id] = v
		if v > 0 {
			ids = append(ids, id)
		}
	}

	// Same order auto mode would use; invoices already settled go last.
	rank := make(map[string]int, len(outstanding))
	for i, o := range outstanding {
		rank[o.ID] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ri, iok := rank[ids[i]]
		rj, jok := rank[ids[j]]
		if iok != jok {
			return iok
		}
		if iok {
			return ri < rj
		}
		return ids[i] < ids[j]
	})
	res.Order = ids

	var parts []any
	for _, id := range ids {
		v := res.Allocations[id]
		parts = append(parts, v)
		due, _ := dueOf(outstanding, id)
		if v > due+utils.Tolerance {
			res.Warnings = append(res.Warnings, fmt.Sprintf("invoice %s: allocation %.2f exceeds due %.2f", id, v, due))
		}
	}
	res.Allocated = utils.SafeSum(parts...)
	res.Unallocated = utils.Round2(math.Max(utils.SafeSum(req.Amount, -res.Allocated), 0))
	return res, nil
}

func dueOf(outstanding []OutstandingInvoice, id string) (float64, bool) {
	for _, o := range outstanding {
		if o.ID == id {
			return o.Due, true
		}
	}
	return 0, false
}
