package models

// InvoicePatch rewrites the derived paid/balance snapshot fields of one invoice.
type InvoicePatch struct {
	ID             string  `json:"id"`
	PaidTotalLocal float64 `json:"paid_total_local"`
	BalanceLocal   float64 `json:"balance_local"`
	Status         string  `json:"status"`
}

// Patch is a partial update the caller merges into its snapshot and persists verbatim.
type Patch struct {
	Invoices         []InvoicePatch `json:"invoices,omitempty"`
	CreatePayments   []Payment      `json:"createPayments,omitempty"`
	UpdatePayments   []Payment      `json:"updatePayments,omitempty"`
	DeletePaymentIDs []string       `json:"deletePaymentIds,omitempty"`
	DeleteInvoiceIDs []string       `json:"deleteInvoiceIds,omitempty"`
}

func (p Patch) Empty() bool {
	return len(p.Invoices) == 0 && len(p.CreatePayments) == 0 && len(p.UpdatePayments) == 0 &&
		len(p.DeletePaymentIDs) == 0 && len(p.DeleteInvoiceIDs) == 0
}

// Apply merges p into the snapshot in place. Payment deletes run first, then
// updates, creates, invoice deletes and finally invoice snapshot fields.
func (s *Snapshot) Apply(p Patch) {
	if len(p.DeletePaymentIDs) > 0 {
		drop := toSet(p.DeletePaymentIDs)
		kept := s.Payments[:0:0]
		for _, pay := range s.Payments {
			if _, ok := drop[pay.ID]; !ok {
				kept = append(kept, pay)
			}
		}
		s.Payments = kept
	}

	for _, upd := range p.UpdatePayments {
		for i := range s.Payments {
			if s.Payments[i].ID == upd.ID {
				s.Payments[i] = upd
				break
			}
		}
	}
	s.Payments = append(s.Payments, p.CreatePayments...)

	if len(p.DeleteInvoiceIDs) > 0 {
		drop := toSet(p.DeleteInvoiceIDs)
		s.Sales = removeInvoices(s.Sales, drop)
		s.Purchases = removeInvoices(s.Purchases, drop)
	}

	if len(p.Invoices) > 0 {
		idx := s.InvoiceIndex()
		for _, ip := range p.Invoices {
			if inv, ok := idx[ip.ID]; ok {
				inv.PaidTotalLocal = ip.PaidTotalLocal
				inv.BalanceLocal = ip.BalanceLocal
				inv.Status = ip.Status
			}
		}
	}
}

func removeInvoices(in []Invoice, drop map[string]struct{}) []Invoice {
	out := in[:0:0]
	for _, inv := range in {
		if _, ok := drop[inv.ID]; !ok {
			out = append(out, inv)
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
