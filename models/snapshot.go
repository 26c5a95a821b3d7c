package models

// Snapshot is the in-memory view of one business's records that every
// computation in billing, profit and ledger runs over.
type Snapshot struct {
	Sales       []Invoice   `json:"sales"`
	Purchases   []Invoice   `json:"purchases"`
	Payments    []Payment   `json:"payments"`
	Customers   []Customer  `json:"customers"`
	Suppliers   []Supplier  `json:"suppliers"`
	Items       []Item      `json:"items"`
	Banks       []Bank      `json:"banks"`
	CashInHand  float64     `json:"cashInHand"`
	Expenses    []Expense   `json:"expenses"`
	Returns     []Return    `json:"returns"`
	Notes       []Note      `json:"notes"`
	CashEntries []CashEntry `json:"cashEntries"`

	BaseCurrency   string `json:"baseCurrency,omitempty"`
	CurrencySymbol string `json:"currencySymbol,omitempty"`
}

// InvoiceIndex maps invoice id to the invoice, across sales and purchases.
type InvoiceIndex map[string]*Invoice

// InvoiceIndex builds an index over both invoice collections. Pointers refer
// into the snapshot's slices and stay valid until those slices are reassigned.
func (s *Snapshot) InvoiceIndex() InvoiceIndex {
	idx := make(InvoiceIndex, len(s.Sales)+len(s.Purchases))
	for i := range s.Sales {
		idx[s.Sales[i].ID] = &s.Sales[i]
	}
	for i := range s.Purchases {
		idx[s.Purchases[i].ID] = &s.Purchases[i]
	}
	return idx
}

// Invoices returns sales followed by purchases.
func (s *Snapshot) Invoices() []Invoice {
	out := make([]Invoice, 0, len(s.Sales)+len(s.Purchases))
	out = append(out, s.Sales...)
	return append(out, s.Purchases...)
}

// ItemIndex maps item id to item.
func (s *Snapshot) ItemIndex() map[string]Item {
	idx := make(map[string]Item, len(s.Items))
	for _, it := range s.Items {
		idx[it.ID] = it
	}
	return idx
}

// PartyExists reports whether a customer or supplier with id exists.
func (s *Snapshot) PartyExists(partyType PartyType, id string) bool {
	switch partyType {
	case PartyCustomer:
		for _, c := range s.Customers {
			if c.ID == id {
				return true
			}
		}
	case PartySupplier:
		for _, sup := range s.Suppliers {
			if sup.ID == id {
				return true
			}
		}
	}
	return false
}
