package ledger

import (
	"erp-backend/models"
)

type Source string

const (
	SourceExplicit   Source = "explicit"
	SourceInvoice    Source = "invoice"
	SourceUnresolved Source = "unresolved"
)

// Resolution says which party a record belongs to and how that was decided.
type Resolution struct {
	PartyType models.PartyType `json:"partyType,omitempty"`
	PartyID   string           `json:"partyId,omitempty"`
	Source    Source           `json:"source"`
}

func (r Resolution) Resolved() bool {
	return r.Source != SourceUnresolved
}

// Is reports whether r resolved to the given party.
func (r Resolution) Is(partyType models.PartyType, partyID string) bool {
	return r.Resolved() && r.PartyType == partyType && r.PartyID == partyID
}

// ResolveParty attributes a payment to a party. Explicit fields win; otherwise
// the linked invoice's party is used. A payment with a party id but no party
// type takes the type from its flow.
func ResolveParty(p models.Payment, index models.InvoiceIndex) Resolution {
	return resolve(p.PartyType, p.PartyID, p.InvoiceID, index, func() models.PartyType {
		if p.Type == models.PaymentOut {
			return models.PartySupplier
		}
		return models.PartyCustomer
	})
}

func resolve(partyType models.PartyType, partyID, invoiceID string, index models.InvoiceIndex, fallback func() models.PartyType) Resolution {
	if partyID != "" && partyType.Valid() {
		return Resolution{PartyType: partyType, PartyID: partyID, Source: SourceExplicit}
	}
	if inv, ok := index[invoiceID]; ok && invoiceID != "" && inv.PartyID() != "" {
		if partyID == "" || partyID == inv.PartyID() {
			return Resolution{PartyType: inv.Kind.PartyType(), PartyID: inv.PartyID(), Source: SourceInvoice}
		}
	}
	if partyID != "" && fallback != nil {
		return Resolution{PartyType: fallback(), PartyID: partyID, Source: SourceExplicit}
	}
	return Resolution{Source: SourceUnresolved}
}

func resolveReturn(r models.Return, index models.InvoiceIndex) Resolution {
	return resolve(r.PartyType, r.PartyID, r.InvoiceID, index, func() models.PartyType {
		if r.Kind == models.PurchaseReturn {
			return models.PartySupplier
		}
		return models.PartyCustomer
	})
}

func resolveNote(n models.Note, index models.InvoiceIndex) Resolution {
	return resolve(n.PartyType, n.PartyID, n.InvoiceID, index, nil)
}
