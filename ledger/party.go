package ledger

import (
	"sort"
	"strconv"
	"time"

	"erp-backend/billing"
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/shopspring/decimal"
)

// Row types.
const (
	TypeSale           = "sale"
	TypePurchase       = "purchase"
	TypePaymentIn      = "payment_in"
	TypePaymentOut     = "payment_out"
	TypeSaleReturn     = string(models.SaleReturn)
	TypePurchaseReturn = string(models.PurchaseReturn)
	TypeCreditNote     = string(models.CreditNote)
	TypeDebitNote      = string(models.DebitNote)
	TypeInlinePayment  = "inline_payment"
)

// IsInternal reports whether t is an internal, non-party transaction type.
func IsInternal(t string) bool {
	return models.IsInternalCategory(t)
}

// Query selects one party's statement. Zero From or To leaves that side open;
// To is inclusive.
type Query struct {
	PartyType models.PartyType `json:"partyType"`
	PartyID   string           `json:"partyId"`
	From      time.Time        `json:"from,omitempty"`
	To        time.Time        `json:"to,omitempty"`
}

// Row is one normalized statement line.
type Row struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	RefID       string    `json:"refId"`
	InvoiceID   string    `json:"invoiceId,omitempty"`
	Number      string    `json:"number,omitempty"`
	Description string    `json:"description,omitempty"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
	Balance     float64   `json:"balance"`
}

func (r Row) key() string {
	if r.ID != "" {
		return r.Type + "|" + r.ID
	}
	return r.Type + "|" + r.Date.Format(time.RFC3339Nano) + "|" + strconv.FormatFloat(r.Debit-r.Credit, 'f', 2, 64)
}

// Statement is a party ledger over a date range.
type Statement struct {
	PartyType      models.PartyType `json:"partyType"`
	PartyID        string           `json:"partyId"`
	From           time.Time        `json:"from,omitempty"`
	To             time.Time        `json:"to,omitempty"`
	OpeningBalance float64          `json:"openingBalance"`
	ClosingBalance float64          `json:"closingBalance"`
	TotalDebit     float64          `json:"totalDebit"`
	TotalCredit    float64          `json:"totalCredit"`
	Transactions   []Row            `json:"transactions"`

	// Payment ids no party could be attributed to. They may belong to this party.
	Unresolved []string `json:"unresolved,omitempty"`
}

// BuildLedgerData reconstructs the party's chronological statement from sales,
// purchases, payments, returns and notes. Balance is the running sum of
// debit - credit; for a customer a positive balance is owed to the business,
// for a supplier a negative balance is owed by it.
func BuildLedgerData(q Query, snap *models.Snapshot) Statement {
	index := snap.InvoiceIndex()
	st := Statement{PartyType: q.PartyType, PartyID: q.PartyID, From: q.From, To: q.To}

	b := &builder{seen: map[string]struct{}{}}
	isCustomer := q.PartyType == models.PartyCustomer

	for _, inv := range partyInvoices(snap, q) {
		row := Row{ID: inv.ID, Date: inv.Date, RefID: inv.ID, InvoiceID: inv.ID, Number: inv.Number}
		if isCustomer {
			row.Type, row.Debit = TypeSale, inv.TotalLocal
		} else {
			row.Type, row.Credit = TypePurchase, inv.TotalLocal
		}
		b.add(row)

		if inv.PaidAmountLocal > 0 && !billing.HasSettlingPayment(inv, snap.Payments) {
			inline := Row{
				ID:          "inline:" + inv.ID,
				Date:        inv.Date,
				Type:        TypeInlinePayment,
				RefID:       inv.ID,
				InvoiceID:   inv.ID,
				Number:      inv.Number,
				Description: string(inv.PaymentMethod),
			}
			if isCustomer {
				inline.Credit = inv.PaidAmountLocal
			} else {
				inline.Debit = inv.PaidAmountLocal
			}
			b.add(inline)
		}
	}

	for _, p := range snap.Payments {
		res := ResolveParty(p, index)
		if !res.Resolved() {
			if !IsInternal(p.Category) {
				st.Unresolved = append(st.Unresolved, p.ID)
			}
			continue
		}
		if !res.Is(q.PartyType, q.PartyID) {
			continue
		}
		row := Row{
			ID:          p.ID,
			Date:        p.Date,
			RefID:       p.ID,
			InvoiceID:   p.InvoiceID,
			Description: p.Note,
		}
		if inv, ok := index[p.InvoiceID]; ok {
			row.Number = inv.Number
		}
		row.Type = p.Category
		if row.Type == "" {
			row.Type = TypePaymentIn
			if p.Type == models.PaymentOut {
				row.Type = TypePaymentOut
			}
		}
		amount := utils.SafeSum(p.Amount, p.Discount)
		if p.Type == models.PaymentOut {
			row.Debit = amount
		} else {
			row.Credit = amount
		}
		b.add(row)
	}

	for _, r := range snap.Returns {
		if !resolveReturn(r, index).Is(q.PartyType, q.PartyID) {
			continue
		}
		row := Row{ID: r.ID, Date: r.Date, Type: string(r.Kind), RefID: r.ID, InvoiceID: r.InvoiceID, Description: r.Note}
		if r.Kind == models.PurchaseReturn {
			row.Debit = r.AmountLocal
		} else {
			row.Credit = r.AmountLocal
		}
		b.add(row)
	}

	for _, n := range snap.Notes {
		if !resolveNote(n, index).Is(q.PartyType, q.PartyID) {
			continue
		}
		row := Row{ID: n.ID, Date: n.Date, Type: string(n.Kind), RefID: n.ID, InvoiceID: n.InvoiceID, Description: n.Reason}
		if n.Kind == models.DebitNote {
			row.Debit = n.AmountLocal
		} else {
			row.Credit = n.AmountLocal
		}
		b.add(row)
	}

	rows := b.rows
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].RefID < rows[j].RefID
	})

	running := decimal.Zero
	var debit, credit decimal.Decimal
	st.Transactions = []Row{}
	for _, r := range rows {
		delta := decimal.NewFromFloat(r.Debit).Sub(decimal.NewFromFloat(r.Credit))
		if !q.From.IsZero() && r.Date.Before(q.From) {
			running = running.Add(delta)
			st.OpeningBalance = running.Round(2).InexactFloat64()
			continue
		}
		if !q.To.IsZero() && r.Date.After(q.To) {
			break
		}
		running = running.Add(delta)
		debit = debit.Add(decimal.NewFromFloat(r.Debit))
		credit = credit.Add(decimal.NewFromFloat(r.Credit))
		r.Balance = running.Round(2).InexactFloat64()
		st.Transactions = append(st.Transactions, r)
	}

	st.ClosingBalance = running.Round(2).InexactFloat64()
	st.TotalDebit = debit.Round(2).InexactFloat64()
	st.TotalCredit = credit.Round(2).InexactFloat64()
	return st
}

// PartyBalance is the all-time closing balance of a party.
func PartyBalance(partyType models.PartyType, partyID string, snap *models.Snapshot) float64 {
	return BuildLedgerData(Query{PartyType: partyType, PartyID: partyID}, snap).ClosingBalance
}

type builder struct {
	seen map[string]struct{}
	rows []Row
}

func (b *builder) add(r Row) {
	if IsInternal(r.Type) {
		return
	}
	if utils.ApproxZero(r.Debit) && utils.ApproxZero(r.Credit) {
		return
	}
	k := r.key()
	if _, dup := b.seen[k]; dup {
		return
	}
	b.seen[k] = struct{}{}
	b.rows = append(b.rows, r)
}

func partyInvoices(snap *models.Snapshot, q Query) []models.Invoice {
	src := snap.Sales
	if q.PartyType == models.PartySupplier {
		src = snap.Purchases
	} else if q.PartyType != models.PartyCustomer {
		return nil
	}
	var out []models.Invoice
	for _, inv := range src {
		if inv.PartyID() == q.PartyID {
			out = append(out, inv)
		}
	}
	return out
}
