package ledger

import (
	"sort"
	"time"

	"erp-backend/billing"
	"erp-backend/models"

	"github.com/shopspring/decimal"
)

// Account is cash in hand (zero BankID, method cash) or one bank account.
type Account struct {
	Method models.PaymentMethod `json:"method"`
	BankID string               `json:"bankId,omitempty"`
}

var CashAccount = Account{Method: models.MethodCash}

func accountOf(method models.PaymentMethod, bankID string) Account {
	if method == models.MethodBank {
		return Account{Method: models.MethodBank, BankID: bankID}
	}
	return CashAccount
}

// Movement sources.
const (
	MovementPayment       = "payment"
	MovementInlinePayment = "inline_payment"
	MovementExpense       = "expense"
	MovementCashEntry     = "cash_entry"
)

// Movement is one signed change to a cash or bank balance.
type Movement struct {
	Date    time.Time `json:"date"`
	Source  string    `json:"source"`
	RefID   string    `json:"refId"`
	Account Account   `json:"account"`
	Amount  float64   `json:"amount"`
	Balance float64   `json:"balance"`
	Note    string    `json:"note,omitempty"`
}

// Movements lists every cash/bank movement in the snapshot, oldest first, with
// the running balance of its own account. Discounts never move money; inline
// invoice payments count only while no payment settles the invoice.
func Movements(snap *models.Snapshot) []Movement {
	var out []Movement
	for _, p := range snap.Payments {
		amount := p.Amount
		if p.Type == models.PaymentOut {
			amount = -amount
		}
		out = append(out, Movement{
			Date: p.Date, Source: MovementPayment, RefID: p.ID,
			Account: accountOf(p.Method, p.BankID), Amount: amount, Note: p.Note,
		})
	}
	for _, inv := range snap.Invoices() {
		if inv.PaidAmountLocal <= 0 || billing.HasSettlingPayment(inv, snap.Payments) {
			continue
		}
		amount := inv.PaidAmountLocal
		if inv.Kind == models.KindPurchase {
			amount = -amount
		}
		out = append(out, Movement{
			Date: inv.Date, Source: MovementInlinePayment, RefID: inv.ID,
			Account: accountOf(inv.PaymentMethod, inv.BankID), Amount: amount, Note: inv.Number,
		})
	}
	for _, e := range snap.Expenses {
		out = append(out, Movement{
			Date: e.Date, Source: MovementExpense, RefID: e.ID,
			Account: accountOf(e.Method, e.BankID), Amount: -e.Amount, Note: e.Category,
		})
	}
	for _, c := range snap.CashEntries {
		out = append(out, Movement{
			Date: c.Date, Source: MovementCashEntry, RefID: c.ID,
			Account: accountOf(c.Method, c.BankID), Amount: c.Amount, Note: c.Type,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].RefID < out[j].RefID
	})

	running := openings(snap)
	for i := range out {
		acc := out[i].Account
		running[acc] = running[acc].Add(decimal.NewFromFloat(out[i].Amount))
		out[i].Balance = running[acc].Round(2).InexactFloat64()
	}
	return out
}

func openings(snap *models.Snapshot) map[Account]decimal.Decimal {
	m := map[Account]decimal.Decimal{CashAccount: decimal.NewFromFloat(snap.CashInHand)}
	for _, b := range snap.Banks {
		m[Account{Method: models.MethodBank, BankID: b.ID}] = decimal.NewFromFloat(b.OpeningBalance)
	}
	return m
}

// BankBalance is the derived balance of one bank account.
type BankBalance struct {
	BankID  string  `json:"bankId"`
	Name    string  `json:"name"`
	Opening float64 `json:"openingBalance"`
	Balance float64 `json:"balance"`
}

// Balances is the cash and bank position derived from movements.
type Balances struct {
	CashInHand float64       `json:"cashInHand"`
	Banks      []BankBalance `json:"banks"`
	Total      float64       `json:"total"`
}

// DeriveBalances computes every balance as opening + sum of movements. Banks
// referenced by movements but missing from the snapshot are listed unnamed.
func DeriveBalances(snap *models.Snapshot) Balances {
	sums := openings(snap)
	for _, m := range Movements(snap) {
		sums[m.Account] = sums[m.Account].Add(decimal.NewFromFloat(m.Amount))
	}

	out := Balances{CashInHand: sums[CashAccount].Round(2).InexactFloat64(), Banks: []BankBalance{}}
	total := sums[CashAccount]
	listed := map[string]struct{}{}
	for _, b := range snap.Banks {
		acc := Account{Method: models.MethodBank, BankID: b.ID}
		out.Banks = append(out.Banks, BankBalance{
			BankID: b.ID, Name: b.Name, Opening: b.OpeningBalance,
			Balance: sums[acc].Round(2).InexactFloat64(),
		})
		total = total.Add(sums[acc])
		listed[b.ID] = struct{}{}
	}
	var extra []string
	for acc := range sums {
		if _, ok := listed[acc.BankID]; !ok && acc != CashAccount {
			extra = append(extra, acc.BankID)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		acc := Account{Method: models.MethodBank, BankID: id}
		out.Banks = append(out.Banks, BankBalance{BankID: id, Balance: sums[acc].Round(2).InexactFloat64()})
		total = total.Add(sums[acc])
	}
	out.Total = total.Round(2).InexactFloat64()
	return out
}

// RebaseOpeningBalances turns the running balances a legacy store kept into
// opening balances, so the derived balance of each account still equals what
// the legacy store showed.
func RebaseOpeningBalances(res *models.NormalizeResult) {
	snap := res.Snapshot
	sums := map[Account]decimal.Decimal{}
	for _, m := range Movements(&models.Snapshot{
		Sales: snap.Sales, Purchases: snap.Purchases, Payments: snap.Payments,
		Expenses: snap.Expenses, CashEntries: snap.CashEntries,
	}) {
		sums[m.Account] = sums[m.Account].Add(decimal.NewFromFloat(m.Amount))
	}

	if res.LegacyCashInHand != nil {
		snap.CashInHand = decimal.NewFromFloat(*res.LegacyCashInHand).Sub(sums[CashAccount]).Round(2).InexactFloat64()
	}
	for i := range snap.Banks {
		legacy, ok := res.LegacyBankBalances[snap.Banks[i].ID]
		if !ok {
			continue
		}
		acc := Account{Method: models.MethodBank, BankID: snap.Banks[i].ID}
		snap.Banks[i].OpeningBalance = decimal.NewFromFloat(legacy).Sub(sums[acc]).Round(2).InexactFloat64()
	}
}
