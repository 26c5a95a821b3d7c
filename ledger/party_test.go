package ledger

import (
	"testing"
	"time"

	"erp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(day int) time.Time {
	return time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)
}

func balances(rows []Row) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Balance)
	}
	return out
}

func TestBuildLedgerData_RunningBalance(t *testing.T) {
	snap := &models.Snapshot{
		Sales: []models.Invoice{{ID: "s1", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 500}},
		Payments: []models.Payment{
			{ID: "p1", Type: models.PaymentIn, PartyID: "c1", PartyType: models.PartyCustomer, Date: d(2), Amount: 200},
		},
	}
	st := BuildLedgerData(Query{PartyType: models.PartyCustomer, PartyID: "c1"}, snap)

	require.Len(t, st.Transactions, 2)
	assert.Equal(t, []float64{500, 300}, balances(st.Transactions))
	assert.Equal(t, TypeSale, st.Transactions[0].Type)
	assert.Equal(t, 500.0, st.Transactions[0].Debit)
	assert.Equal(t, TypePaymentIn, st.Transactions[1].Type)
	assert.Equal(t, 200.0, st.Transactions[1].Credit)
	assert.Zero(t, st.OpeningBalance)
	assert.Equal(t, 300.0, st.ClosingBalance)
	assert.Equal(t, 500.0, st.TotalDebit)
	assert.Equal(t, 200.0, st.TotalCredit)
}

func TestBuildLedgerData_InlineVersusExplicit(t *testing.T) {
	inv := models.Invoice{ID: "s1", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 100, PaidAmountLocal: 100}
	q := Query{PartyType: models.PartyCustomer, PartyID: "c1"}

	inlineOnly := BuildLedgerData(q, &models.Snapshot{Sales: []models.Invoice{inv}})
	require.Len(t, inlineOnly.Transactions, 2)
	assert.Equal(t, TypeInlinePayment, inlineOnly.Transactions[1].Type)
	assert.Zero(t, inlineOnly.ClosingBalance)

	snap := &models.Snapshot{
		Sales:    []models.Invoice{inv},
		Payments: []models.Payment{{ID: "p1", Type: models.PaymentIn, InvoiceID: "s1", Date: d(1), Amount: 100}},
	}
	st := BuildLedgerData(q, snap)
	var credits []Row
	for _, r := range st.Transactions {
		if r.Credit > 0 {
			credits = append(credits, r)
		}
	}
	require.Len(t, credits, 1)
	assert.Equal(t, "p1", credits[0].ID)
	assert.Equal(t, 100.0, credits[0].Credit)
	assert.Zero(t, st.ClosingBalance)
}

func TestBuildLedgerData_NonSettlingPaymentsKeepInline(t *testing.T) {
	inv := models.Invoice{ID: "s1", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 100, PaidAmountLocal: 100}
	q := Query{PartyType: models.PartyCustomer, PartyID: "c1"}

	t.Run("refund", func(t *testing.T) {
		snap := &models.Snapshot{
			Sales:    []models.Invoice{inv},
			Payments: []models.Payment{{ID: "r1", Type: models.PaymentOut, InvoiceID: "s1", Date: d(2), Amount: 20}},
		}
		st := BuildLedgerData(q, snap)
		require.Len(t, st.Transactions, 3)
		assert.Equal(t, TypeInlinePayment, st.Transactions[1].Type)
		assert.Equal(t, TypePaymentOut, st.Transactions[2].Type)
		assert.Equal(t, []float64{100, 0, 20}, balances(st.Transactions))
		assert.Equal(t, 20.0, st.ClosingBalance)
	})

	t.Run("internal post", func(t *testing.T) {
		snap := &models.Snapshot{
			Sales:    []models.Invoice{inv},
			Payments: []models.Payment{{ID: "a1", Type: models.PaymentIn, InvoiceID: "s1", Date: d(1), Amount: 100, Category: "auto_cash_post"}},
		}
		st := BuildLedgerData(q, snap)
		require.Len(t, st.Transactions, 2)
		assert.Equal(t, "inline:s1", st.Transactions[1].ID)
		assert.Zero(t, st.ClosingBalance)
	})
}

func TestBuildLedgerData_DuplicatePaymentCountedOnce(t *testing.T) {
	p := models.Payment{ID: "p1", Type: models.PaymentIn, PartyID: "c1", PartyType: models.PartyCustomer, Date: d(2), Amount: 50}
	snap := &models.Snapshot{Payments: []models.Payment{p, p}}
	st := BuildLedgerData(Query{PartyType: models.PartyCustomer, PartyID: "c1"}, snap)
	assert.Len(t, st.Transactions, 1)
	assert.Equal(t, -50.0, st.ClosingBalance)
}

func TestBuildLedgerData_InferenceAndExclusion(t *testing.T) {
	snap := &models.Snapshot{
		Sales: []models.Invoice{{ID: "s1", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 300}},
		Payments: []models.Payment{
			{ID: "inferred", Type: models.PaymentIn, InvoiceID: "s1", Date: d(3), Amount: 100, Discount: 10},
			{ID: "adj", Type: models.PaymentIn, PartyID: "c1", PartyType: models.PartyCustomer, Date: d(3), Amount: 999, Category: "cash_adjustment"},
			{ID: "orphan", Type: models.PaymentIn, Date: d(3), Amount: 5},
			{ID: "other", Type: models.PaymentIn, PartyID: "c2", PartyType: models.PartyCustomer, Date: d(3), Amount: 7},
		},
		Returns: []models.Return{{ID: "r1", Kind: models.SaleReturn, InvoiceID: "s1", Date: d(4), AmountLocal: 40}},
		Notes: []models.Note{
			{ID: "n1", Kind: models.CreditNote, PartyID: "c1", PartyType: models.PartyCustomer, Date: d(5), AmountLocal: 20},
			{ID: "n2", Kind: models.DebitNote, PartyID: "c1", PartyType: models.PartyCustomer, Date: d(6), AmountLocal: 15},
		},
	}
	st := BuildLedgerData(Query{PartyType: models.PartyCustomer, PartyID: "c1"}, snap)

	var types []string
	for _, r := range st.Transactions {
		types = append(types, r.Type)
	}
	assert.Equal(t, []string{TypeSale, TypePaymentIn, TypeSaleReturn, TypeCreditNote, TypeDebitNote}, types)
	assert.Equal(t, []float64{300, 190, 150, 130, 145}, balances(st.Transactions))
	assert.Equal(t, []string{"orphan"}, st.Unresolved)
}

func TestBuildLedgerData_Supplier(t *testing.T) {
	snap := &models.Snapshot{
		Purchases: []models.Invoice{{ID: "p1", Kind: models.KindPurchase, SupplierID: "v1", Date: d(1), TotalLocal: 800, PaidAmountLocal: 100}},
		Payments: []models.Payment{
			{ID: "pay", Type: models.PaymentOut, PartyID: "v1", PartyType: models.PartySupplier, Date: d(2), Amount: 300},
		},
		Returns: []models.Return{{ID: "r1", Kind: models.PurchaseReturn, PartyID: "v1", Date: d(3), AmountLocal: 50}},
	}
	st := BuildLedgerData(Query{PartyType: models.PartySupplier, PartyID: "v1"}, snap)
	require.Len(t, st.Transactions, 4)
	assert.Equal(t, []float64{-800, -700, -400, -350}, balances(st.Transactions))
	assert.Equal(t, -350.0, PartyBalance(models.PartySupplier, "v1", snap))
}

func TestBuildLedgerData_DateRange(t *testing.T) {
	snap := &models.Snapshot{
		Sales: []models.Invoice{
			{ID: "a", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 100},
			{ID: "b", Kind: models.KindSale, CustomerID: "c1", Date: d(10), TotalLocal: 50},
			{ID: "c", Kind: models.KindSale, CustomerID: "c1", Date: d(20), TotalLocal: 25},
		},
		Payments: []models.Payment{
			{ID: "p", Type: models.PaymentIn, PartyID: "c1", PartyType: models.PartyCustomer, Date: d(5), Amount: 30},
		},
	}
	st := BuildLedgerData(Query{PartyType: models.PartyCustomer, PartyID: "c1", From: d(5), To: d(10)}, snap)

	assert.Equal(t, 100.0, st.OpeningBalance)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, []float64{70, 120}, balances(st.Transactions))
	assert.Equal(t, 120.0, st.ClosingBalance)

	empty := BuildLedgerData(Query{PartyType: models.PartyCustomer, PartyID: "c1", From: d(25)}, snap)
	assert.Empty(t, empty.Transactions)
	assert.Equal(t, empty.OpeningBalance, empty.ClosingBalance)
	assert.Equal(t, 145.0, empty.ClosingBalance)
}

func TestBuildLedgerData_TiesByRefID(t *testing.T) {
	snap := &models.Snapshot{Sales: []models.Invoice{
		{ID: "z", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 1},
		{ID: "a", Kind: models.KindSale, CustomerID: "c1", Date: d(1), TotalLocal: 2},
	}}
	st := BuildLedgerData(Query{PartyType: models.PartyCustomer, PartyID: "c1"}, snap)
	assert.Equal(t, "a", st.Transactions[0].RefID)
}

func TestResolveParty(t *testing.T) {
	index := models.InvoiceIndex{
		"s1": {ID: "s1", Kind: models.KindSale, CustomerID: "c1"},
		"p1": {ID: "p1", Kind: models.KindPurchase, SupplierID: "v1"},
	}
	tests := []struct {
		name string
		in   models.Payment
		want Resolution
	}{
		{"explicit", models.Payment{PartyID: "c9", PartyType: models.PartyCustomer, InvoiceID: "s1"},
			Resolution{models.PartyCustomer, "c9", SourceExplicit}},
		{"via sale", models.Payment{InvoiceID: "s1"}, Resolution{models.PartyCustomer, "c1", SourceInvoice}},
		{"via purchase", models.Payment{InvoiceID: "p1", Type: models.PaymentOut}, Resolution{models.PartySupplier, "v1", SourceInvoice}},
		{"id without type", models.Payment{PartyID: "v7", Type: models.PaymentOut}, Resolution{models.PartySupplier, "v7", SourceExplicit}},
		{"dangling invoice", models.Payment{InvoiceID: "gone"}, Resolution{Source: SourceUnresolved}},
		{"nothing", models.Payment{}, Resolution{Source: SourceUnresolved}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveParty(tt.in, index))
		})
	}
}
