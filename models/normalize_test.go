package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyExport = `{
  "sales": [
    {
      "id": "s1",
      "invoiceNo": "S-0001",
      "date": "2024-03-01",
      "customer_id": "c1",
      "currency": "usd",
      "fxRate": "278",
      "total": 2,
      "paidAmount_base": "1,000",
      "paymentMethod": "Cash",
      "lineItems": [
        {"productId": "i1", "qty": 2, "price": 1, "imeis": "A1, A2"}
      ]
    },
    {
      "id": "s2",
      "date": "yesterday",
      "customerId": "c1",
      "grandTotal_local": 300
    }
  ],
  "purchases": [
    {"id": "p1", "date": "2024-02-01T10:00:00Z", "supplier": {"id": "v1"}, "total_local": 500}
  ],
  "payments": [
    {"id": "pay1", "type": "receive", "customerId": "c1", "saleId": "s1", "amount": "-200", "mode": "bank_transfer", "date": 1709251200000},
    {"id": "pay2", "type": "cash_adjustment", "amount": 50, "date": "2024-03-02"}
  ],
  "banks": [{"id": "b1", "name": "HBL", "balance": 900}],
  "cashInHand": 1200,
  "items": [{"id": "i1", "name": "Phone", "isSerialized": "yes"}],
  "creditNotes": [{"id": "n1", "customerId": "c1", "amount": 10, "date": "2024-03-05"}]
}`

func TestNormalizeSnapshot_ResolvesAliases(t *testing.T) {
	res, err := NormalizeSnapshot([]byte(legacyExport))
	require.NoError(t, err)
	snap := res.Snapshot

	require.Len(t, snap.Sales, 2)
	s1 := snap.Sales[0]
	assert.Equal(t, KindSale, s1.Kind)
	assert.Equal(t, "S-0001", s1.Number)
	assert.Equal(t, "c1", s1.CustomerID)
	assert.Equal(t, "USD", s1.Currency)
	assert.Equal(t, 278.0, s1.FxRateToBusiness)
	assert.Equal(t, 556.0, s1.TotalLocal)
	assert.Equal(t, 1000.0, s1.PaidAmountLocal)
	assert.Equal(t, MethodCash, s1.PaymentMethod)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), s1.Date)

	require.Len(t, s1.Items, 1)
	line := s1.Items[0]
	assert.Equal(t, "i1", line.ItemID)
	assert.Equal(t, 2.0, line.Quantity)
	assert.Equal(t, 278.0, line.UnitPriceLocal)
	assert.Equal(t, []string{"A1", "A2"}, line.Serials)

	s2 := snap.Sales[1]
	assert.Equal(t, 300.0, s2.TotalLocal)
	assert.Equal(t, 300.0, s2.Total)
	assert.True(t, s2.Date.IsZero())

	require.Len(t, snap.Purchases, 1)
	assert.Equal(t, "v1", snap.Purchases[0].SupplierID)
	assert.Equal(t, KindPurchase, snap.Purchases[0].Kind)
}

func TestNormalizeSnapshot_Payments(t *testing.T) {
	res, err := NormalizeSnapshot([]byte(legacyExport))
	require.NoError(t, err)

	require.Len(t, res.Snapshot.Payments, 2)
	p := res.Snapshot.Payments[0]
	assert.Equal(t, PaymentIn, p.Type)
	assert.Equal(t, "c1", p.PartyID)
	assert.Equal(t, PartyCustomer, p.PartyType)
	assert.Equal(t, "s1", p.InvoiceID)
	assert.Equal(t, 200.0, p.Amount)
	assert.Equal(t, MethodBank, p.Method)
	assert.Equal(t, time.UnixMilli(1709251200000).UTC(), p.Date)

	adj := res.Snapshot.Payments[1]
	assert.Equal(t, "cash_adjustment", adj.Category)
	assert.Equal(t, PaymentIn, adj.Type)
}

func TestNormalizeSnapshot_LegacyBalancesAndWarnings(t *testing.T) {
	res, err := NormalizeSnapshot([]byte(legacyExport))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"b1": 900}, res.LegacyBankBalances)
	require.NotNil(t, res.LegacyCashInHand)
	assert.Equal(t, 1200.0, *res.LegacyCashInHand)
	assert.Zero(t, res.Snapshot.CashInHand)
	assert.Zero(t, res.Snapshot.Banks[0].OpeningBalance)

	assert.True(t, res.Snapshot.Items[0].SerialTracked)

	require.Len(t, res.Snapshot.Notes, 1)
	assert.Equal(t, CreditNote, res.Snapshot.Notes[0].Kind)
	assert.Equal(t, PartyCustomer, res.Snapshot.Notes[0].PartyType)

	assert.Contains(t, res.Warnings, `sales[1]: unparseable date yesterday`)
}

func TestNormalizeSnapshot_BadJSON(t *testing.T) {
	_, err := NormalizeSnapshot([]byte(`{"sales": [`))
	assert.Error(t, err)
}
