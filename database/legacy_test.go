package database

import (
	"testing"

	"erp-backend/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `{
  "sales": [
    {"id": "s1", "date": "2024-04-01", "customerId": "c1", "total_local": 500, "paid_amount_local": 100, "paymentMethod": "cash"},
    {"id": "s2", "date": "2024-04-02", "customerId": "c1", "total_local": 300}
  ],
  "payments": [
    {"id": "p1", "type": "in", "customerId": "c1", "invoiceId": "s2", "amount": 300, "method": "bank", "bankId": "b1", "date": "2024-04-03"}
  ],
  "banks": [{"id": "b1", "name": "HBL", "balance": 1000}],
  "cashInHand": 400
}`

func TestPrepareLegacy_SyncsInvoices(t *testing.T) {
	res, err := PrepareLegacy([]byte(export))
	require.NoError(t, err)

	sales := res.Snapshot.Sales
	require.Len(t, sales, 2)
	assert.Equal(t, "Partial", sales[0].Status)
	assert.Equal(t, 100.0, sales[0].PaidTotalLocal)
	assert.Equal(t, 400.0, sales[0].BalanceLocal)
	assert.Equal(t, "Paid", sales[1].Status)
	assert.Zero(t, sales[1].BalanceLocal)
}

func TestPrepareLegacy_KeepsLegacyBalances(t *testing.T) {
	res, err := PrepareLegacy([]byte(export))
	require.NoError(t, err)

	assert.Equal(t, 300.0, res.Snapshot.CashInHand, "inline cash receipt moved into the movement list")
	require.Len(t, res.Snapshot.Banks, 1)
	assert.Equal(t, 700.0, res.Snapshot.Banks[0].OpeningBalance)

	b := ledger.DeriveBalances(res.Snapshot)
	assert.Equal(t, 400.0, b.CashInHand)
	require.Len(t, b.Banks, 1)
	assert.Equal(t, 1000.0, b.Banks[0].Balance)
}

func TestPrepareLegacy_RejectsBadJSON(t *testing.T) {
	_, err := PrepareLegacy([]byte(`{"sales": [`))
	assert.Error(t, err)
}
