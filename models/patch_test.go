package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotApply(t *testing.T) {
	snap := &Snapshot{
		Sales:     []Invoice{{ID: "s1", Kind: KindSale}, {ID: "s2", Kind: KindSale}},
		Purchases: []Invoice{{ID: "p1", Kind: KindPurchase}},
		Payments: []Payment{
			{ID: "a", Amount: 10},
			{ID: "b", Amount: 20},
		},
	}

	snap.Apply(Patch{
		DeletePaymentIDs: []string{"a"},
		UpdatePayments:   []Payment{{ID: "b", Amount: 25}},
		CreatePayments:   []Payment{{ID: "c", Amount: 5}},
		DeleteInvoiceIDs: []string{"s2"},
		Invoices:         []InvoicePatch{{ID: "s1", PaidTotalLocal: 30, BalanceLocal: 70, Status: "Partial"}},
	})

	assert.Equal(t, []Payment{{ID: "b", Amount: 25}, {ID: "c", Amount: 5}}, snap.Payments)
	assert.Len(t, snap.Sales, 1)
	assert.Len(t, snap.Purchases, 1)
	assert.Equal(t, 30.0, snap.Sales[0].PaidTotalLocal)
	assert.Equal(t, 70.0, snap.Sales[0].BalanceLocal)
	assert.Equal(t, "Partial", snap.Sales[0].Status)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	assert.False(t, Patch{DeletePaymentIDs: []string{"x"}}.Empty())
}
