package billing

import (
	"errors"
	"testing"
	"time"

	"erp-backend/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	existing := []models.Invoice{
		{Kind: models.KindSale, Number: "S-0007"},
		{Kind: models.KindSale, Number: "S-0012"},
		{Kind: models.KindSale, Number: "legacy"},
		{Kind: models.KindPurchase, Number: "P-0099"},
	}
	assert.Equal(t, "S-0013", NextNumber(models.KindSale, existing))
	assert.Equal(t, "P-0100", NextNumber(models.KindPurchase, existing))
	assert.Equal(t, "S-0001", NextNumber(models.KindSale, nil))
}

func foreignPurchase() models.Invoice {
	return models.Invoice{
		Kind:             models.KindPurchase,
		Date:             time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		SupplierID:       "v1",
		Currency:         "usd",
		FxRateToBusiness: 278.5,
		Tax:              1.5,
		Items: []models.LineItem{
			{ItemID: "i1", Quantity: 2, UnitPrice: 10},
			{ItemID: "i2", Quantity: 1, UnitPrice: 3.25},
		},
	}
}

func TestPrepareInvoice_CurrencyRoundTrip(t *testing.T) {
	snap := &models.Snapshot{
		BaseCurrency: "PKR",
		Items:        []models.Item{{ID: "i1"}, {ID: "i2"}},
		Purchases:    []models.Invoice{{Kind: models.KindPurchase, Number: "P-0003"}},
	}
	inv := foreignPurchase()
	require.NoError(t, PrepareInvoice(&inv, snap))

	assert.Equal(t, "P-0004", inv.Number)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, 23.25, inv.Subtotal)
	assert.Equal(t, 24.75, inv.Total)
	assert.Equal(t, 6892.88, inv.TotalLocal)
	assert.Equal(t, 417.75, inv.TaxLocal)
	assert.Equal(t, 2785.0, inv.Items[0].UnitPriceLocal)

	// stored values are not re-derived on a second save
	before := inv.TotalLocal
	require.NoError(t, ValidateInvoice(inv, snap.ItemIndex()))
	assert.Equal(t, before, inv.TotalLocal)
}

func TestValidateInvoice_Rules(t *testing.T) {
	items := map[string]models.Item{"i1": {ID: "i1"}, "i2": {ID: "i2"}, "phone": {ID: "phone", SerialTracked: true}}

	prepared := func(mut func(*models.Invoice)) models.Invoice {
		inv := foreignPurchase()
		mut(&inv)
		ComputeTotals(&inv)
		FreezeLocalAmounts(&inv)
		return inv
	}

	tests := []struct {
		name  string
		inv   models.Invoice
		field string
	}{
		{"both parties", prepared(func(i *models.Invoice) { i.CustomerID = "c1" }), "supplierId"},
		{"sale without customer", prepared(func(i *models.Invoice) { i.Kind = models.KindSale; i.SupplierID = "" }), "customerId"},
		{"unknown item", prepared(func(i *models.Invoice) { i.Items[0].ItemID = "ghost" }), "items[0].itemId"},
		{"serial count", prepared(func(i *models.Invoice) {
			i.Items[0] = models.LineItem{ItemID: "phone", Quantity: 2, UnitPrice: 10, Serials: []string{"A"}}
		}), "items[0].serials"},
		{"duplicate serial", prepared(func(i *models.Invoice) {
			i.Items[0] = models.LineItem{ItemID: "phone", Quantity: 1, UnitPrice: 10, Serials: []string{"A"}}
			i.Items[1] = models.LineItem{ItemID: "phone", Quantity: 1, UnitPrice: 10, Serials: []string{"A"}}
		}), "items[1].serials"},
		{"overpaid inline", prepared(func(i *models.Invoice) { i.PaidAmountLocal = 1e9 }), "paid_amount_local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInvoice(tt.inv, items)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInvoice)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	drift := prepared(func(*models.Invoice) {})
	drift.TotalLocal += 5
	assert.ErrorIs(t, ValidateInvoice(drift, items), ErrInvalidInvoice)
}

func TestValidateInvoice_StructTags(t *testing.T) {
	inv := foreignPurchase()
	inv.Items = nil
	err := ValidateInvoice(inv, nil)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Items", verrs[0].Field())
}
