package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"erp-backend/database"
	"erp-backend/middlewares"
	"erp-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(schema string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		if schema != "" {
			c.Locals("schema", schema)
			c.Locals("userID", "u1")
		}
		return c.Next()
	})
	app.Get("/ledger/:partyType/:partyId", GetLedger)
	app.Get("/parties/:partyType/:partyId/outstanding", GetOutstanding)
	app.Get("/cashbook", GetCashbook)
	app.Get("/invoices", GetInvoices)
	app.Post("/sales", CreateSale)
	app.Post("/import", ImportSnapshot)
	return app
}

func status(t *testing.T, app *fiber.App, method, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestHandlers_RejectBadInputBeforeTouchingTheDatabase(t *testing.T) {
	prev := database.DB
	database.DB = nil
	t.Cleanup(func() { database.DB = prev })

	app := newTestApp("acme")
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown party type", http.MethodGet, "/ledger/vendor/x", "", fiber.StatusBadRequest},
		{"bad from date", http.MethodGet, "/ledger/customer/c1?from=01.04.2024", "", fiber.StatusBadRequest},
		{"to before from", http.MethodGet, "/ledger/customer/c1?from=2024-04-10&to=2024-04-01", "", fiber.StatusBadRequest},
		{"outstanding party type", http.MethodGet, "/parties/nobody/x/outstanding", "", fiber.StatusBadRequest},
		{"cashbook bad to", http.MethodGet, "/cashbook?to=tomorrow", "", fiber.StatusBadRequest},
		{"sale without lines", http.MethodPost, "/sales", `{"date":"2024-04-01T00:00:00Z","customerId":"c1","items":[]}`, fiber.StatusUnprocessableEntity},
		{"sale bad json", http.MethodPost, "/sales", `{"date":`, fiber.StatusBadRequest},
		{"import bad json", http.MethodPost, "/import", `[1,`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(t, app, tt.method, tt.path, tt.body))
		})
	}
}

func TestHandlers_TenantRequired(t *testing.T) {
	prev := database.DB
	database.DB = nil
	t.Cleanup(func() { database.DB = prev })

	assert.Equal(t, fiber.StatusUnauthorized, status(t, newTestApp(""), http.MethodGet, "/invoices", ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, newTestApp("Bad-Schema"), http.MethodGet, "/invoices", ""))
	assert.Equal(t, fiber.StatusInternalServerError, status(t, newTestApp("acme"), http.MethodGet, "/invoices", ""),
		"valid tenant but no database")
}

func TestInvoiceDTO_PartyFieldFollowsKind(t *testing.T) {
	dto := invoiceDTO{
		Date:            time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:      "c1",
		SupplierID:      "s1",
		Items:           []lineDTO{{ItemID: "i1", Quantity: 1.5, UnitPrice: 10}},
		PaidAmountLocal: 5.005,
	}

	sale := dto.invoice(models.KindSale)
	assert.Equal(t, "c1", sale.CustomerID)
	assert.Empty(t, sale.SupplierID)
	assert.Equal(t, models.MethodCash, sale.PaymentMethod, "inline payment defaults to cash")
	assert.Equal(t, 1.5, sale.Items[0].Quantity)

	purchase := dto.invoice(models.KindPurchase)
	assert.Equal(t, "s1", purchase.SupplierID)
	assert.Empty(t, purchase.CustomerID)
}

func TestSyncInvoice(t *testing.T) {
	inv := models.Invoice{ID: "s1", Kind: models.KindSale, TotalLocal: 100}
	syncInvoice(&inv, []models.Payment{
		{ID: "p1", Type: models.PaymentIn, InvoiceID: "s1", Amount: 40},
		{ID: "p2", Type: models.PaymentIn, InvoiceID: "other", Amount: 99},
	})
	assert.Equal(t, 40.0, inv.PaidTotalLocal)
	assert.Equal(t, 60.0, inv.BalanceLocal)
	assert.Equal(t, "Partial", inv.Status)
}

func TestPaymentUpdateDTO_Apply(t *testing.T) {
	amount := 12.345
	method := models.MethodCash
	p := models.Payment{ID: "p1", Amount: 50, Method: models.MethodBank, BankID: "b1", Note: "keep"}

	paymentUpdateDTO{Amount: &amount, Method: &method}.apply(&p)

	assert.Equal(t, 12.35, p.Amount)
	assert.Equal(t, models.MethodCash, p.Method)
	assert.Empty(t, p.BankID, "cash payments carry no bank")
	assert.Equal(t, "keep", p.Note)
}

func TestCheckInvoiceLink(t *testing.T) {
	inv := models.Invoice{ID: "s1", Kind: models.KindSale, CustomerID: "c1"}
	own := models.Payment{ID: "p1", Type: models.PaymentIn, PartyType: models.PartyCustomer, PartyID: "c1"}

	assert.NoError(t, checkInvoiceLink(own, inv))
	assert.NoError(t, checkInvoiceLink(models.Payment{ID: "p2", Type: models.PaymentIn}, inv), "party comes from the invoice")

	tests := []struct {
		name    string
		payment models.Payment
	}{
		{"wrong direction", models.Payment{Type: models.PaymentOut, PartyType: models.PartyCustomer, PartyID: "c1"}},
		{"other customer", models.Payment{Type: models.PaymentIn, PartyType: models.PartyCustomer, PartyID: "c2"}},
		{"supplier payment", models.Payment{Type: models.PaymentIn, PartyType: models.PartySupplier, PartyID: "c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkInvoiceLink(tt.payment, inv)
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)
		})
	}
}
