package routes

import (
	"github.com/gofiber/fiber/v2"

	"erp-backend/controllers"
	"erp-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Parties
	protected.Post("/customers", controllers.CreateCustomer)
	protected.Get("/customers", controllers.GetCustomers)
	protected.Get("/customers/:id", controllers.GetCustomer)
	protected.Patch("/customers/:id", controllers.UpdateCustomer)

	protected.Post("/suppliers", controllers.CreateSupplier)
	protected.Get("/suppliers", controllers.GetSuppliers)
	protected.Patch("/suppliers/:id", controllers.UpdateSupplier)

	protected.Get("/parties/:partyType/:partyId/outstanding", controllers.GetOutstanding)

	// Items
	protected.Post("/items", controllers.CreateItems) // single or batch
	protected.Get("/items", controllers.GetItems)

	// Invoices
	protected.Post("/sales", controllers.CreateSale)
	protected.Post("/purchases", controllers.CreatePurchase)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Put("/invoices/:id", controllers.UpdateInvoice)
	protected.Delete("/invoices/:id", controllers.DeleteInvoice)
	protected.Get("/invoices/:id/status", controllers.GetInvoiceStatus)

	// Profit
	protected.Post("/sales/profit", controllers.PreviewSaleProfit)
	protected.Get("/sales/:id/profit", controllers.GetSaleProfit)
	protected.Get("/reports/profit", controllers.GetProfitReport)

	// Payments
	protected.Post("/payments/allocate", controllers.PreviewAllocation)
	protected.Post("/payments", controllers.CreatePayment)
	protected.Get("/payments", controllers.GetPayments)
	protected.Put("/payments/:id", controllers.UpdatePayment)
	protected.Delete("/payments/:id", controllers.DeletePayment)

	// Statements
	protected.Get("/ledger/:partyType/:partyId", controllers.GetLedger)
	protected.Get("/cashbook", controllers.GetCashbook)

	protected.Post("/import", controllers.ImportSnapshot)
}
