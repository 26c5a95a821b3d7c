package profit

import (
	"testing"
	"time"

	"erp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mar = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func purchase(id string, date time.Time, lines ...models.LineItem) models.Invoice {
	return models.Invoice{ID: id, Kind: models.KindPurchase, Date: date, SupplierID: "v1", Items: lines}
}

func saleOf(id string, date time.Time, lines ...models.LineItem) models.Invoice {
	return models.Invoice{ID: id, Kind: models.KindSale, Date: date, CustomerID: "c1", Items: lines}
}

func line(item string, qty, price float64, serials ...string) models.LineItem {
	return models.LineItem{ItemID: item, Quantity: qty, UnitPrice: price, UnitPriceLocal: price, Serials: serials}
}

func TestGetProfitOfSale_FIFO(t *testing.T) {
	snap := &models.Snapshot{Purchases: []models.Invoice{
		purchase("p2", feb, line("widget", 5, 12)),
		purchase("p1", jan, line("widget", 5, 10)),
	}}
	sale := saleOf("s1", mar, line("widget", 7, 20))

	got := GetProfitOfSale(sale, snap)
	require.Contains(t, got.ItemProfits, "widget")
	ip := got.ItemProfits["widget"]
	assert.Equal(t, 74.0, ip.COGS)
	assert.Equal(t, 74.0, ip.COGSTotal)
	assert.Equal(t, 10.57, ip.COGSUnit)
	assert.Equal(t, 66.0, ip.Profit)
	assert.Equal(t, 66.0, got.TotalProfit)
	assert.Zero(t, ip.Uncosted)
}

func TestEngine_LotsCarryOverBetweenSales(t *testing.T) {
	purchases := []models.Invoice{
		purchase("p1", jan, line("widget", 5, 10)),
		purchase("p2", feb, line("widget", 5, 12)),
	}
	sales := []models.Invoice{
		saleOf("later", mar, line("widget", 4, 20)),
		saleOf("first", feb, line("widget", 3, 20)),
	}
	e := NewEngine(sales, purchases)

	first, ok := e.Profit("first")
	require.True(t, ok)
	assert.Equal(t, 30.0, first.ItemProfits["widget"].COGS)

	later, _ := e.Profit("later")
	assert.Equal(t, 44.0, later.ItemProfits["widget"].COGS)

	all := e.All()
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].SaleID)
	assert.Equal(t, 3.0, e.lots["widget"][1].QtyRemaining)
}

func TestGetProfitOfSale_SerialExactMatch(t *testing.T) {
	snap := &models.Snapshot{
		Purchases: []models.Invoice{
			purchase("p1", jan, line("phone", 2, 100, "IMEI-1", "IMEI-2")),
			purchase("p2", feb, line("phone", 1, 150, "IMEI-3")),
		},
		Sales: []models.Invoice{saleOf("s0", jan, line("phone", 1, 200, "IMEI-1"))},
	}
	sale := saleOf("s1", mar, line("phone", 1, 200, "IMEI-3"))

	got := GetProfitOfSale(sale, snap)
	assert.Equal(t, 150.0, got.ItemProfits["phone"].COGS)
	assert.Equal(t, 50.0, got.TotalProfit)
}

func TestEngine_SerialSaleDrawsDownItsLot(t *testing.T) {
	purchases := []models.Invoice{
		purchase("p1", jan, line("phone", 1, 100, "IMEI-1")),
		purchase("p2", feb, line("phone", 1, 150, "IMEI-2")),
	}
	sales := []models.Invoice{
		saleOf("s0", feb, line("phone", 1, 200, "IMEI-1")),
		saleOf("s1", mar, line("phone", 1, 200)),
	}
	e := NewEngine(sales, purchases)

	s0, _ := e.Profit("s0")
	assert.Equal(t, 100.0, s0.ItemProfits["phone"].COGS)
	s1, _ := e.Profit("s1")
	assert.Equal(t, 150.0, s1.ItemProfits["phone"].COGS)
	assert.Zero(t, s1.ItemProfits["phone"].Uncosted)
	assert.Zero(t, e.lots["phone"][0].QtyRemaining)
	assert.Zero(t, e.lots["phone"][1].QtyRemaining)
}

func TestEngine_SerialFromDrainedLot(t *testing.T) {
	purchases := []models.Invoice{
		purchase("p1", jan, line("phone", 1, 100, "IMEI-1")),
		purchase("p2", feb, line("phone", 1, 150, "IMEI-2")),
	}
	sales := []models.Invoice{
		saleOf("s0", feb, line("phone", 1, 200)),
		saleOf("s1", mar, line("phone", 1, 200, "IMEI-1")),
	}
	e := NewEngine(sales, purchases)

	s1, _ := e.Profit("s1")
	assert.Equal(t, 100.0, s1.ItemProfits["phone"].COGS)
	assert.Zero(t, e.lots["phone"][1].QtyRemaining)
}

func TestGetProfitOfSale_UnknownSerialFallsBackToFIFO(t *testing.T) {
	snap := &models.Snapshot{Purchases: []models.Invoice{
		purchase("p1", jan, line("phone", 2, 100, "IMEI-1", "IMEI-2")),
	}}
	got := GetProfitOfSale(saleOf("s1", feb, line("phone", 2, 180, "IMEI-2", "NOPE")), snap)
	assert.Equal(t, 200.0, got.ItemProfits["phone"].COGS)
	assert.Equal(t, 160.0, got.TotalProfit)
}

func TestGetProfitOfSale_NoPurchaseYet(t *testing.T) {
	got := GetProfitOfSale(saleOf("s1", jan, line("gadget", 3, 15)), &models.Snapshot{})
	ip := got.ItemProfits["gadget"]
	assert.Zero(t, ip.COGS)
	assert.Equal(t, 45.0, ip.Profit)
	assert.Equal(t, 3.0, ip.Uncosted)
}

func TestGetProfitOfSale_RepeatedItemAccumulates(t *testing.T) {
	snap := &models.Snapshot{Purchases: []models.Invoice{purchase("p1", jan, line("widget", 10, 10))}}
	got := GetProfitOfSale(saleOf("s1", feb, line("widget", 2, 20), line("widget", 1, 25)), snap)

	ip := got.ItemProfits["widget"]
	assert.Equal(t, 3.0, ip.Quantity)
	assert.Equal(t, 65.0, ip.Revenue)
	assert.Equal(t, 30.0, ip.COGS)
	assert.Equal(t, 35.0, got.TotalProfit)
}

func TestProfitOfSalesAndSummary(t *testing.T) {
	snap := &models.Snapshot{
		Purchases: []models.Invoice{purchase("p1", jan, line("widget", 10, 10))},
		Sales: []models.Invoice{
			saleOf("s1", feb, line("widget", 2, 20)),
			saleOf("s2", mar, line("widget", 1, 30)),
		},
	}
	revenue, cogs, profit := Summary(ProfitOfSales(snap))
	assert.Equal(t, 70.0, revenue)
	assert.Equal(t, 30.0, cogs)
	assert.Equal(t, 40.0, profit)
}
