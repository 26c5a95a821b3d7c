package profit

import (
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/shopspring/decimal"
)

// ItemProfit is the gross profit of one item across the lines of a sale.
type ItemProfit struct {
	Quantity  float64 `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	COGS      float64 `json:"cogs"`
	COGSUnit  float64 `json:"cogs_unit"`
	COGSTotal float64 `json:"cogs_total"`
	// Units costed at 0 because no purchase lot was left.
	Uncosted float64 `json:"uncosted,omitempty"`
}

// SaleProfit is the gross profit of a sale in local currency.
type SaleProfit struct {
	SaleID      string                `json:"saleId"`
	TotalProfit float64               `json:"totalProfit"`
	ItemProfits map[string]ItemProfit `json:"itemProfits"`
}

// Engine costs every sale of a snapshot in one chronological FIFO pass, so lots
// partially consumed by one sale carry over to the next.
type Engine struct {
	lots    map[string][]*Lot
	serials map[string]*Lot
	results map[string]SaleProfit
	order   []string
}

// NewEngine walks all sales of sales against the lots of purchases.
func NewEngine(sales, purchases []models.Invoice) *Engine {
	lots, serials := explode(purchases)
	e := &Engine{
		lots:    lots,
		serials: serials,
		results: make(map[string]SaleProfit, len(sales)),
	}
	for _, s := range chronological(sales) {
		e.results[s.ID] = e.cost(s)
		e.order = append(e.order, s.ID)
	}
	return e
}

// Profit returns the computed profit of the sale with id.
func (e *Engine) Profit(saleID string) (SaleProfit, bool) {
	p, ok := e.results[saleID]
	return p, ok
}

// All returns every sale's profit in chronological order.
func (e *Engine) All() []SaleProfit {
	out := make([]SaleProfit, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.results[id])
	}
	return out
}

type itemAcc struct {
	qty, revenue, cogs, uncosted decimal.Decimal
}

func (e *Engine) cost(sale models.Invoice) SaleProfit {
	acc := make(map[string]*itemAcc)
	var order []string
	for _, li := range sale.Items {
		a, ok := acc[li.ItemID]
		if !ok {
			a = &itemAcc{}
			acc[li.ItemID] = a
			order = append(order, li.ItemID)
		}
		qty := decimal.NewFromFloat(li.Quantity)
		a.qty = a.qty.Add(qty)
		a.revenue = a.revenue.Add(qty.Mul(decimal.NewFromFloat(li.UnitPriceLocal)))

		remaining := qty
		for _, s := range li.Serials {
			if !remaining.IsPositive() {
				break
			}
			lot, ok := e.serials[s]
			if !ok {
				continue
			}
			a.cogs = a.cogs.Add(decimal.NewFromFloat(lot.UnitCostLocal))
			e.takeSerial(lot)
			remaining = remaining.Sub(decimal.NewFromInt(1))
		}
		cogs, short := e.consume(li.ItemID, remaining)
		a.cogs = a.cogs.Add(cogs)
		a.uncosted = a.uncosted.Add(short)
	}

	out := SaleProfit{SaleID: sale.ID, ItemProfits: make(map[string]ItemProfit, len(acc))}
	total := decimal.Zero
	for _, id := range order {
		a := acc[id]
		cogs := a.cogs.Round(2)
		profit := a.revenue.Sub(a.cogs).Round(2)
		ip := ItemProfit{
			Quantity:  a.qty.InexactFloat64(),
			Revenue:   a.revenue.Round(2).InexactFloat64(),
			Profit:    profit.InexactFloat64(),
			COGS:      cogs.InexactFloat64(),
			COGSTotal: cogs.InexactFloat64(),
			Uncosted:  a.uncosted.InexactFloat64(),
		}
		if a.qty.IsPositive() {
			ip.COGSUnit = a.cogs.Div(a.qty).Round(2).InexactFloat64()
		}
		out.ItemProfits[id] = ip
		total = total.Add(profit)
	}
	out.TotalProfit = total.Round(2).InexactFloat64()
	return out
}

// takeSerial removes the unit of a sold serial from its lot. When FIFO already
// drained that lot, the unit comes off the item's oldest remaining lot instead,
// so the item's unit count stays right.
func (e *Engine) takeSerial(lot *Lot) {
	if lot.QtyRemaining >= 1 {
		lot.QtyRemaining = decimal.NewFromFloat(lot.QtyRemaining).Sub(decimal.NewFromInt(1)).InexactFloat64()
		return
	}
	e.consume(lot.ItemID, decimal.NewFromInt(1))
}

// consume takes qty units of item from its oldest lots. Units that find no lot
// cost 0 and are returned as short.
func (e *Engine) consume(itemID string, qty decimal.Decimal) (cogs, short decimal.Decimal) {
	cogs = decimal.Zero
	for _, lot := range e.lots[itemID] {
		if !qty.IsPositive() {
			break
		}
		left := decimal.NewFromFloat(lot.QtyRemaining)
		if !left.IsPositive() {
			continue
		}
		take := decimal.Min(qty, left)
		cogs = cogs.Add(take.Mul(decimal.NewFromFloat(lot.UnitCostLocal)))
		lot.QtyRemaining = left.Sub(take).InexactFloat64()
		qty = qty.Sub(take)
	}
	if qty.IsPositive() {
		return cogs, qty
	}
	return cogs, decimal.Zero
}

// GetProfitOfSale costs sale against the snapshot's purchase history. Every
// earlier sale consumes lots first; sale replaces a stored sale with the same
// id, which lets unsaved edits be previewed.
func GetProfitOfSale(sale models.Invoice, snap *models.Snapshot) SaleProfit {
	sales := make([]models.Invoice, 0, len(snap.Sales)+1)
	for _, s := range snap.Sales {
		if s.ID != sale.ID {
			sales = append(sales, s)
		}
	}
	sales = append(sales, sale)
	p, _ := NewEngine(sales, snap.Purchases).Profit(sale.ID)
	return p
}

// ProfitOfSales costs every sale of snap.
func ProfitOfSales(snap *models.Snapshot) []SaleProfit {
	return NewEngine(snap.Sales, snap.Purchases).All()
}

// Summary totals a set of sale profits.
func Summary(profits []SaleProfit) (revenue, cogs, profit float64) {
	var r, c, p []any
	for _, sp := range profits {
		for _, ip := range sp.ItemProfits {
			r = append(r, ip.Revenue)
			c = append(c, ip.COGSTotal)
		}
		p = append(p, sp.TotalProfit)
	}
	return utils.SafeSum(r...), utils.SafeSum(c...), utils.SafeSum(p...)
}
