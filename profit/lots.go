package profit

import (
	"sort"
	"time"

	"erp-backend/models"
)

// Lot is the unconsumed slice of one purchase line.
type Lot struct {
	ItemID        string    `json:"itemId"`
	PurchaseID    string    `json:"purchaseId"`
	Date          time.Time `json:"date"`
	QtyRemaining  float64   `json:"qty_remaining"`
	UnitCostLocal float64   `json:"unitCost_local"`
}

// ExplodeLots turns purchases into per-item lot queues, oldest first (ties by
// purchase id, then line order).
func ExplodeLots(purchases []models.Invoice) map[string][]*Lot {
	lots, _ := explode(purchases)
	return lots
}

// explode also maps each purchased serial to the lot of the line that brought
// it in. The earliest purchase wins when a serial repeats.
func explode(purchases []models.Invoice) (map[string][]*Lot, map[string]*Lot) {
	lots := make(map[string][]*Lot)
	serials := make(map[string]*Lot)
	for _, p := range chronological(purchases) {
		for _, li := range p.Items {
			if li.Quantity <= 0 {
				continue
			}
			lot := &Lot{
				ItemID:        li.ItemID,
				PurchaseID:    p.ID,
				Date:          p.Date,
				QtyRemaining:  li.Quantity,
				UnitCostLocal: li.UnitPriceLocal,
			}
			lots[li.ItemID] = append(lots[li.ItemID], lot)
			for _, s := range li.Serials {
				if _, ok := serials[s]; !ok {
					serials[s] = lot
				}
			}
		}
	}
	return lots, serials
}

func chronological(invoices []models.Invoice) []models.Invoice {
	out := append([]models.Invoice(nil), invoices...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
