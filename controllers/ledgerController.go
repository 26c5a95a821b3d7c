package controllers

import (
	"erp-backend/ledger"
	"erp-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetLedger returns one party's statement, optionally limited to ?from=&to=.
func GetLedger(c *fiber.Ctx) error {
	partyType, err := parsePartyType(c.Params("partyType"))
	if err != nil {
		return err
	}
	from, err := parseDay(c, "from", false)
	if err != nil {
		return err
	}
	to, err := parseDay(c, "to", true)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fiber.NewError(fiber.StatusBadRequest, "to is before from")
	}

	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}
	partyID := c.Params("partyId")
	if !snap.PartyExists(partyType, partyID) {
		return fiber.NewError(fiber.StatusNotFound, string(partyType)+" not found")
	}

	st := ledger.BuildLedgerData(ledger.Query{PartyType: partyType, PartyID: partyID, From: from, To: to}, snap)
	if len(st.Unresolved) > 0 {
		log := requestLog(c, "ledger")
		log.Warn().
			Str("party_id", partyID).
			Strs("payment_ids", st.Unresolved).
			Msg("payments without a resolvable party")
	}
	return c.JSON(fiber.Map{
		"statement": st,
		"closing":   utils.FormatMoney(st.ClosingBalance, snap.CurrencySymbol),
	})
}

// GetCashbook returns derived cash and bank balances with the movements behind
// them. ?from=&to= limit the movement list only.
func GetCashbook(c *fiber.Ctx) error {
	from, err := parseDay(c, "from", false)
	if err != nil {
		return err
	}
	to, err := parseDay(c, "to", true)
	if err != nil {
		return err
	}
	_, snap, err := tenantSnapshot(c)
	if err != nil {
		return err
	}

	movements := make([]ledger.Movement, 0)
	for _, m := range ledger.Movements(snap) {
		if (!from.IsZero() && m.Date.Before(from)) || (!to.IsZero() && m.Date.After(to)) {
			continue
		}
		movements = append(movements, m)
	}
	return c.JSON(fiber.Map{
		"balances":  ledger.DeriveBalances(snap),
		"movements": movements,
	})
}
