package controllers

import (
	"erp-backend/database"

	"github.com/gofiber/fiber/v2"
)

// ImportSnapshot loads a legacy JSON export into the caller's tenant.
func ImportSnapshot(c *fiber.Ctx) error {
	res, err := database.PrepareLegacy(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	db, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}
	counts, err := database.ImportSnapshot(db, res.Snapshot)
	if err != nil {
		return err
	}

	log := requestLog(c, "import")
	log.Info().
		Interface("counts", counts).
		Int("warnings", len(res.Warnings)).
		Msg("legacy snapshot imported")
	return c.Status(fiber.StatusCreated).JSON(database.ImportResult{Counts: counts, Warnings: res.Warnings})
}
