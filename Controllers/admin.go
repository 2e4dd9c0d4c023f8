package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Models"
)

// AdminController holds the one-off data cleanup endpoints that replaced
// the old migration scripts: bulk location renames and normalization of
// legacy status/priority strings still present in old rows.
type AdminController struct {
	DB *gorm.DB
}

// NewAdminController creates a new AdminController
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

type renameLocationRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// RenameLocation rewrites a location string across every task table.
func (ac *AdminController) RenameLocation(c *fiber.Ctx) error {
	var req renameLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErrors(err),
		})
	}

	updated := int64(0)
	for _, table := range Models.TaskTables {
		res := ac.DB.Table(table).Where("location = ?", req.From).Update("location", req.To)
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Rename failed"})
		}
		updated += res.RowsAffected
	}
	return c.JSON(fiber.Map{"updated": updated})
}

// NormalizeLegacyValues collapses old status aliases (resolved, verified)
// and priority scales (low/medium/high) onto the current value sets.
func (ac *AdminController) NormalizeLegacyValues(c *fiber.Ctx) error {
	statusRewrites := map[string]string{
		"resolved": Models.StatusCompleted,
		"verified": Models.StatusCompleted,
	}
	priorityRewrites := map[string]string{
		"low":    Models.PriorityNormal,
		"medium": Models.PriorityNormal,
		"high":   Models.PriorityUrgent,
	}

	updated := int64(0)
	for _, table := range Models.TaskTables {
		for from, to := range statusRewrites {
			res := ac.DB.Table(table).Where("status = ?", from).Update("status", to)
			if res.Error != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Normalization failed"})
			}
			updated += res.RowsAffected
		}
		for from, to := range priorityRewrites {
			res := ac.DB.Table(table).Where("priority = ?", from).Update("priority", to)
			if res.Error != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Normalization failed"})
			}
			updated += res.RowsAffected
		}
	}
	return c.JSON(fiber.Map{"updated": updated})
}
