package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"Lobby/Models"
)

// Dashboard renders the ops status page: open task counts per category
// and who is currently on shift.
func Dashboard(c *fiber.Ctx) error {
	counts := make(map[string]int64)
	for category, table := range Models.TaskTables {
		var n int64
		Models.DB.Table(table).
			Where("deleted_at IS NULL AND status IN ?", []string{Models.StatusPending, Models.StatusInProgress}).
			Count(&n)
		counts[category] = n
	}

	var activeShifts []Models.Shift
	Models.DB.Where("status = ?", Models.ShiftActive).Find(&activeShifts)

	var unclaimed int64
	Models.DB.Model(&Models.ShiftHandover{}).Where("to_shift_id IS NULL").Count(&unclaimed)

	return c.Render("index", fiber.Map{
		"Counts":             counts,
		"ActiveShifts":       activeShifts,
		"UnclaimedHandovers": unclaimed,
	})
}
