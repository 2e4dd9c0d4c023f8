package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Models"
)

// LogController serves the admin request-log views.
type LogController struct {
	DB *gorm.DB
}

// NewLogController creates a new LogController
func NewLogController(db *gorm.DB) *LogController {
	return &LogController{DB: db}
}

// GetLogs returns recent request logs, newest first, with optional
// ?limit=, ?path= and ?user_id= filters.
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	query := lc.DB.Model(&Models.APILog{}).Order("timestamp DESC").Limit(limit)
	if path := c.Query("path"); path != "" {
		query = query.Where("path LIKE ?", "%"+path+"%")
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var logs []Models.APILog
	if err := query.Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve logs"})
	}
	return c.JSON(logs)
}

// GetLogStats summarizes the last 24 hours of traffic.
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	since := time.Now().Add(-24 * time.Hour)

	var total, errors int64
	lc.DB.Model(&Models.APILog{}).Where("timestamp >= ?", since).Count(&total)
	lc.DB.Model(&Models.APILog{}).Where("timestamp >= ? AND status >= 500", since).Count(&errors)

	var avgLatency float64
	lc.DB.Model(&Models.APILog{}).Where("timestamp >= ?", since).
		Select("COALESCE(AVG(latency_ms), 0)").Scan(&avgLatency)

	type pathCount struct {
		Path  string `json:"path"`
		Count int64  `json:"count"`
	}
	var topPaths []pathCount
	lc.DB.Model(&Models.APILog{}).Where("timestamp >= ?", since).
		Select("path, COUNT(*) as count").Group("path").
		Order("count DESC").Limit(10).Scan(&topPaths)

	return c.JSON(fiber.Map{
		"since":          since,
		"total_requests": total,
		"server_errors":  errors,
		"avg_latency_ms": avgLatency,
		"top_paths":      topPaths,
	})
}
