package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"Lobby/Models"
)

// LogConfig holds configuration for the request logging middleware
type LogConfig struct {
	// Enable console logging
	Console bool
	// Persist requests as APILog rows
	Database bool
	// Skip logging for specific paths
	SkipPaths []string
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Console:   true,
		Database:  true,
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// RequestLogger logs every request to the console and persists an APILog
// row the admin log endpoints can query.
func RequestLogger(config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		for _, skipPath := range cfg.SkipPaths {
			if c.Path() == skipPath {
				return c.Next()
			}
		}

		err := c.Next()
		latency := time.Since(start)

		var userID *uint
		var username string
		if user, ok := CurrentUser(c); ok {
			id := user.ID
			userID = &id
			username = user.Name
		}

		entry := Models.APILog{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    c.Response().StatusCode(),
			LatencyMs: latency.Milliseconds(),
			IP:        c.IP(),
			UserAgent: c.Get("User-Agent"),
			UserID:    userID,
			Username:  username,
		}
		if err != nil {
			entry.Error = err.Error()
		}

		if cfg.Console {
			log.Printf("%s %s %d %s %s", entry.Method, entry.Path, entry.Status, latency, entry.IP)
		}
		if cfg.Database && Models.DB != nil {
			if dbErr := Models.DB.Create(&entry).Error; dbErr != nil {
				log.Printf("Error persisting request log: %v", dbErr)
			}
		}

		return err
	}
}
