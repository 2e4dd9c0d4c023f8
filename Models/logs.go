package Models

import (
	"time"

	"gorm.io/gorm"
)

// APILog is one logged API request, written by the request-logging
// middleware and queried by the admin logs endpoints.
type APILog struct {
	gorm.Model
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Method    string    `json:"method" gorm:"type:varchar(10)"`
	Path      string    `json:"path" gorm:"index"`
	Status    int       `json:"status"`
	LatencyMs int64     `json:"latency_ms"`
	IP        string    `json:"ip" gorm:"type:varchar(45)"`
	UserAgent string    `json:"user_agent"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	Username  string    `json:"username"`
	Error     string    `json:"error,omitempty" gorm:"type:text"`
}
