package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookOutbox is one queued notification to the external automation
// service. Rows are written in the same transaction as the primary mutation
// and delivered later by the dispatcher job; delivery failures back off and
// retry, they never roll back the write that produced them.
type WebhookOutbox struct {
	gorm.Model
	EventType     string         `json:"event_type" gorm:"type:varchar(50);not null;index"`
	Payload       datatypes.JSON `json:"payload"`
	Attempts      int            `json:"attempts" gorm:"default:0"`
	NextAttemptAt time.Time      `json:"next_attempt_at" gorm:"index"`
	DeliveredAt   *time.Time     `json:"delivered_at"`
	LastError     string         `json:"last_error" gorm:"type:text"`
}

// WebhookPayload is the wire shape POSTed to the automation endpoint.
type WebhookPayload struct {
	EventType     string      `json:"event_type"`
	Timestamp     time.Time   `json:"timestamp"`
	CurrentUserID uint        `json:"current_user_id"`
	Data          interface{} `json:"data"`
}
