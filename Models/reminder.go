package Models

import (
	"time"

	"gorm.io/gorm"
)

// Reminder is a scheduled prompt shown to staff (wake-up calls, room
// re-checks, scheduled follow-ups).
type Reminder struct {
	gorm.Model
	Title     string    `json:"title" gorm:"not null" validate:"required"`
	Message   string    `json:"message" gorm:"type:text"`
	DueAt     time.Time `json:"due_at" gorm:"not null;index"`
	CreatedBy uint      `json:"created_by" gorm:"not null"`
	TargetID  *uint     `json:"target_id" gorm:"index"` // specific staff member, or nil for everyone
	Recurring string    `json:"recurring" gorm:"type:varchar(20)"` // "", "hourly", "daily"
}

// ReminderReceipt records, per user, when a reminder was last shown and
// whether it was acknowledged. Replaces the old client-side shown-ids set
// that reset on every page load.
type ReminderReceipt struct {
	gorm.Model
	ReminderID     uint       `json:"reminder_id" gorm:"not null;index:idx_reminder_user,unique"`
	UserID         uint       `json:"user_id" gorm:"not null;index:idx_reminder_user,unique"`
	LastSeenAt     *time.Time `json:"last_seen_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
}
