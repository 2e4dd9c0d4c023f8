package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ShiftActive    = "active"
	ShiftCompleted = "completed"
	ShiftPaused    = "paused"
	ShiftCancelled = "cancelled"
)

// Shift is one bounded work period for a staff member. At most one active
// shift per user; StartShift force-completes any leftover active row first.
type Shift struct {
	gorm.Model
	UserID                 uint       `json:"user_id" gorm:"not null;index"`
	StartTime              time.Time  `json:"start_time" gorm:"not null"`
	EndTime                *time.Time `json:"end_time"`
	Status                 string     `json:"status" gorm:"type:varchar(20);default:active;index"`
	HandoverNotes          string     `json:"handover_notes" gorm:"type:text"`
	VoiceNoteURL           string     `json:"voice_note_url"`
	VoiceNoteTranscription string     `json:"voice_note_transcription" gorm:"type:text"`
}

// ShiftHandover is the frozen snapshot written when a shift closes.
// HandoverData holds the full task snapshot (see Handover.Snapshot); the
// incoming shift works from this copy, not from live rows. ToShiftID stays
// NULL until a later shift claims the handover.
type ShiftHandover struct {
	gorm.Model
	FromShiftID            uint           `json:"from_shift_id" gorm:"not null;index"`
	ToShiftID              *uint          `json:"to_shift_id" gorm:"index"`
	HandoverData           datatypes.JSON `json:"handover_data"`
	AdditionalNotes        string         `json:"additional_notes" gorm:"type:text"`
	VoiceNoteURL           string         `json:"voice_note_url"`
	VoiceNoteTranscription string         `json:"voice_note_transcription" gorm:"type:text"`
}

// ShiftReview tracks the incoming user's start-of-shift review session:
// which phase they are in and which carried-over cards they have read.
// Persisted so a page reload does not lose progress (the old client kept
// this in a page-lifetime set).
type ShiftReview struct {
	gorm.Model
	UserID        uint           `json:"user_id" gorm:"not null;index"`
	ShiftID       *uint          `json:"shift_id"`
	HandoverID    *uint          `json:"handover_id"`
	Phase         string         `json:"phase" gorm:"type:varchar(20);default:voice"`
	CardKeys      datatypes.JSON `json:"card_keys"`
	AckedTaskKeys datatypes.JSON `json:"acked_task_keys"`
}
