package Handover

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"Lobby/Models"
)

// ErrAlreadyClaimed is returned when two shift starts race for the same
// archive entry; the conditional update lets exactly one of them win.
var ErrAlreadyClaimed = errors.New("handover already claimed by another shift")

// Stats summarizes one reconciliation pass.
type Stats struct {
	TotalArchived int `json:"total_archived"`
	Transferred   int `json:"transferred"`
	Archived      int `json:"archived"`
}

// Result is what the incoming user reviews: the carried-over cards plus the
// predecessor's voice note and free-text notes. Pending is false when no
// unclaimed archive entry exists, which is the normal state between
// handovers, not an error.
type Result struct {
	Pending                bool           `json:"pending"`
	HandoverID             uint           `json:"handover_id,omitempty"`
	Tasks                  []TaskSnapshot `json:"tasks"`
	VoiceNoteURL           string         `json:"voice_note_url,omitempty"`
	VoiceNoteTranscription string         `json:"voice_note_transcription,omitempty"`
	Notes                  string         `json:"notes,omitempty"`
	Stats                  Stats          `json:"stats"`
}

// SaveShiftHandover freezes the closing shift's visible tasks into a new
// unclaimed archive row. Callers run it inside the EndShift transaction so
// a completed shift without a snapshot cannot exist.
func SaveShiftHandover(db *gorm.DB, fromShiftID uint, tasks []Models.UnifiedTask, voiceNoteURL, transcription, notes string) (*Models.ShiftHandover, error) {
	snap := BuildSnapshot(tasks)
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding handover snapshot: %w", err)
	}

	entry := Models.ShiftHandover{
		FromShiftID:            fromShiftID,
		HandoverData:           data,
		AdditionalNotes:        notes,
		VoiceNoteURL:           voiceNoteURL,
		VoiceNoteTranscription: transcription,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("saving handover archive: %w", err)
	}
	return &entry, nil
}

// latestUnclaimed returns the most recent archive entry with no claiming
// shift, or nil when none exists.
func latestUnclaimed(db *gorm.DB) (*Models.ShiftHandover, error) {
	var entry Models.ShiftHandover
	err := db.Where("to_shift_id IS NULL").Order("created_at DESC, id DESC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetShiftHandover reads the most recent unclaimed archive entry and runs
// the rule table against the incoming user. It performs no writes: calling
// it twice before the claim yields the same result.
//
// Store errors and malformed rows degrade to "no pending handover" so a
// broken archive never blocks starting a shift.
func GetShiftHandover(db *gorm.DB, newUserID uint) Result {
	entry, err := latestUnclaimed(db)
	if err != nil {
		log.Printf("Error reading handover archive, starting shift without handover: %v", err)
		return Result{Tasks: []TaskSnapshot{}}
	}
	if entry == nil {
		return Result{Tasks: []TaskSnapshot{}}
	}

	var snap Snapshot
	if err := json.Unmarshal(entry.HandoverData, &snap); err != nil {
		log.Printf("Malformed handover snapshot in entry %d, ignoring: %v", entry.ID, err)
		return Result{Tasks: []TaskSnapshot{}}
	}

	result := Result{
		Pending:                true,
		HandoverID:             entry.ID,
		Tasks:                  []TaskSnapshot{},
		VoiceNoteURL:           entry.VoiceNoteURL,
		VoiceNoteTranscription: entry.VoiceNoteTranscription,
		Notes:                  entry.AdditionalNotes,
	}
	result.Stats.TotalArchived = len(snap.AllTasks)
	for _, t := range snap.AllTasks {
		if Classify(t, newUserID).Transferred() {
			result.Tasks = append(result.Tasks, t)
		}
	}
	result.Stats.Transferred = len(result.Tasks)
	result.Stats.Archived = result.Stats.TotalArchived - result.Stats.Transferred
	return result
}

// CompleteHandover claims an archive entry for the shift that accepted it.
// The claim is conditional on the entry still being unclaimed; the loser of
// a concurrent shift-start race gets ErrAlreadyClaimed instead of silently
// "succeeding".
func CompleteHandover(db *gorm.DB, handoverID, newShiftID uint) error {
	res := db.Model(&Models.ShiftHandover{}).
		Where("id = ? AND to_shift_id IS NULL", handoverID).
		Update("to_shift_id", newShiftID)
	if res.Error != nil {
		return fmt.Errorf("claiming handover %d: %w", handoverID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}
