package Handover

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"Lobby/Models"
)

var (
	ErrShiftNotFound  = errors.New("shift not found")
	ErrShiftNotActive = errors.New("shift is not active")
)

// StartShift opens a new active shift for the user. Any leftover active
// shift for the same user is force-completed first, so at most one active
// shift per user exists at any time.
func StartShift(db *gorm.DB, userID uint) (*Models.Shift, error) {
	var shift Models.Shift
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&Models.Shift{}).
			Where("user_id = ? AND status = ?", userID, Models.ShiftActive).
			Updates(map[string]interface{}{
				"status":   Models.ShiftCompleted,
				"end_time": now,
			}).Error; err != nil {
			return fmt.Errorf("closing stale shifts: %w", err)
		}

		shift = Models.Shift{
			UserID:    userID,
			StartTime: now,
			Status:    Models.ShiftActive,
		}
		return tx.Create(&shift).Error
	})
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// EndShift completes an active shift and writes its handover archive entry
// in the same transaction. A completed shift with no snapshot would lose
// the handover for good, so the two writes are not separable.
func EndShift(db *gorm.DB, shiftID uint, notes, voiceNoteURL, transcription string) (*Models.Shift, *Models.ShiftHandover, error) {
	var shift Models.Shift
	var entry *Models.ShiftHandover

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shift, shiftID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShiftNotFound
			}
			return err
		}
		if shift.Status != Models.ShiftActive {
			return ErrShiftNotActive
		}

		now := time.Now()
		shift.Status = Models.ShiftCompleted
		shift.EndTime = &now
		shift.HandoverNotes = notes
		shift.VoiceNoteURL = voiceNoteURL
		shift.VoiceNoteTranscription = transcription
		if err := tx.Save(&shift).Error; err != nil {
			return fmt.Errorf("completing shift: %w", err)
		}

		// The complete visible task list, unfiltered; reconciliation
		// decides later what the next shift actually sees.
		visible, err := Models.CollectAllTasks(tx)
		if err != nil {
			return err
		}
		entry, err = SaveShiftHandover(tx, shift.ID, visible, voiceNoteURL, transcription, notes)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &shift, entry, nil
}

// GetActiveShift returns the user's single active shift, or nil when they
// are off shift.
func GetActiveShift(db *gorm.DB, userID uint) (*Models.Shift, error) {
	var shift Models.Shift
	err := db.Where("user_id = ? AND status = ?", userID, Models.ShiftActive).
		Order("start_time DESC").First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// FindOrphanedShifts lists completed shifts with no archive entry:
// force-completed stale shifts whose owner never closed them properly, or
// rows from before EndShift became transactional. The repair cron job logs
// them for manual follow-up.
func FindOrphanedShifts(db *gorm.DB) ([]Models.Shift, error) {
	var shifts []Models.Shift
	err := db.Where("status = ? AND id NOT IN (?)",
		Models.ShiftCompleted,
		db.Model(&Models.ShiftHandover{}).Select("from_shift_id"),
	).Find(&shifts).Error
	return shifts, err
}
