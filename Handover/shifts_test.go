package Handover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lobby/Models"
)

func TestStartShiftForceCompletesPrevious(t *testing.T) {
	db := openTestDB(t)

	first, err := StartShift(db, 7)
	require.NoError(t, err)
	second, err := StartShift(db, 7)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// Exactly one active shift for the user, and it is the newest one.
	var active []Models.Shift
	require.NoError(t, db.Where("user_id = ? AND status = ?", 7, Models.ShiftActive).Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	var reloaded Models.Shift
	require.NoError(t, db.First(&reloaded, first.ID).Error)
	assert.Equal(t, Models.ShiftCompleted, reloaded.Status)
	assert.NotNil(t, reloaded.EndTime)
}

func TestStartShiftDoesNotTouchOtherUsers(t *testing.T) {
	db := openTestDB(t)

	other, err := StartShift(db, 8)
	require.NoError(t, err)
	_, err = StartShift(db, 7)
	require.NoError(t, err)

	var reloaded Models.Shift
	require.NoError(t, db.First(&reloaded, other.ID).Error)
	assert.Equal(t, Models.ShiftActive, reloaded.Status)
}

func TestEndShiftWritesArchiveAtomically(t *testing.T) {
	db := openTestDB(t)

	createTask(t, db, Models.CategoryIncident, Models.TaskCore{
		Title: "Elevator stuck", Status: Models.StatusPending, CreatedBy: 7, Position: 1024,
	})
	createTask(t, db, Models.CategoryFollowUp, Models.TaskCore{
		Title: "Confirm late checkout", Status: Models.StatusInProgress, CreatedBy: 7, Position: 1024,
	})

	shift, err := StartShift(db, 7)
	require.NoError(t, err)

	ended, entry, err := EndShift(db, shift.ID, "quiet night", "note.ogg", "transcript")
	require.NoError(t, err)
	assert.Equal(t, Models.ShiftCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, "quiet night", ended.HandoverNotes)

	// The archive entry exists, is unclaimed, and froze both tasks.
	require.NotNil(t, entry)
	assert.Equal(t, shift.ID, entry.FromShiftID)
	assert.Nil(t, entry.ToShiftID)

	result := GetShiftHandover(db, 7)
	require.True(t, result.Pending)
	assert.Equal(t, 2, result.Stats.TotalArchived)
	assert.Equal(t, "note.ogg", result.VoiceNoteURL)
}

func TestEndShiftRejectsNonActive(t *testing.T) {
	db := openTestDB(t)

	shift, err := StartShift(db, 7)
	require.NoError(t, err)
	_, _, err = EndShift(db, shift.ID, "", "", "")
	require.NoError(t, err)

	_, _, err = EndShift(db, shift.ID, "", "", "")
	assert.ErrorIs(t, err, ErrShiftNotActive)

	_, _, err = EndShift(db, 9999, "", "", "")
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestGetActiveShift(t *testing.T) {
	db := openTestDB(t)

	shift, err := GetActiveShift(db, 7)
	require.NoError(t, err)
	assert.Nil(t, shift)

	started, err := StartShift(db, 7)
	require.NoError(t, err)

	shift, err = GetActiveShift(db, 7)
	require.NoError(t, err)
	require.NotNil(t, shift)
	assert.Equal(t, started.ID, shift.ID)
}

func TestFindOrphanedShifts(t *testing.T) {
	db := openTestDB(t)

	// A shift completed through EndShift has an archive entry.
	normal, err := StartShift(db, 7)
	require.NoError(t, err)
	_, _, err = EndShift(db, normal.ID, "", "", "")
	require.NoError(t, err)

	// A force-completed shift (hit by a later StartShift) has none.
	stale, err := StartShift(db, 8)
	require.NoError(t, err)
	_, err = StartShift(db, 8)
	require.NoError(t, err)

	orphans, err := FindOrphanedShifts(db)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, stale.ID, orphans[0].ID)
}
