package Handover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lobby/Models"
)

func TestGetShiftHandoverNoPending(t *testing.T) {
	db := openTestDB(t)

	result := GetShiftHandover(db, 7)
	assert.False(t, result.Pending)
	assert.Empty(t, result.Tasks)
	assert.Zero(t, result.Stats.TotalArchived)
}

func TestReconcileEndToEnd(t *testing.T) {
	// Archive: a pending incident assigned to X, a pending follow-up
	// assigned to Y but created by Z, and a completed client request.
	// Reconciling for Z returns exactly the incident and the follow-up.
	db := openTestDB(t)
	const x, y, z uint = 1, 2, 3

	tasks := []Models.UnifiedTask{
		{ID: 1, Category: Models.CategoryIncident, Title: "Leak in 204",
			Status: "pending", AssignedTo: uintPtr(x), CreatedBy: x},
		{ID: 2, Category: Models.CategoryFollowUp, Title: "Call back Mr. Ade",
			Status: "pending", AssignedTo: uintPtr(y), CreatedBy: z},
		{ID: 3, Category: Models.CategoryClientRequest, Title: "Extra towels",
			Status: "completed", AssignedTo: uintPtr(y), CreatedBy: y},
	}
	_, err := SaveShiftHandover(db, 10, tasks, "", "", "see notes")
	require.NoError(t, err)

	result := GetShiftHandover(db, z)
	require.True(t, result.Pending)
	require.Len(t, result.Tasks, 2)

	keys := []string{result.Tasks[0].Key(), result.Tasks[1].Key()}
	assert.Contains(t, keys, "incident:1")
	assert.Contains(t, keys, "follow_up:2")
	assert.Equal(t, Stats{TotalArchived: 3, Transferred: 2, Archived: 1}, result.Stats)
	assert.Equal(t, "see notes", result.Notes)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	tasks := []Models.UnifiedTask{
		{ID: 1, Category: Models.CategoryIncident, Title: "Night audit discrepancy",
			Status: "in_progress", CreatedBy: 4},
		{ID: 2, Category: Models.CategoryInternalTask, Title: "Restock key cards",
			Status: "pending", CreatedBy: 9},
	}
	_, err := SaveShiftHandover(db, 11, tasks, "voice.ogg", "transcript", "")
	require.NoError(t, err)

	first := GetShiftHandover(db, 4)
	second := GetShiftHandover(db, 4)
	assert.Equal(t, first, second)
	assert.Equal(t, "voice.ogg", first.VoiceNoteURL)
}

func TestClaimIsMonotonic(t *testing.T) {
	db := openTestDB(t)
	tasks := []Models.UnifiedTask{
		{ID: 1, Category: Models.CategoryIncident, Title: "Broken lock", Status: "pending", CreatedBy: 1},
	}
	entry, err := SaveShiftHandover(db, 12, tasks, "", "", "")
	require.NoError(t, err)

	require.NoError(t, CompleteHandover(db, entry.ID, 20))

	// A claimed entry never comes back as pending.
	result := GetShiftHandover(db, 1)
	assert.False(t, result.Pending)

	var reloaded Models.ShiftHandover
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	require.NotNil(t, reloaded.ToShiftID)
	assert.Equal(t, uint(20), *reloaded.ToShiftID)
}

func TestClaimRaceSurfacesConflict(t *testing.T) {
	db := openTestDB(t)
	entry, err := SaveShiftHandover(db, 13, nil, "", "", "")
	require.NoError(t, err)

	require.NoError(t, CompleteHandover(db, entry.ID, 30))
	err = CompleteHandover(db, entry.ID, 31)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// The winner's claim stands.
	var reloaded Models.ShiftHandover
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, uint(30), *reloaded.ToShiftID)
}

func TestMostRecentUnclaimedWins(t *testing.T) {
	db := openTestDB(t)

	older, err := SaveShiftHandover(db, 14, []Models.UnifiedTask{
		{ID: 1, Category: Models.CategoryIncident, Title: "old", Status: "pending", CreatedBy: 1},
	}, "", "", "old entry")
	require.NoError(t, err)
	newer, err := SaveShiftHandover(db, 15, []Models.UnifiedTask{
		{ID: 2, Category: Models.CategoryIncident, Title: "new", Status: "pending", CreatedBy: 1},
	}, "", "", "new entry")
	require.NoError(t, err)
	// Force distinct creation order even with equal timestamps.
	require.Greater(t, newer.ID, older.ID)

	result := GetShiftHandover(db, 1)
	require.True(t, result.Pending)
	assert.Equal(t, newer.ID, result.HandoverID)
	assert.Equal(t, "new entry", result.Notes)
}

func TestMalformedSnapshotDegradesToEmpty(t *testing.T) {
	// A corrupt archive row must not block starting a shift.
	db := openTestDB(t)
	entry := Models.ShiftHandover{FromShiftID: 16, HandoverData: []byte("{not json")}
	require.NoError(t, db.Create(&entry).Error)

	result := GetShiftHandover(db, 1)
	assert.False(t, result.Pending)
	assert.Empty(t, result.Tasks)
}

func TestSnapshotBucketsAndFreezes(t *testing.T) {
	tasks := []Models.UnifiedTask{
		{ID: 1, Category: Models.CategoryIncident, Title: "a", Status: "pending", CreatedBy: 1},
		{ID: 2, Category: Models.CategoryIncident, Title: "b", Status: "resolved", CreatedBy: 1},
		{ID: 3, Category: Models.CategoryFollowUp, Title: "c", Status: "pending", CreatedBy: 0},
	}
	snap := BuildSnapshot(tasks)

	assert.Len(t, snap.AllTasks, 3)
	assert.Len(t, snap.ByCategory[Models.CategoryIncident], 2)
	assert.Len(t, snap.ByStatus[Models.StatusPending], 2)
	// resolved normalizes to completed at archive time
	assert.Len(t, snap.ByStatus[Models.StatusCompleted], 1)
	// creator id 0 archives as unset
	assert.Nil(t, snap.ByCategory[Models.CategoryFollowUp][0].CreatedBy)
	// full field copy rides along
	assert.NotEmpty(t, snap.AllTasks[0].FullData)
}
