package Handover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Lobby/Models"
)

func TestBeginReviewWithoutHandoverSkipsToTasks(t *testing.T) {
	db := openTestDB(t)

	review, result, err := BeginReview(db, 7)
	require.NoError(t, err)
	assert.False(t, result.Pending)
	assert.Equal(t, PhaseTasks, review.Phase)
	// Shift already created.
	require.NotNil(t, review.ShiftID)

	active, err := GetActiveShift(db, 7)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, *review.ShiftID, active.ID)
}

func TestBeginReviewWithPendingHandoverStartsAtVoice(t *testing.T) {
	db := openTestDB(t)
	seedHandover(t, db, 7)

	review, result, err := BeginReview(db, 7)
	require.NoError(t, err)
	assert.True(t, result.Pending)
	assert.Equal(t, PhaseVoice, review.Phase)
	// No shift yet: abandoning here must leave everything untouched.
	assert.Nil(t, review.ShiftID)
	require.NotNil(t, review.HandoverID)
}

func TestFullReviewFlow(t *testing.T) {
	db := openTestDB(t)
	seedHandover(t, db, 7)

	review, result, err := BeginReview(db, 7)
	require.NoError(t, err)
	require.Equal(t, 1, result.Stats.Transferred)

	review, err = AdvanceReview(db, review.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseHandover, review.Phase)

	review, err = AcceptHandover(db, review.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseTasks, review.Phase)
	require.NotNil(t, review.ShiftID)

	// The archive is claimed by the new shift.
	var entry Models.ShiftHandover
	require.NoError(t, db.First(&entry, *review.HandoverID).Error)
	require.NotNil(t, entry.ToShiftID)
	assert.Equal(t, *review.ShiftID, *entry.ToShiftID)

	// Ack every card, then finish.
	cards := decodeKeys(review.CardKeys)
	require.NotEmpty(t, cards)
	var allRead bool
	for _, key := range cards {
		review, allRead, err = AckCard(db, review.ID, key)
		require.NoError(t, err)
	}
	assert.True(t, allRead)

	review, err = FinishReview(db, review.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, review.Phase)
}

func TestFinishRequiresAllCardsRead(t *testing.T) {
	db := openTestDB(t)
	seedHandover(t, db, 7)

	review, _, err := BeginReview(db, 7)
	require.NoError(t, err)
	review, err = AcceptHandover(db, review.ID)
	require.NoError(t, err)

	_, err = FinishReview(db, review.ID)
	assert.ErrorIs(t, err, ErrReviewIncomplete)
}

func TestCancelLeavesArchiveUnclaimed(t *testing.T) {
	db := openTestDB(t)
	entryID := seedHandover(t, db, 7)

	review, _, err := BeginReview(db, 7)
	require.NoError(t, err)
	require.NoError(t, CancelReview(db, review.ID))

	// The archive entry is still unclaimed and re-offered.
	var entry Models.ShiftHandover
	require.NoError(t, db.First(&entry, entryID).Error)
	assert.Nil(t, entry.ToShiftID)

	again := GetShiftHandover(db, 7)
	assert.True(t, again.Pending)
	assert.Equal(t, entryID, again.HandoverID)
}

func TestCancelRefusedAfterAccept(t *testing.T) {
	db := openTestDB(t)
	seedHandover(t, db, 7)

	review, _, err := BeginReview(db, 7)
	require.NoError(t, err)
	review, err = AcceptHandover(db, review.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, CancelReview(db, review.ID), ErrWrongPhase)
}

func TestAcceptAfterLostClaimKeepsShift(t *testing.T) {
	db := openTestDB(t)
	entryID := seedHandover(t, db, 7)

	review, _, err := BeginReview(db, 7)
	require.NoError(t, err)

	// Another shift start claims the entry first.
	require.NoError(t, CompleteHandover(db, entryID, 999))

	review, err = AcceptHandover(db, review.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	require.NotNil(t, review)

	// The loser still got a shift, just without the carried-over cards.
	assert.Equal(t, PhaseTasks, review.Phase)
	require.NotNil(t, review.ShiftID)
	assert.Nil(t, review.HandoverID)
}

// seedHandover closes a predecessor's shift holding one pending incident
// and returns the resulting archive entry id.
func seedHandover(t *testing.T, db *gorm.DB, _ uint) uint {
	t.Helper()
	const predecessor uint = 99

	createTask(t, db, Models.CategoryIncident, Models.TaskCore{
		Title: "Spill in lobby", Status: Models.StatusPending, CreatedBy: predecessor, Position: 1024,
	})

	shift, err := StartShift(db, predecessor)
	require.NoError(t, err)
	_, entry, err := EndShift(db, shift.ID, "handover notes", "", "")
	require.NoError(t, err)
	return entry.ID
}
