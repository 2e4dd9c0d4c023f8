package Handover

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"Lobby/Models"
)

// Review phases for the shift-start flow. The incoming user listens to the
// predecessor's voice note, reviews carried-over cards one at a time, then
// reviews the union of carried-over and live cards before the shift counts
// as started.
const (
	PhaseVoice    = "voice"
	PhaseHandover = "handover"
	PhaseTasks    = "tasks"
	PhaseDone     = "done"
)

var (
	ErrReviewNotFound   = errors.New("review session not found")
	ErrWrongPhase       = errors.New("action not valid in current review phase")
	ErrReviewIncomplete = errors.New("not all cards have been read")
)

// BeginReview opens a review session for a user about to start a shift.
// With no pending handover the voice and handover phases are skipped: the
// shift is created immediately and the session lands in the tasks phase.
// With a pending handover no shift row exists yet; abandoning the session
// leaves the archive unclaimed for the next attempt.
func BeginReview(db *gorm.DB, userID uint) (*Models.ShiftReview, Result, error) {
	result := GetShiftHandover(db, userID)

	review := Models.ShiftReview{UserID: userID, Phase: PhaseVoice}
	if result.Pending {
		id := result.HandoverID
		review.HandoverID = &id
	} else {
		shift, err := StartShift(db, userID)
		if err != nil {
			return nil, result, err
		}
		review.ShiftID = &shift.ID
		review.Phase = PhaseTasks
	}

	cards, err := reviewCards(db, userID, result.Tasks)
	if err != nil {
		return nil, result, err
	}
	review.CardKeys = mustEncodeKeys(cards)
	review.AckedTaskKeys = mustEncodeKeys(nil)

	if err := db.Create(&review).Error; err != nil {
		return nil, result, fmt.Errorf("creating review session: %w", err)
	}
	return &review, result, nil
}

// AdvanceReview moves voice → handover ("start reviewing"). When nothing
// transferred there is no handover phase; AcceptHandover goes straight to
// tasks instead.
func AdvanceReview(db *gorm.DB, reviewID uint) (*Models.ShiftReview, error) {
	review, err := loadReview(db, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Phase != PhaseVoice {
		return nil, ErrWrongPhase
	}
	review.Phase = PhaseHandover
	if err := db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// AcceptHandover creates the new shift and claims the archive entry, then
// moves the session to the tasks phase. Valid from the voice or handover
// phase.
//
// If another shift start claimed the entry first, the shift is still
// created (shift start must not be blocked) but the carried-over cards are
// dropped from the session and ErrAlreadyClaimed is returned alongside the
// updated review so the caller can surface the conflict.
func AcceptHandover(db *gorm.DB, reviewID uint) (*Models.ShiftReview, error) {
	review, err := loadReview(db, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Phase != PhaseVoice && review.Phase != PhaseHandover {
		return nil, ErrWrongPhase
	}

	shift, err := StartShift(db, review.UserID)
	if err != nil {
		return nil, err
	}
	review.ShiftID = &shift.ID
	review.Phase = PhaseTasks

	var claimErr error
	if review.HandoverID != nil {
		claimErr = CompleteHandover(db, *review.HandoverID, shift.ID)
		if errors.Is(claimErr, ErrAlreadyClaimed) {
			// Someone else owns the handover now; rebuild the card list
			// from live tasks only.
			review.HandoverID = nil
			cards, cerr := reviewCards(db, review.UserID, nil)
			if cerr != nil {
				return nil, cerr
			}
			review.CardKeys = mustEncodeKeys(cards)
		} else if claimErr != nil {
			return nil, claimErr
		}
	}

	if err := db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, claimErr
}

// AckCard marks one card as read. Returns the updated session and whether
// every card has now been read (the client auto-closes shortly after).
func AckCard(db *gorm.DB, reviewID uint, cardKey string) (*Models.ShiftReview, bool, error) {
	review, err := loadReview(db, reviewID)
	if err != nil {
		return nil, false, err
	}
	if review.Phase != PhaseTasks {
		return nil, false, ErrWrongPhase
	}

	acked := decodeKeys(review.AckedTaskKeys)
	if !containsKey(acked, cardKey) {
		acked = append(acked, cardKey)
		review.AckedTaskKeys = mustEncodeKeys(acked)
		if err := db.Save(review).Error; err != nil {
			return nil, false, err
		}
	}
	return review, allRead(decodeKeys(review.CardKeys), acked), nil
}

// FinishReview closes the session once every card has been read.
func FinishReview(db *gorm.DB, reviewID uint) (*Models.ShiftReview, error) {
	review, err := loadReview(db, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Phase != PhaseTasks {
		return nil, ErrWrongPhase
	}
	if !allRead(decodeKeys(review.CardKeys), decodeKeys(review.AckedTaskKeys)) {
		return nil, ErrReviewIncomplete
	}
	review.Phase = PhaseDone
	if err := db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CancelReview abandons a session before the handover was accepted. The
// archive entry stays unclaimed and the predecessor's voice note stays
// unconsumed, so the next start-shift attempt re-offers both.
func CancelReview(db *gorm.DB, reviewID uint) error {
	review, err := loadReview(db, reviewID)
	if err != nil {
		return err
	}
	if review.Phase == PhaseTasks || review.Phase == PhaseDone {
		return ErrWrongPhase
	}
	return db.Delete(review).Error
}

// reviewCards builds the card list for the tasks phase: the transferred
// snapshots plus the user's own live non-terminal tasks, deduplicated.
func reviewCards(db *gorm.DB, userID uint, transferred []TaskSnapshot) ([]string, error) {
	seen := make(map[string]bool)
	var keys []string
	for _, t := range transferred {
		if !seen[t.Key()] {
			seen[t.Key()] = true
			keys = append(keys, t.Key())
		}
	}

	live, err := Models.CollectAllTasks(db)
	if err != nil {
		return nil, err
	}
	for _, t := range live {
		if Models.IsTerminalStatus(t.Status) {
			continue
		}
		owned := (t.AssignedTo != nil && *t.AssignedTo == userID) || t.CreatedBy == userID
		if !owned {
			continue
		}
		key := fmt.Sprintf("%s:%d", t.Category, t.ID)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func loadReview(db *gorm.DB, reviewID uint) (*Models.ShiftReview, error) {
	var review Models.ShiftReview
	if err := db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func mustEncodeKeys(keys []string) []byte {
	if keys == nil {
		keys = []string{}
	}
	data, _ := json.Marshal(keys)
	return data
}

func decodeKeys(data []byte) []string {
	var keys []string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &keys)
	}
	return keys
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func allRead(cards, acked []string) bool {
	for _, c := range cards {
		if !containsKey(acked, c) {
			return false
		}
	}
	return true
}
