package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Handover"
	"Lobby/Models"
	"Lobby/Slack"
	"Lobby/Webhooks"
	"Lobby/middleware"
)

// ShiftController handles shift lifecycle and the start-of-shift review
// flow.
type ShiftController struct {
	DB *gorm.DB
}

// NewShiftController creates a new ShiftController
func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{DB: db}
}

// GetActiveShift returns the caller's active shift, or an empty body when
// they are off shift.
func (sc *ShiftController) GetActiveShift(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	shift, err := Handover.GetActiveShift(sc.DB, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load shift"})
	}
	if shift == nil {
		return c.JSON(fiber.Map{"active": false})
	}
	return c.JSON(fiber.Map{"active": true, "shift": shift})
}

// StartShift opens a shift directly, without the review flow. Kept for the
// mobile client; the dashboard goes through the review endpoints.
func (sc *ShiftController) StartShift(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	shift, err := Handover.StartShift(sc.DB, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start shift"})
	}

	Webhooks.Enqueue(sc.DB, "shift_started", user.ID, shift)
	Slack.NotifyShiftChange("Shift started", shift, user.Name)
	return c.Status(fiber.StatusCreated).JSON(shift)
}

type endShiftRequest struct {
	HandoverNotes          string `json:"handover_notes"`
	VoiceNoteURL           string `json:"voice_note_url"`
	VoiceNoteTranscription string `json:"voice_note_transcription"`
}

// EndShift completes the caller's shift and archives the handover snapshot
// in the same transaction.
func (sc *ShiftController) EndShift(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid shift ID"})
	}
	var req endShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	shift, entry, err := Handover.EndShift(sc.DB, uint(id),
		req.HandoverNotes, req.VoiceNoteURL, req.VoiceNoteTranscription)
	switch {
	case errors.Is(err, Handover.ErrShiftNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Shift not found"})
	case errors.Is(err, Handover.ErrShiftNotActive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Shift is not active"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to end shift"})
	}

	user, _ := middleware.CurrentUser(c)
	Webhooks.Enqueue(sc.DB, "shift_ended", user.ID, shift)
	Slack.NotifyShiftChange("Shift ended", shift, user.Name)

	return c.JSON(fiber.Map{"shift": shift, "handover_id": entry.ID})
}

// GetPendingHandover previews the reconciliation result for the caller
// without claiming anything: what would carry over if they started now.
func (sc *ShiftController) GetPendingHandover(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	return c.JSON(Handover.GetShiftHandover(sc.DB, user.ID))
}

// BeginReview opens the start-of-shift review session.
func (sc *ShiftController) BeginReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	review, result, err := Handover.BeginReview(sc.DB, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to begin review"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review, "handover": result})
}

// AdvanceReview moves the session from the voice phase to card review.
func (sc *ShiftController) AdvanceReview(c *fiber.Ctx) error {
	review, err := sc.reviewAction(c, func(id uint) (*Models.ShiftReview, error) {
		return Handover.AdvanceReview(sc.DB, id)
	})
	if review == nil {
		return err
	}
	return c.JSON(review)
}

// AcceptHandover creates the shift, claims the archive entry and enters
// the tasks phase. A lost claim race keeps the shift but reports the
// conflict.
func (sc *ShiftController) AcceptHandover(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}

	review, err := Handover.AcceptHandover(sc.DB, uint(id))
	if errors.Is(err, Handover.ErrAlreadyClaimed) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"review":  review,
			"message": "Handover was claimed by another shift; continuing without carried-over cards",
		})
	}
	if err != nil {
		return sc.reviewError(c, err)
	}

	user, _ := middleware.CurrentUser(c)
	Webhooks.Enqueue(sc.DB, "shift_started", user.ID, review)
	return c.JSON(review)
}

type ackRequest struct {
	CardKey string `json:"card_key" validate:"required"`
}

// AckCard marks one review card as read.
func (sc *ShiftController) AckCard(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}
	var req ackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErrors(err),
		})
	}

	review, allRead, err := Handover.AckCard(sc.DB, uint(id), req.CardKey)
	if err != nil {
		return sc.reviewError(c, err)
	}
	return c.JSON(fiber.Map{"review": review, "all_read": allRead})
}

// FinishReview closes the session once every card is read.
func (sc *ShiftController) FinishReview(c *fiber.Ctx) error {
	review, err := sc.reviewAction(c, func(id uint) (*Models.ShiftReview, error) {
		return Handover.FinishReview(sc.DB, id)
	})
	if review == nil {
		return err
	}
	return c.JSON(review)
}

// CancelReview abandons the session; the archive entry stays unclaimed.
func (sc *ShiftController) CancelReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}
	if err := Handover.CancelReview(sc.DB, uint(id)); err != nil {
		return sc.reviewError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review cancelled"})
}

func (sc *ShiftController) reviewAction(c *fiber.Ctx, fn func(uint) (*Models.ShiftReview, error)) (*Models.ShiftReview, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}
	review, err := fn(uint(id))
	if err != nil {
		return nil, sc.reviewError(c, err)
	}
	return review, nil
}

func (sc *ShiftController) reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, Handover.ErrReviewNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review session not found"})
	case errors.Is(err, Handover.ErrWrongPhase):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Action not valid in current review phase"})
	case errors.Is(err, Handover.ErrReviewIncomplete):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Not all cards have been read"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Review action failed"})
	}
}
