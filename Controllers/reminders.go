package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Models"
	"Lobby/middleware"
)

// ReminderController handles reminder CRUD and per-user acknowledgments.
type ReminderController struct {
	DB *gorm.DB
}

// NewReminderController creates a new ReminderController
func NewReminderController(db *gorm.DB) *ReminderController {
	return &ReminderController{DB: db}
}

type reminderInput struct {
	Title     string    `json:"title" validate:"required"`
	Message   string    `json:"message"`
	DueAt     time.Time `json:"due_at" validate:"required"`
	TargetID  *uint     `json:"target_id"`
	Recurring string    `json:"recurring" validate:"omitempty,oneof=hourly daily"`
}

// CreateReminder registers a new reminder.
func (rc *ReminderController) CreateReminder(c *fiber.Ctx) error {
	var input reminderInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErrors(err),
		})
	}

	user, _ := middleware.CurrentUser(c)
	reminder := Models.Reminder{
		Title:     input.Title,
		Message:   input.Message,
		DueAt:     input.DueAt,
		CreatedBy: user.ID,
		TargetID:  input.TargetID,
		Recurring: input.Recurring,
	}
	if err := rc.DB.Create(&reminder).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create reminder"})
	}
	return c.Status(fiber.StatusCreated).JSON(reminder)
}

// GetDueReminders lists the caller's due, unacknowledged reminders and
// stamps their last-seen time. The receipt row replaces the old in-memory
// shown-set so a page reload shows the same pending list.
func (rc *ReminderController) GetDueReminders(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	now := time.Now()

	var due []Models.Reminder
	err := rc.DB.Where("due_at <= ? AND (target_id IS NULL OR target_id = ?)", now, user.ID).
		Order("due_at ASC").Find(&due).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load reminders"})
	}

	var pending []Models.Reminder
	for _, reminder := range due {
		var receipt Models.ReminderReceipt
		err := rc.DB.Where(Models.ReminderReceipt{ReminderID: reminder.ID, UserID: user.ID}).
			FirstOrCreate(&receipt).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load reminder receipts"})
		}
		if receipt.AcknowledgedAt != nil {
			continue
		}
		receipt.LastSeenAt = &now
		rc.DB.Save(&receipt)
		pending = append(pending, reminder)
	}
	if pending == nil {
		pending = []Models.Reminder{}
	}
	return c.JSON(pending)
}

// AcknowledgeReminder records that the caller has handled a reminder.
func (rc *ReminderController) AcknowledgeReminder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reminder ID"})
	}
	user, _ := middleware.CurrentUser(c)

	var receipt Models.ReminderReceipt
	err = rc.DB.Where(Models.ReminderReceipt{ReminderID: uint(id), UserID: user.ID}).
		FirstOrCreate(&receipt).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to acknowledge reminder"})
	}

	now := time.Now()
	receipt.AcknowledgedAt = &now
	if receipt.LastSeenAt == nil {
		receipt.LastSeenAt = &now
	}
	if err := rc.DB.Save(&receipt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to acknowledge reminder"})
	}
	return c.JSON(receipt)
}

// DeleteReminder removes a reminder and its receipts.
func (rc *ReminderController) DeleteReminder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reminder ID"})
	}

	var reminder Models.Reminder
	if err := rc.DB.First(&reminder, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reminder not found"})
	}
	rc.DB.Where("reminder_id = ?", id).Delete(&Models.ReminderReceipt{})
	rc.DB.Delete(&reminder)

	return c.JSON(fiber.Map{"message": "Reminder deleted successfully"})
}
