package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Board"
	"Lobby/Webhooks"
	"Lobby/middleware"
)

// BoardController serves the kanban board and card moves.
type BoardController struct {
	DB *gorm.DB
}

// NewBoardController creates a new BoardController
func NewBoardController(db *gorm.DB) *BoardController {
	return &BoardController{DB: db}
}

// GetBoard returns the status columns with their ordered cards.
func (bc *BoardController) GetBoard(c *fiber.Ctx) error {
	columns, err := Board.Load(bc.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load board"})
	}
	return c.JSON(columns)
}

type moveRequest struct {
	Status string `json:"status" validate:"required"`
	Index  int    `json:"index"`
}

// MoveTask drops a card at a new position, possibly in a new column.
func (bc *BoardController) MoveTask(c *fiber.Ctx) error {
	category := c.Params("category")
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErrors(err),
		})
	}

	err = Board.Move(bc.DB, category, uint(id), req.Status, req.Index)
	switch {
	case errors.Is(err, Board.ErrUnknownCategory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	case errors.Is(err, Board.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to move task"})
	}

	user, _ := middleware.CurrentUser(c)
	Webhooks.Enqueue(bc.DB, "task_moved", user.ID, fiber.Map{
		"category": category,
		"id":       id,
		"status":   req.Status,
		"index":    req.Index,
	})

	return c.JSON(fiber.Map{"message": "Task moved"})
}
