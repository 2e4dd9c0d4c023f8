package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Board"
	"Lobby/Models"
	"Lobby/Notifications"
	"Lobby/Slack"
	"Lobby/Webhooks"
	"Lobby/middleware"
)

// TaskController handles task CRUD across the five category tables.
type TaskController struct {
	DB *gorm.DB
}

// NewTaskController creates a new TaskController
func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db}
}

// TaskInput is the create/update payload. AssignedTo tolerates the legacy
// list-of-one and string encodings.
type TaskInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	AssignedTo  Models.StaffRef `json:"assigned_to"`
	Location    string          `json:"location"`
	RoomNumber  string          `json:"room_number"`
	GuestName   string          `json:"guest_name"`
	Recipient   string          `json:"recipient"`
	Severity    string          `json:"severity"`
	Trainer     string          `json:"trainer"`
}

// GetTasks returns every live task across all categories, board-ordered.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	tasks, err := Models.CollectAllTasks(tc.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tasks"})
	}
	return c.JSON(tasks)
}

// GetTasksByCategory lists one category's tasks.
func (tc *TaskController) GetTasksByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	table, ok := Models.TaskTables[category]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	}

	var tasks []Models.UnifiedTask
	if err := tc.DB.Table(table).Where("deleted_at IS NULL").
		Order("position ASC").Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tasks"})
	}
	for i := range tasks {
		tasks[i].Category = category
	}
	return c.JSON(tasks)
}

// GetTask returns a single task.
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	category := c.Params("category")
	table, ok := Models.TaskTables[category]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var task Models.UnifiedTask
	if err := tc.DB.Table(table).Where("id = ? AND deleted_at IS NULL", id).First(&task).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	task.Category = category
	return c.JSON(task)
}

// CreateTask inserts a task into its category table, appends it to the end
// of its status column, and fans out the notifications.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	category := c.Params("category")
	if _, ok := Models.TaskTables[category]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	}

	var input TaskInput
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

	core := Models.TaskCore{
		Title:       input.Title,
		Description: input.Description,
		Status:      Models.NormalizeStatus(input.Status),
		Priority:    Models.NormalizePriority(input.Priority),
		AssignedTo:  input.AssignedTo.ID,
		CreatedBy:   user.ID,
		Location:    input.Location,
		RoomNumber:  input.RoomNumber,
	}
	position, err := Board.NextPosition(tc.DB, core.Status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to place task on board"})
	}
	core.Position = position

	created, err := tc.insert(category, core, input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}

	Webhooks.Enqueue(tc.DB, "task_created", user.ID, created)
	if category == Models.CategoryIncident && core.Priority == Models.PriorityUrgent {
		if incident, ok := created.(*Models.Incident); ok {
			Slack.NotifyUrgentIncident(incident, user.Name)
			Notifications.PushUrgentTask("Urgent incident", incident.Title)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (tc *TaskController) insert(category string, core Models.TaskCore, input TaskInput) (interface{}, error) {
	switch category {
	case Models.CategoryIncident:
		task := Models.Incident{TaskCore: core, Severity: input.Severity}
		return &task, tc.DB.Create(&task).Error
	case Models.CategoryClientRequest:
		task := Models.ClientRequest{TaskCore: core, GuestName: input.GuestName}
		return &task, tc.DB.Create(&task).Error
	case Models.CategoryFollowUp:
		task := Models.FollowUp{TaskCore: core, Recipient: input.Recipient}
		return &task, tc.DB.Create(&task).Error
	case Models.CategoryInternalTask:
		task := Models.InternalTask{TaskCore: core}
		return &task, tc.DB.Create(&task).Error
	case Models.CategoryTraining:
		task := Models.TrainingTask{TaskCore: core, Trainer: input.Trainer}
		return &task, tc.DB.Create(&task).Error
	}
	return nil, Board.ErrUnknownCategory
}

// UpdateTask rewrites a task's mutable fields. Category and created_by are
// fixed at creation and never change.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	category := c.Params("category")
	table, ok := Models.TaskTables[category]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var input TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErrors(err),
		})
	}

	var existing Models.UnifiedTask
	if err := tc.DB.Table(table).Where("id = ? AND deleted_at IS NULL", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load task"})
	}

	updates := map[string]interface{}{
		"title":       input.Title,
		"description": input.Description,
		"status":      Models.NormalizeStatus(input.Status),
		"priority":    Models.NormalizePriority(input.Priority),
		"assigned_to": input.AssignedTo.ID,
		"location":    input.Location,
		"room_number": input.RoomNumber,
	}
	switch category {
	case Models.CategoryIncident:
		updates["severity"] = input.Severity
	case Models.CategoryClientRequest:
		updates["guest_name"] = input.GuestName
	case Models.CategoryFollowUp:
		updates["recipient"] = input.Recipient
	case Models.CategoryTraining:
		updates["trainer"] = input.Trainer
	}

	if err := tc.DB.Table(table).Where("id = ?", id).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}

	user, _ := middleware.CurrentUser(c)
	var updated Models.UnifiedTask
	tc.DB.Table(table).Where("id = ?", id).First(&updated)
	updated.Category = category
	Webhooks.Enqueue(tc.DB, "task_updated", user.ID, updated)

	return c.JSON(updated)
}

// DeleteTask soft deletes a task.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	category := c.Params("category")
	table, ok := Models.TaskTables[category]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	res := tc.DB.Table(table).Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", tc.DB.NowFunc())
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete task"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	user, _ := middleware.CurrentUser(c)
	Webhooks.Enqueue(tc.DB, "task_deleted", user.ID, fiber.Map{"category": category, "id": id})

	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}
