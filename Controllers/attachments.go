package Controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lobby/Models"
	"Lobby/middleware"
)

// AttachmentController handles photo uploads on tasks.
type AttachmentController struct {
	DB *gorm.DB
}

// NewAttachmentController creates a new AttachmentController
func NewAttachmentController(db *gorm.DB) *AttachmentController {
	return &AttachmentController{DB: db}
}

const photoDir = "TaskPhotos"
const thumbWidth = 320

// UploadAttachment stores a photo for a task and writes a resized
// thumbnail next to it.
func (ac *AttachmentController) UploadAttachment(c *fiber.Ctx) error {
	category := c.Params("category")
	if _, ok := Models.TaskTables[category]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown task category"})
	}
	taskID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing photo file"})
	}

	if err := os.MkdirAll(photoDir, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store photo"})
	}

	name := fmt.Sprintf("%s_%d_%d%s", category, taskID, time.Now().UnixNano(), filepath.Ext(file.Filename))
	fullPath := filepath.Join(photoDir, name)
	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store photo"})
	}

	thumbPath := ""
	if img, err := imaging.Open(fullPath); err == nil {
		thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
		thumbPath = filepath.Join(photoDir, "thumb_"+name)
		if err := imaging.Save(thumb, thumbPath); err != nil {
			thumbPath = ""
		}
	}

	user, _ := middleware.CurrentUser(c)
	attachment := Models.TaskAttachment{
		TaskCategory: category,
		TaskID:       uint(taskID),
		FileName:     file.Filename,
		FilePath:     fullPath,
		ThumbPath:    thumbPath,
		UploadedBy:   user.ID,
	}
	if err := ac.DB.Create(&attachment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save attachment"})
	}

	return c.Status(fiber.StatusCreated).JSON(attachment)
}

// GetAttachments lists a task's photos.
func (ac *AttachmentController) GetAttachments(c *fiber.Ctx) error {
	category := c.Params("category")
	taskID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var attachments []Models.TaskAttachment
	if err := ac.DB.Where("task_category = ? AND task_id = ?", category, taskID).
		Find(&attachments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attachments"})
	}
	return c.JSON(attachments)
}
