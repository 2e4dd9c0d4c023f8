package Models

import (
	"gorm.io/gorm"
)

// TaskAttachment is an uploaded photo linked to a task (damage photos on
// incidents, receipts on client requests). The file itself lives under
// TaskPhotos/ and is served statically; ThumbPath is the resized copy.
type TaskAttachment struct {
	gorm.Model
	TaskCategory string `json:"task_category" gorm:"type:varchar(30);not null;index:idx_attachment_task"`
	TaskID       uint   `json:"task_id" gorm:"not null;index:idx_attachment_task"`
	FileName     string `json:"file_name" gorm:"not null"`
	FilePath     string `json:"file_path" gorm:"not null"`
	ThumbPath    string `json:"thumb_path"`
	UploadedBy   uint   `json:"uploaded_by"`
}
