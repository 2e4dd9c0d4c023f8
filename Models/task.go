package Models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// Task categories. Each category is stored in its own table; the board and
// handover paths read them back through UnifiedTask.
const (
	CategoryIncident      = "incident"
	CategoryClientRequest = "client_request"
	CategoryFollowUp      = "follow_up"
	CategoryInternalTask  = "internal_task"
	CategoryTraining      = "training"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// TaskCore holds the fields shared by every task category.
type TaskCore struct {
	Title       string `json:"title" gorm:"not null" validate:"required"`
	Description string `json:"description" gorm:"type:text"`
	Status      string `json:"status" gorm:"type:varchar(20);default:pending;index"`
	Priority    string `json:"priority" gorm:"type:varchar(20);default:normal"`
	AssignedTo  *uint  `json:"assigned_to" gorm:"index"`
	CreatedBy   uint   `json:"created_by" gorm:"not null;index"`
	Location    string `json:"location,omitempty"`
	RoomNumber  string `json:"room_number,omitempty" gorm:"type:varchar(20)"`
	Position    int    `json:"position" gorm:"not null;default:0;index"`
}

type Incident struct {
	gorm.Model
	TaskCore
	Severity string `json:"severity,omitempty" gorm:"type:varchar(20)"`
}

type ClientRequest struct {
	gorm.Model
	TaskCore
	GuestName string `json:"guest_name,omitempty"`
}

type FollowUp struct {
	gorm.Model
	TaskCore
	Recipient string `json:"recipient,omitempty"`
}

type InternalTask struct {
	gorm.Model
	TaskCore
}

type TrainingTask struct {
	gorm.Model
	TaskCore
	Trainer string `json:"trainer,omitempty"`
}

func (Incident) TableName() string      { return "incidents" }
func (ClientRequest) TableName() string { return "client_requests" }
func (FollowUp) TableName() string      { return "follow_ups" }
func (InternalTask) TableName() string  { return "internal_tasks" }
func (TrainingTask) TableName() string  { return "training_tasks" }

// TaskTables maps each category to its backing table.
var TaskTables = map[string]string{
	CategoryIncident:      "incidents",
	CategoryClientRequest: "client_requests",
	CategoryFollowUp:      "follow_ups",
	CategoryInternalTask:  "internal_tasks",
	CategoryTraining:      "training_tasks",
}

// TaskCategories in display order.
var TaskCategories = []string{
	CategoryIncident,
	CategoryClientRequest,
	CategoryFollowUp,
	CategoryInternalTask,
	CategoryTraining,
}

// NormalizeStatus collapses the display aliases some clients still send
// (resolved/verified) onto the stored status set.
func NormalizeStatus(status string) string {
	switch status {
	case "resolved", "verified":
		return StatusCompleted
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return status
	case "":
		return StatusPending
	}
	return status
}

// NormalizePriority collapses legacy low/medium/high values to the two
// priorities the board actually renders.
func NormalizePriority(priority string) string {
	switch priority {
	case "low", "medium", "":
		return PriorityNormal
	case "high":
		return PriorityUrgent
	case PriorityNormal, PriorityUrgent:
		return priority
	}
	return PriorityNormal
}

// IsTerminalStatus reports whether a task has left the actionable set for
// good. Terminal tasks never come back through a shift handover.
func IsTerminalStatus(status string) bool {
	s := NormalizeStatus(status)
	return s == StatusCompleted || s == StatusCancelled
}

// StaffRef tolerates the three shapes older clients send for assigned_to:
// a number, a numeric string, or a list with a single entry.
type StaffRef struct {
	ID *uint
}

func (r *StaffRef) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		r.ID = nil
		return nil
	}
	var n uint
	if err := json.Unmarshal(data, &n); err == nil {
		r.ID = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			r.ID = nil
			return nil
		}
		parsed, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid staff reference %q", s)
		}
		v := uint(parsed)
		r.ID = &v
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			r.ID = nil
			return nil
		}
		var inner StaffRef
		if err := inner.UnmarshalJSON(list[0]); err != nil {
			return err
		}
		r.ID = inner.ID
		return nil
	}
	return fmt.Errorf("invalid staff reference: %s", string(data))
}

func (r StaffRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// UnifiedTask is the cross-category read model used by the board, the
// handover snapshot and the exports. Column names line up with TaskCore so
// it can be scanned straight out of any task table.
type UnifiedTask struct {
	ID          uint   `json:"id"`
	Category    string `json:"category" gorm:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssignedTo  *uint  `json:"assigned_to"`
	CreatedBy   uint   `json:"created_by"`
	Location    string `json:"location,omitempty"`
	RoomNumber  string `json:"room_number,omitempty"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CollectAllTasks reads every live task across the five category tables.
// Used by the board read path and by the handover snapshot at shift close.
func CollectAllTasks(db *gorm.DB) ([]UnifiedTask, error) {
	var all []UnifiedTask
	for _, category := range TaskCategories {
		var batch []UnifiedTask
		if err := db.Table(TaskTables[category]).
			Where("deleted_at IS NULL").
			Order("position ASC").
			Find(&batch).Error; err != nil {
			return nil, fmt.Errorf("collecting %s tasks: %w", category, err)
		}
		for i := range batch {
			batch[i].Category = category
		}
		all = append(all, batch...)
	}
	return all, nil
}
