package Board

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"Lobby/Models"
)

// Position gap between neighbouring cards. Inserting between two cards
// takes the midpoint; when the midpoint collides the whole column is
// renumbered back onto the step grid.
const PositionStep = 1024

var (
	ErrUnknownCategory = errors.New("unknown task category")
	ErrTaskNotFound    = errors.New("task not found")
)

// Column is one status lane of the kanban board.
type Column struct {
	Status string               `json:"status"`
	Tasks  []Models.UnifiedTask `json:"tasks"`
}

// StatusColumns in board display order.
var StatusColumns = []string{
	Models.StatusPending,
	Models.StatusInProgress,
	Models.StatusCompleted,
	Models.StatusCancelled,
}

// Load reads the full board: every task across the category tables,
// grouped into status columns and ordered by position.
func Load(db *gorm.DB) ([]Column, error) {
	tasks, err := Models.CollectAllTasks(db)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string][]Models.UnifiedTask)
	for _, t := range tasks {
		s := Models.NormalizeStatus(t.Status)
		byStatus[s] = append(byStatus[s], t)
	}

	columns := make([]Column, 0, len(StatusColumns))
	for _, status := range StatusColumns {
		col := byStatus[status]
		sort.SliceStable(col, func(i, j int) bool { return col[i].Position < col[j].Position })
		if col == nil {
			col = []Models.UnifiedTask{}
		}
		columns = append(columns, Column{Status: status, Tasks: col})
	}
	return columns, nil
}

// Move drops a card at newIndex inside the newStatus column. Status change
// and position assignment happen in one transaction; a mid-move failure
// leaves the board untouched instead of half-reordered.
func Move(db *gorm.DB, category string, taskID uint, newStatus string, newIndex int) error {
	table, ok := Models.TaskTables[category]
	if !ok {
		return ErrUnknownCategory
	}
	newStatus = Models.NormalizeStatus(newStatus)

	return db.Transaction(func(tx *gorm.DB) error {
		var moving Models.UnifiedTask
		if err := tx.Table(table).Where("id = ? AND deleted_at IS NULL", taskID).First(&moving).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		moving.Category = category

		column, err := columnTasks(tx, newStatus)
		if err != nil {
			return err
		}
		// Take the moving card out of the column before computing its slot.
		column = withoutTask(column, category, taskID)

		if newIndex < 0 {
			newIndex = 0
		}
		if newIndex > len(column) {
			newIndex = len(column)
		}

		position, ok := slotBetween(column, newIndex)
		if !ok {
			// Gaps exhausted around the insertion point: renumber the
			// destination column onto the step grid, then retry.
			if err := renumber(tx, column); err != nil {
				return err
			}
			column, err = columnTasks(tx, newStatus)
			if err != nil {
				return err
			}
			column = withoutTask(column, category, taskID)
			position, _ = slotBetween(column, newIndex)
		}

		return tx.Table(table).Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"status":   newStatus,
				"position": position,
			}).Error
	})
}

// NextPosition returns the position for a newly created card, appended at
// the end of its status column.
func NextPosition(db *gorm.DB, status string) (int, error) {
	column, err := columnTasks(db, Models.NormalizeStatus(status))
	if err != nil {
		return 0, err
	}
	if len(column) == 0 {
		return PositionStep, nil
	}
	return column[len(column)-1].Position + PositionStep, nil
}

func columnTasks(db *gorm.DB, status string) ([]Models.UnifiedTask, error) {
	all, err := Models.CollectAllTasks(db)
	if err != nil {
		return nil, err
	}
	var col []Models.UnifiedTask
	for _, t := range all {
		if Models.NormalizeStatus(t.Status) == status {
			col = append(col, t)
		}
	}
	sort.SliceStable(col, func(i, j int) bool { return col[i].Position < col[j].Position })
	return col, nil
}

func withoutTask(tasks []Models.UnifiedTask, category string, id uint) []Models.UnifiedTask {
	out := tasks[:0:0]
	for _, t := range tasks {
		if t.Category == category && t.ID == id {
			continue
		}
		out = append(out, t)
	}
	return out
}

// slotBetween finds a free position at the given index of an ordered
// column; ok is false when the neighbouring positions leave no gap.
func slotBetween(column []Models.UnifiedTask, index int) (int, bool) {
	switch {
	case len(column) == 0:
		return PositionStep, true
	case index == 0:
		first := column[0].Position
		if first <= 1 {
			return 0, false
		}
		return first / 2, true
	case index >= len(column):
		return column[len(column)-1].Position + PositionStep, true
	default:
		lo := column[index-1].Position
		hi := column[index].Position
		if hi-lo < 2 {
			return 0, false
		}
		return lo + (hi-lo)/2, true
	}
}

// renumber rewrites an entire column's positions back onto the step grid.
func renumber(tx *gorm.DB, column []Models.UnifiedTask) error {
	for i, t := range column {
		table, ok := Models.TaskTables[t.Category]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, t.Category)
		}
		if err := tx.Table(table).Where("id = ?", t.ID).
			Update("position", (i+1)*PositionStep).Error; err != nil {
			return err
		}
	}
	return nil
}
