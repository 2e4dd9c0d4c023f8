package Handover

import (
	"encoding/json"
	"fmt"

	"Lobby/Models"
)

// TaskSnapshot is one task frozen into a handover archive entry. FullData
// carries the complete field copy; the incoming shift works from this, not
// from the live row.
type TaskSnapshot struct {
	ID         uint            `json:"id"`
	Category   string          `json:"category"`
	Status     string          `json:"status"`
	Title      string          `json:"title"`
	AssignedTo *uint           `json:"assigned_to"`
	CreatedBy  *uint           `json:"created_by"`
	Priority   string          `json:"priority"`
	FullData   json.RawMessage `json:"full_data"`
}

// Key identifies a snapshot across the five category tables.
func (t TaskSnapshot) Key() string {
	return fmt.Sprintf("%s:%d", t.Category, t.ID)
}

// Snapshot is the archived payload persisted as the handover row's JSON
// column: the visible tasks bucketed by status and by category, plus the
// flat list.
type Snapshot struct {
	ByStatus   map[string][]TaskSnapshot `json:"by_status"`
	ByCategory map[string][]TaskSnapshot `json:"by_category"`
	AllTasks   []TaskSnapshot            `json:"all_tasks"`
}

// BuildSnapshot freezes the closing shift's visible tasks. The input is the
// complete list, unfiltered; exclusion decisions happen at reconciliation
// time, not here.
func BuildSnapshot(tasks []Models.UnifiedTask) Snapshot {
	snap := Snapshot{
		ByStatus:   make(map[string][]TaskSnapshot),
		ByCategory: make(map[string][]TaskSnapshot),
	}
	for _, t := range tasks {
		full, err := json.Marshal(t)
		if err != nil {
			full = nil
		}
		// CreatedBy 0 means the row predates creator tracking; archive it
		// as unset rather than as staff id 0.
		var createdBy *uint
		if t.CreatedBy != 0 {
			v := t.CreatedBy
			createdBy = &v
		}
		ts := TaskSnapshot{
			ID:         t.ID,
			Category:   t.Category,
			Status:     Models.NormalizeStatus(t.Status),
			Title:      t.Title,
			AssignedTo: t.AssignedTo,
			CreatedBy:  createdBy,
			Priority:   Models.NormalizePriority(t.Priority),
			FullData:   full,
		}
		snap.ByStatus[ts.Status] = append(snap.ByStatus[ts.Status], ts)
		snap.ByCategory[ts.Category] = append(snap.ByCategory[ts.Category], ts)
		snap.AllTasks = append(snap.AllTasks, ts)
	}
	return snap
}
