package Reports

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Lobby/Handover"
	"Lobby/Models"
)

// HandoverWorkbook renders one archive entry as an xlsx workbook: a
// summary sheet plus one row per archived task with its transfer decision
// for the claiming user (or the would-be decision for userID when the
// entry is unclaimed).
func HandoverWorkbook(db *gorm.DB, handoverID, userID uint) (*bytes.Buffer, error) {
	var entry Models.ShiftHandover
	if err := db.First(&entry, handoverID).Error; err != nil {
		return nil, fmt.Errorf("loading handover %d: %w", handoverID, err)
	}

	var snap Handover.Snapshot
	if err := json.Unmarshal(entry.HandoverData, &snap); err != nil {
		return nil, fmt.Errorf("decoding handover %d snapshot: %w", handoverID, err)
	}

	f := excelize.NewFile()
	sheet := "Handover"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Task", "Category", "Status", "Priority", "Assigned To", "Created By", "Decision"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, task := range snap.AllTasks {
		values := []interface{}{
			task.Title,
			task.Category,
			task.Status,
			task.Priority,
			staffCell(task.AssignedTo),
			staffCell(task.CreatedBy),
			string(Handover.Classify(task, userID)),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	summary := "Summary"
	f.NewSheet(summary)
	f.SetCellValue(summary, "A1", "From shift")
	f.SetCellValue(summary, "B1", entry.FromShiftID)
	f.SetCellValue(summary, "A2", "Claimed by shift")
	if entry.ToShiftID != nil {
		f.SetCellValue(summary, "B2", *entry.ToShiftID)
	} else {
		f.SetCellValue(summary, "B2", "unclaimed")
	}
	f.SetCellValue(summary, "A3", "Tasks archived")
	f.SetCellValue(summary, "B3", len(snap.AllTasks))
	f.SetCellValue(summary, "A4", "Notes")
	f.SetCellValue(summary, "B4", entry.AdditionalNotes)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return &buf, nil
}

// TaskListWorkbook exports the current board as an xlsx file.
func TaskListWorkbook(db *gorm.DB) (*bytes.Buffer, error) {
	tasks, err := Models.CollectAllTasks(db)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Tasks"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Title", "Category", "Status", "Priority", "Assigned To", "Location", "Room", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, task := range tasks {
		values := []interface{}{
			task.Title,
			task.Category,
			Models.NormalizeStatus(task.Status),
			Models.NormalizePriority(task.Priority),
			staffCell(task.AssignedTo),
			task.Location,
			task.RoomNumber,
			task.CreatedAt,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return &buf, nil
}

func staffCell(id *uint) interface{} {
	if id == nil {
		return ""
	}
	return *id
}
