package Handover

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Lobby/Models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func createTask(t *testing.T, db *gorm.DB, category string, core Models.TaskCore) uint {
	t.Helper()
	var err error
	var id uint
	switch category {
	case Models.CategoryIncident:
		task := Models.Incident{TaskCore: core}
		err = db.Create(&task).Error
		id = task.ID
	case Models.CategoryClientRequest:
		task := Models.ClientRequest{TaskCore: core}
		err = db.Create(&task).Error
		id = task.ID
	case Models.CategoryFollowUp:
		task := Models.FollowUp{TaskCore: core}
		err = db.Create(&task).Error
		id = task.ID
	case Models.CategoryInternalTask:
		task := Models.InternalTask{TaskCore: core}
		err = db.Create(&task).Error
		id = task.ID
	case Models.CategoryTraining:
		task := Models.TrainingTask{TaskCore: core}
		err = db.Create(&task).Error
		id = task.ID
	default:
		t.Fatalf("unknown category %s", category)
	}
	require.NoError(t, err)
	return id
}
