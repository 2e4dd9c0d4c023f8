package Board

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
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

func addIncident(t *testing.T, db *gorm.DB, title, status string, position int) uint {
	t.Helper()
	task := Models.Incident{TaskCore: Models.TaskCore{
		Title: title, Status: status, CreatedBy: 1, Position: position,
	}}
	require.NoError(t, db.Create(&task).Error)
	return task.ID
}

func addFollowUp(t *testing.T, db *gorm.DB, title, status string, position int) uint {
	t.Helper()
	task := Models.FollowUp{TaskCore: Models.TaskCore{
		Title: title, Status: status, CreatedBy: 1, Position: position,
	}}
	require.NoError(t, db.Create(&task).Error)
	return task.ID
}

func columnTitles(t *testing.T, db *gorm.DB, status string) []string {
	t.Helper()
	columns, err := Load(db)
	require.NoError(t, err)
	for _, col := range columns {
		if col.Status == status {
			titles := make([]string, 0, len(col.Tasks))
			for _, task := range col.Tasks {
				titles = append(titles, task.Title)
			}
			return titles
		}
	}
	t.Fatalf("no column %s", status)
	return nil
}

func TestLoadGroupsAndOrders(t *testing.T) {
	db := openTestDB(t)
	addIncident(t, db, "second", Models.StatusPending, 2048)
	addIncident(t, db, "first", Models.StatusPending, 1024)
	addFollowUp(t, db, "third", Models.StatusPending, 3072)
	addIncident(t, db, "working", Models.StatusInProgress, 1024)

	assert.Equal(t, []string{"first", "second", "third"}, columnTitles(t, db, Models.StatusPending))
	assert.Equal(t, []string{"working"}, columnTitles(t, db, Models.StatusInProgress))
	assert.Empty(t, columnTitles(t, db, Models.StatusCompleted))
}

func TestMoveAcrossColumns(t *testing.T) {
	db := openTestDB(t)
	id := addIncident(t, db, "mover", Models.StatusPending, 1024)
	addFollowUp(t, db, "anchor", Models.StatusInProgress, 1024)

	require.NoError(t, Move(db, Models.CategoryIncident, id, Models.StatusInProgress, 0))

	assert.Empty(t, columnTitles(t, db, Models.StatusPending))
	assert.Equal(t, []string{"mover", "anchor"}, columnTitles(t, db, Models.StatusInProgress))

	// Status actually changed on the row.
	var task Models.Incident
	require.NoError(t, db.First(&task, id).Error)
	assert.Equal(t, Models.StatusInProgress, task.Status)
}

func TestMoveWithinColumn(t *testing.T) {
	db := openTestDB(t)
	a := addIncident(t, db, "a", Models.StatusPending, 1024)
	addIncident(t, db, "b", Models.StatusPending, 2048)
	addIncident(t, db, "c", Models.StatusPending, 3072)

	// Move "a" between "b" and "c".
	require.NoError(t, Move(db, Models.CategoryIncident, a, Models.StatusPending, 1))
	assert.Equal(t, []string{"b", "a", "c"}, columnTitles(t, db, Models.StatusPending))

	// And to the end.
	require.NoError(t, Move(db, Models.CategoryIncident, a, Models.StatusPending, 2))
	assert.Equal(t, []string{"b", "c", "a"}, columnTitles(t, db, Models.StatusPending))
}

func TestMoveRenumbersWhenGapsExhaust(t *testing.T) {
	db := openTestDB(t)
	// Adjacent positions leave no midpoint at index 1.
	addIncident(t, db, "x", Models.StatusPending, 1)
	addIncident(t, db, "y", Models.StatusPending, 2)
	mover := addFollowUp(t, db, "m", Models.StatusPending, 3)

	require.NoError(t, Move(db, Models.CategoryFollowUp, mover, Models.StatusPending, 1))
	assert.Equal(t, []string{"x", "m", "y"}, columnTitles(t, db, Models.StatusPending))

	// Other columns untouched by the renumber.
	anchor := addIncident(t, db, "anchor", Models.StatusInProgress, 7)
	require.NoError(t, Move(db, Models.CategoryIncident, addIncident(t, db, "z", Models.StatusPending, 9000), Models.StatusPending, 0))
	var task Models.Incident
	require.NoError(t, db.First(&task, anchor).Error)
	assert.Equal(t, 7, task.Position)
}

func TestMoveErrors(t *testing.T) {
	db := openTestDB(t)
	assert.ErrorIs(t, Move(db, "bogus", 1, Models.StatusPending, 0), ErrUnknownCategory)
	assert.ErrorIs(t, Move(db, Models.CategoryIncident, 42, Models.StatusPending, 0), ErrTaskNotFound)
}

func TestNextPositionAppends(t *testing.T) {
	db := openTestDB(t)

	p, err := NextPosition(db, Models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, PositionStep, p)

	addIncident(t, db, "tail", Models.StatusPending, 5000)
	p, err = NextPosition(db, Models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 5000+PositionStep, p)
}
