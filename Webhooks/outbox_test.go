package Webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

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

func newDispatcher(db *gorm.DB, url string) *Dispatcher {
	return &Dispatcher{DB: db, URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func TestEnqueueRecordsPayload(t *testing.T) {
	db := openTestDB(t)

	Enqueue(db, "task_created", 7, map[string]interface{}{"id": 3, "category": "incident"})

	var row Models.WebhookOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "task_created", row.EventType)
	assert.Equal(t, 0, row.Attempts)
	assert.Nil(t, row.DeliveredAt)

	var payload Models.WebhookPayload
	require.NoError(t, json.Unmarshal(row.Payload, &payload))
	assert.Equal(t, "task_created", payload.EventType)
	assert.Equal(t, uint(7), payload.CurrentUserID)
	assert.False(t, payload.Timestamp.IsZero())
}

func TestDispatchDeliversAndMarks(t *testing.T) {
	db := openTestDB(t)

	var got atomic.Int32
	var lastBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	Enqueue(db, "shift_ended", 2, map[string]interface{}{"shift_id": 11})
	newDispatcher(db, srv.URL).DispatchPending()

	assert.Equal(t, int32(1), got.Load())
	var payload Models.WebhookPayload
	require.NoError(t, json.Unmarshal(lastBody, &payload))
	assert.Equal(t, "shift_ended", payload.EventType)

	var row Models.WebhookOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 1, row.Attempts)
	require.NotNil(t, row.DeliveredAt)
	assert.Empty(t, row.LastError)

	// Delivered rows are never re-sent.
	newDispatcher(db, srv.URL).DispatchPending()
	assert.Equal(t, int32(1), got.Load())
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	db := openTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	Enqueue(db, "task_moved", 1, nil)
	d := newDispatcher(db, srv.URL)
	d.DispatchPending()

	var row Models.WebhookOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 1, row.Attempts)
	assert.Nil(t, row.DeliveredAt)
	assert.Contains(t, row.LastError, "502")
	// Next attempt pushed into the future, so an immediate re-run skips it.
	assert.True(t, row.NextAttemptAt.After(time.Now()))
	d.DispatchPending()
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 1, row.Attempts)
}

func TestDispatchRecoversAfterFailure(t *testing.T) {
	db := openTestDB(t)

	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	Enqueue(db, "handover_claimed", 5, nil)
	d := newDispatcher(db, srv.URL)
	d.DispatchPending()

	// Simulate the backoff window elapsing, then let the endpoint recover.
	require.NoError(t, db.Model(&Models.WebhookOutbox{}).
		Where("delivered_at IS NULL").
		Update("next_attempt_at", time.Now().Add(-time.Second)).Error)
	fail.Store(false)
	d.DispatchPending()

	var row Models.WebhookOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 2, row.Attempts)
	require.NotNil(t, row.DeliveredAt)
	assert.Empty(t, row.LastError)
}

func TestDispatchGivesUpAfterMaxAttempts(t *testing.T) {
	db := openTestDB(t)

	var got atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	Enqueue(db, "task_deleted", 1, nil)
	d := newDispatcher(db, srv.URL)
	for i := 0; i < MaxAttempts+3; i++ {
		require.NoError(t, db.Model(&Models.WebhookOutbox{}).
			Where("delivered_at IS NULL").
			Update("next_attempt_at", time.Now().Add(-time.Second)).Error)
		d.DispatchPending()
	}

	assert.Equal(t, int32(MaxAttempts), got.Load())
	var row Models.WebhookOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, MaxAttempts, row.Attempts)
	assert.Nil(t, row.DeliveredAt)
	assert.NotEmpty(t, row.LastError)
}

func TestDispatcherDisabledWithoutURL(t *testing.T) {
	db := openTestDB(t)
	Enqueue(db, "task_created", 1, nil)

	newDispatcher(db, "").DispatchPending()

	var row Models.WebhookOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 0, row.Attempts)
	assert.Nil(t, row.DeliveredAt)
}
