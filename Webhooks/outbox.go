package Webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"

	"Lobby/Models"
)

// Retry policy for the dispatcher. Backoff doubles per attempt starting at
// one minute; after MaxAttempts the row is left in place with its last
// error for the admin logs.
const (
	MaxAttempts = 8
	baseBackoff = time.Minute
)

// Enqueue records a webhook notification alongside the mutation that
// produced it. Pass the caller's *gorm.DB (or transaction handle) so the
// outbox row commits with the primary write. Enqueue failures are logged
// and swallowed: notification is best-effort, the primary write is not.
func Enqueue(db *gorm.DB, eventType string, currentUserID uint, data interface{}) {
	payload, err := json.Marshal(Models.WebhookPayload{
		EventType:     eventType,
		Timestamp:     time.Now(),
		CurrentUserID: currentUserID,
		Data:          data,
	})
	if err != nil {
		log.Printf("Error encoding webhook payload for %s: %v", eventType, err)
		return
	}

	row := Models.WebhookOutbox{
		EventType:     eventType,
		Payload:       payload,
		NextAttemptAt: time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("Error enqueueing webhook %s: %v", eventType, err)
	}
}

// Dispatcher delivers queued outbox rows to the automation endpoint.
type Dispatcher struct {
	DB     *gorm.DB
	URL    string
	Client *http.Client
}

// NewDispatcher reads the endpoint from WEBHOOK_URL. An empty URL disables
// delivery; rows still queue so nothing is lost if the URL is set later.
func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{
		DB:     db,
		URL:    os.Getenv("WEBHOOK_URL"),
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// DispatchPending POSTs every due undelivered row. Failures increment the
// attempt counter and push the next attempt out; they never propagate to
// the code that queued the event.
func (d *Dispatcher) DispatchPending() {
	if d.URL == "" {
		return
	}

	var pending []Models.WebhookOutbox
	err := d.DB.Where("delivered_at IS NULL AND attempts < ? AND next_attempt_at <= ?",
		MaxAttempts, time.Now()).
		Order("id ASC").Limit(100).Find(&pending).Error
	if err != nil {
		log.Printf("Error loading webhook outbox: %v", err)
		return
	}

	for i := range pending {
		d.deliver(&pending[i])
	}
}

func (d *Dispatcher) deliver(row *Models.WebhookOutbox) {
	err := d.post(row.Payload)
	row.Attempts++
	if err != nil {
		row.LastError = err.Error()
		backoff := baseBackoff << (row.Attempts - 1)
		row.NextAttemptAt = time.Now().Add(backoff)
		log.Printf("Webhook %s (id %d) attempt %d failed: %v", row.EventType, row.ID, row.Attempts, err)
	} else {
		now := time.Now()
		row.DeliveredAt = &now
		row.LastError = ""
	}
	if err := d.DB.Save(row).Error; err != nil {
		log.Printf("Error updating webhook outbox row %d: %v", row.ID, err)
	}
}

func (d *Dispatcher) post(payload []byte) error {
	req, err := http.NewRequest("POST", d.URL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
