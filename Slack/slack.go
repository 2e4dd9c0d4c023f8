package Slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"Lobby/Models"
)

// SlackClient holds the Slack bot token and base URL
type SlackClient struct {
	Token   string
	BaseURL string
}

// SlackMessage represents a message payload
type SlackMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
	Parse   string `json:"parse,omitempty"`
}

// SlackResponse represents the API response
type SlackResponse struct {
	OK      bool   `json:"ok"`
	Channel string `json:"channel,omitempty"`
	TS      string `json:"ts,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// NewSlackClient creates a new Slack client
// Required Bot Token Scopes:
// - chat:write (send messages)
// - chat:write.public (send to channels without being invited)
func NewSlackClient(token string) *SlackClient {
	return &SlackClient{
		Token:   token,
		BaseURL: "https://slack.com/api",
	}
}

// SendMessage sends a message to a Slack channel
func (s *SlackClient) SendMessage(channel, message string) (*SlackResponse, error) {
	payload := SlackMessage{
		Channel: channel,
		Text:    message,
		Parse:   "full",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling JSON: %v", err)
	}

	url := fmt.Sprintf("%s/chat.postMessage", s.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	if !slackResp.OK {
		return &slackResp, fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return &slackResp, nil
}

// NotifyUrgentIncident posts urgent incidents to the operations channel so
// the duty manager sees them without opening the dashboard. Best-effort:
// failures are logged, the task write already committed.
func NotifyUrgentIncident(incident *Models.Incident, createdByName string) {
	token := os.Getenv("SLACK_BOT_TOKEN")
	channel := os.Getenv("SLACK_OPS_CHANNEL")
	if token == "" || channel == "" {
		return
	}

	location := incident.Location
	if incident.RoomNumber != "" {
		location = fmt.Sprintf("%s (room %s)", location, incident.RoomNumber)
	}
	message := fmt.Sprintf("🚨 Urgent incident: %s\nLocation: %s\nReported by: %s",
		incident.Title, location, createdByName)

	client := NewSlackClient(token)
	if _, err := client.SendMessage(channel, message); err != nil {
		log.Printf("Error sending Slack incident notification: %v", err)
	}
}

// NotifyShiftChange posts shift start/end events to the operations channel.
func NotifyShiftChange(event string, shift *Models.Shift, userName string) {
	token := os.Getenv("SLACK_BOT_TOKEN")
	channel := os.Getenv("SLACK_OPS_CHANNEL")
	if token == "" || channel == "" {
		return
	}

	message := fmt.Sprintf("%s: %s at %s", event, userName, time.Now().Format("15:04"))
	client := NewSlackClient(token)
	if _, err := client.SendMessage(channel, message); err != nil {
		log.Printf("Error sending Slack shift notification: %v", err)
	}
}
