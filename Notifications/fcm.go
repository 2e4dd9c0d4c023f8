package Notifications

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"Lobby/Models"
)

// Global Firebase client
var firebaseClient *messaging.Client
var ctx = context.Background()

// InitFirebase sets up the FCM client. Call once at startup; push
// notifications are skipped when no credentials file is configured.
func InitFirebase() error {
	credFile := os.Getenv("FIREBASE_CREDENTIALS")
	if credFile == "" {
		log.Println("FIREBASE_CREDENTIALS not set, push notifications disabled")
		return nil
	}

	opt := option.WithCredentialsFile(credFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	firebaseClient = client
	log.Println("Firebase initialized successfully")
	return nil
}

// PushUrgentTask notifies the front-desk devices about an urgent task
// assignment. Best-effort like every other notification path.
func PushUrgentTask(title, body string) {
	sendToStaffTopic(title, body)
}

// PushReminder delivers a due reminder to staff devices.
func PushReminder(reminder *Models.Reminder) {
	sendToStaffTopic(reminder.Title, reminder.Message)
}

func sendToStaffTopic(title, body string) {
	if firebaseClient == nil {
		return
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Topic: "front-desk",
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	response, err := firebaseClient.Send(ctx, message)
	if err != nil {
		log.Printf("Error sending FCM notification: %v", err)
		return
	}
	log.Printf("FCM notification sent: %s", response)
}
