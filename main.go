package main

import (
	"log"

	"Lobby/CronJobs"
	"Lobby/FiberConfig"
	"Lobby/Models"
	"Lobby/Notifications"
)

func main() {
	Models.Connect()

	if err := Notifications.InitFirebase(); err != nil {
		log.Printf("Firebase init failed, push notifications disabled: %v", err)
	}

	scheduler := CronJobs.NewScheduler(Models.DB)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer scheduler.Stop()

	FiberConfig.FiberConfig()
}
