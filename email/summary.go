package email

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"Lobby/Models"
)

// SendDailyHandoverSummary mails the managers yesterday's shift activity:
// shifts worked, handovers written and whether each was claimed. Runs from
// the daily cron job; skipped silently when mail or recipients are not
// configured.
func SendDailyHandoverSummary(db *gorm.DB) {
	config, ok := Models.LoadEmailConfig()
	if !ok {
		return
	}
	recipients := strings.Split(os.Getenv("MANAGER_EMAILS"), ",")
	if len(recipients) == 0 || recipients[0] == "" {
		return
	}

	since := time.Now().AddDate(0, 0, -1)

	var shifts []Models.Shift
	if err := db.Where("start_time >= ?", since).Order("start_time ASC").Find(&shifts).Error; err != nil {
		log.Printf("Error loading shifts for daily summary: %v", err)
		return
	}

	var handovers []Models.ShiftHandover
	if err := db.Where("created_at >= ?", since).Find(&handovers).Error; err != nil {
		log.Printf("Error loading handovers for daily summary: %v", err)
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Front desk summary for %s\n\n", since.Format("2006-01-02"))
	fmt.Fprintf(&body, "Shifts: %d\n", len(shifts))
	for _, s := range shifts {
		end := "ongoing"
		if s.EndTime != nil {
			end = s.EndTime.Format("15:04")
		}
		fmt.Fprintf(&body, "  - staff %d: %s to %s (%s)\n",
			s.UserID, s.StartTime.Format("15:04"), end, s.Status)
	}

	claimed := 0
	for _, h := range handovers {
		if h.ToShiftID != nil {
			claimed++
		}
	}
	fmt.Fprintf(&body, "\nHandovers written: %d, claimed: %d, unclaimed: %d\n",
		len(handovers), claimed, len(handovers)-claimed)

	message := Models.EmailMessage{
		To:      recipients,
		Subject: fmt.Sprintf("Front desk daily summary for %s", since.Format("Jan 2")),
		Body:    body.String(),
	}
	if err := SendEmail(config, message); err != nil {
		log.Printf("Error sending daily summary email: %v", err)
	}
}
