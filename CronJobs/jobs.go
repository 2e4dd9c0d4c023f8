package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"Lobby/Handover"
	"Lobby/Notifications"
	"Lobby/Webhooks"
	"Lobby/email"

	"Lobby/Models"
)

// Scheduler runs the background jobs: webhook outbox delivery, the due
// reminder sweep, the orphaned shift check and the daily manager summary.
type Scheduler struct {
	cronScheduler *cron.Cron
	db            *gorm.DB
	dispatcher    *Webhooks.Dispatcher
	jobIDs        []cron.EntryID
}

// NewScheduler creates the scheduler with all jobs unstarted.
func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{
		cronScheduler: cron.New(cron.WithSeconds()),
		db:            db,
		dispatcher:    Webhooks.NewDispatcher(db),
	}
}

// Start registers and starts every job.
func (s *Scheduler) Start() error {
	jobs := []struct {
		schedule string
		name     string
		run      func()
	}{
		{"*/30 * * * * *", "webhook outbox", s.dispatcher.DispatchPending},
		{"0 * * * * *", "reminder sweep", s.runReminderSweep},
		{"0 0 * * * *", "orphaned shift check", s.runOrphanCheck},
		{"0 0 7 * * *", "daily summary email", func() { email.SendDailyHandoverSummary(s.db) }},
	}

	for _, job := range jobs {
		job := job
		id, err := s.cronScheduler.AddFunc(job.schedule, func() {
			job.run()
		})
		if err != nil {
			return fmt.Errorf("error scheduling %s job: %w", job.name, err)
		}
		s.jobIDs = append(s.jobIDs, id)
	}

	s.cronScheduler.Start()
	log.Println("Background job scheduler started")
	return nil
}

// Stop terminates the scheduler.
func (s *Scheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
		log.Println("Background job scheduler stopped")
	}
}

// runReminderSweep pushes reminders that have come due and have not been
// acknowledged by their target yet. The per-user receipt rows keep a
// reminder from being re-pushed every sweep.
func (s *Scheduler) runReminderSweep() {
	now := time.Now()

	var due []Models.Reminder
	if err := s.db.Where("due_at <= ?", now).Find(&due).Error; err != nil {
		log.Printf("Error loading due reminders: %v", err)
		return
	}

	for i := range due {
		reminder := &due[i]
		targets, err := s.reminderTargets(reminder)
		if err != nil {
			log.Printf("Error resolving reminder %d targets: %v", reminder.ID, err)
			continue
		}

		pushed := false
		for _, userID := range targets {
			receipt, err := s.receiptFor(reminder.ID, userID)
			if err != nil {
				log.Printf("Error loading reminder receipt: %v", err)
				continue
			}
			if receipt.AcknowledgedAt != nil || receipt.LastSeenAt != nil {
				continue
			}
			receipt.LastSeenAt = &now
			if err := s.db.Save(receipt).Error; err != nil {
				log.Printf("Error saving reminder receipt: %v", err)
				continue
			}
			pushed = true
		}

		if pushed {
			Notifications.PushReminder(reminder)
		}

		if reminder.Recurring != "" {
			s.rescheduleRecurring(reminder, now)
		}
	}
}

// rescheduleRecurring advances a recurring reminder past now and clears
// its receipts so the next occurrence is shown again.
func (s *Scheduler) rescheduleRecurring(reminder *Models.Reminder, now time.Time) {
	step := 24 * time.Hour
	if reminder.Recurring == "hourly" {
		step = time.Hour
	}
	next := reminder.DueAt
	for !next.After(now) {
		next = next.Add(step)
	}
	reminder.DueAt = next
	if err := s.db.Save(reminder).Error; err != nil {
		log.Printf("Error rescheduling reminder %d: %v", reminder.ID, err)
		return
	}
	if err := s.db.Where("reminder_id = ?", reminder.ID).
		Delete(&Models.ReminderReceipt{}).Error; err != nil {
		log.Printf("Error clearing receipts for reminder %d: %v", reminder.ID, err)
	}
}

func (s *Scheduler) reminderTargets(reminder *Models.Reminder) ([]uint, error) {
	if reminder.TargetID != nil {
		return []uint{*reminder.TargetID}, nil
	}
	var ids []uint
	err := s.db.Model(&Models.User{}).Where("is_approved = 1").Pluck("id", &ids).Error
	return ids, err
}

func (s *Scheduler) receiptFor(reminderID, userID uint) (*Models.ReminderReceipt, error) {
	var receipt Models.ReminderReceipt
	err := s.db.Where(Models.ReminderReceipt{ReminderID: reminderID, UserID: userID}).
		FirstOrCreate(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// runOrphanCheck logs completed shifts that have no archive entry, mostly
// stale shifts that were force-completed by a later shift start.
func (s *Scheduler) runOrphanCheck() {
	orphans, err := Handover.FindOrphanedShifts(s.db)
	if err != nil {
		log.Printf("Error checking for orphaned shifts: %v", err)
		return
	}
	for _, shift := range orphans {
		log.Printf("Orphaned shift %d (user %d): completed with no handover archive", shift.ID, shift.UserID)
	}
}
