package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"skillhub/backend/models"
)

// Scheduler runs the periodic maintenance work: hourly event
// reminders, daily notification cleanup, and the opportunistic sweep
// that expires overdue learning goals.
type Scheduler struct {
	DB            *gorm.DB
	Notifications *NotificationService
	Logger        *log.Logger

	ReminderInterval time.Duration
	CleanupInterval  time.Duration
}

func NewScheduler(db *gorm.DB, notifications *NotificationService, logger *log.Logger) *Scheduler {
	return &Scheduler{
		DB:               db,
		Notifications:    notifications,
		Logger:           logger,
		ReminderInterval: time.Hour,
		CleanupInterval:  24 * time.Hour,
	}
}

// Start launches the scheduler loop in a goroutine. It stops when the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	s.Logger.Printf("scheduler started (reminders every %v, cleanup every %v)",
		s.ReminderInterval, s.CleanupInterval)

	reminders := time.NewTicker(s.ReminderInterval)
	defer reminders.Stop()
	cleanup := time.NewTicker(s.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Println("scheduler stopped")
			return
		case <-reminders.C:
			s.SendEventReminders(time.Now())
		case <-cleanup.C:
			s.RunDailyCleanup(time.Now())
		}
	}
}

// SendEventReminders notifies participants of events starting within
// the next 24 hours. A reminder goes out in the hour that crosses the
// 24-hour mark and again in the final hour before the event.
func (s *Scheduler) SendEventReminders(now time.Time) {
	var events []models.Event
	err := s.DB.Preload("Participants").
		Where("date >= ? AND date <= ?", now, now.Add(24*time.Hour)).
		Find(&events).Error
	if err != nil {
		s.Logger.Printf("event reminder query failed: %v", err)
		return
	}

	for _, event := range events {
		if len(event.Participants) == 0 {
			continue
		}

		hoursUntil := event.Date.Sub(now).Hours()

		var timeFrame string
		switch {
		case hoursUntil <= 24 && hoursUntil > 23:
			timeFrame = "24 hours"
		case hoursUntil <= 1 && hoursUntil > 0:
			timeFrame = "1 hour"
		default:
			continue
		}

		userIDs := make([]uint, 0, len(event.Participants))
		for _, p := range event.Participants {
			userIDs = append(userIDs, p.UserID)
		}

		s.Notifications.NotifyUsers(userIDs, NotificationInput{
			Title:         "Event Reminder",
			Message:       fmt.Sprintf("%s starts in %s. Get ready!", event.Title, timeFrame),
			Type:          models.NotificationEvent,
			ReferenceID:   event.ID,
			ReferenceType: "Event",
		})
	}
}

// RunDailyCleanup drops old notifications and expires overdue goals.
func (s *Scheduler) RunDailyCleanup(now time.Time) {
	removed, err := s.Notifications.CleanupOld()
	if err != nil {
		s.Logger.Printf("notification cleanup failed: %v", err)
	} else if removed > 0 {
		s.Logger.Printf("removed %d old notifications", removed)
	}

	s.ExpireOverdueGoals(now)
}

// ExpireOverdueGoals flips in_progress goals whose target date has
// passed to expired, so the status stays honest for goals nobody has
// touched recently. Completion still wins over expiry, which is why
// only in_progress goals are swept.
func (s *Scheduler) ExpireOverdueGoals(now time.Time) {
	result := s.DB.Model(&models.LearningGoal{}).
		Where("status = ? AND target_date < ?", models.GoalInProgress, now).
		Update("status", models.GoalExpired)
	if result.Error != nil {
		s.Logger.Printf("goal expiry sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		s.Logger.Printf("expired %d overdue learning goals", result.RowsAffected)
	}
}
