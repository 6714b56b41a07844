package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"skillhub/backend/models"
)

func TestExpireOverdueGoals(t *testing.T) {
	db := setupTestDB(t)
	s := NewScheduler(db, NewNotificationService(db, testLogger()), testLogger())

	user := createTestUser(t, db, "learner")
	skillA := createTestSkill(t, db, "Go", user.ID)
	skillB := createTestSkill(t, db, "Rust", user.ID)
	skillC := createTestSkill(t, db, "SQL", user.ID)

	overdue := models.LearningGoal{
		UserID: user.ID, SkillID: skillA.ID,
		TargetDate: time.Now().Add(-48 * time.Hour),
		Status:     models.GoalInProgress,
	}
	current := models.LearningGoal{
		UserID: user.ID, SkillID: skillB.ID,
		TargetDate: time.Now().Add(48 * time.Hour),
		Status:     models.GoalInProgress,
	}
	done := models.LearningGoal{
		UserID: user.ID, SkillID: skillC.ID,
		TargetDate:      time.Now().Add(-48 * time.Hour),
		CurrentProgress: 100,
		Status:          models.GoalCompleted,
	}
	// Insert without hooks so the fixture statuses stick.
	require.NoError(t, db.Session(&gorm.Session{SkipHooks: true}).Create(&overdue).Error)
	require.NoError(t, db.Session(&gorm.Session{SkipHooks: true}).Create(&current).Error)
	require.NoError(t, db.Session(&gorm.Session{SkipHooks: true}).Create(&done).Error)

	s.ExpireOverdueGoals(time.Now())

	var got models.LearningGoal
	require.NoError(t, db.First(&got, overdue.ID).Error)
	assert.Equal(t, models.GoalExpired, got.Status)

	got = models.LearningGoal{}
	require.NoError(t, db.First(&got, current.ID).Error)
	assert.Equal(t, models.GoalInProgress, got.Status)

	// Completion wins over expiry.
	got = models.LearningGoal{}
	require.NoError(t, db.First(&got, done.ID).Error)
	assert.Equal(t, models.GoalCompleted, got.Status)
}

func TestCleanupOldNotifications(t *testing.T) {
	db := setupTestDB(t)
	ns := NewNotificationService(db, testLogger())

	user := createTestUser(t, db, "learner")

	fresh, err := ns.Create(NotificationInput{
		UserID: user.ID, Title: "t", Message: "m", Type: models.NotificationSkill,
	})
	require.NoError(t, err)

	stale, err := ns.Create(NotificationInput{
		UserID: user.ID, Title: "t", Message: "m", Type: models.NotificationSkill,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().AddDate(0, 0, -31)).Error)

	removed, err := ns.CleanupOld()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)
}

func TestSendEventReminders(t *testing.T) {
	db := setupTestDB(t)
	s := NewScheduler(db, NewNotificationService(db, testLogger()), testLogger())

	organizer := createTestUser(t, db, "organizer")
	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	now := time.Now()

	// Crosses the 24-hour mark this tick.
	soon := createTestEvent(t, db, organizer.ID, now.Add(23*time.Hour+30*time.Minute))
	registerParticipant(t, db, soon.ID, a.ID)
	registerParticipant(t, db, soon.ID, b.ID)

	// Still two days out: no reminder this tick.
	later := createTestEvent(t, db, organizer.ID, now.Add(48*time.Hour))
	registerParticipant(t, db, later.ID, a.ID)

	s.SendEventReminders(now)

	var count int64
	db.Model(&models.Notification{}).Where("type = ?", models.NotificationEvent).Count(&count)
	assert.Equal(t, int64(2), count)

	var reminder models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", a.ID, models.NotificationEvent).First(&reminder).Error)
	assert.Equal(t, "Event Reminder", reminder.Title)
	assert.Contains(t, reminder.Message, "24 hours")
	assert.Equal(t, soon.ID, reminder.ReferenceID)
}

func TestSendEventRemindersFinalHour(t *testing.T) {
	db := setupTestDB(t)
	s := NewScheduler(db, NewNotificationService(db, testLogger()), testLogger())

	organizer := createTestUser(t, db, "organizer")
	a := createTestUser(t, db, "a")

	now := time.Now()
	event := createTestEvent(t, db, organizer.ID, now.Add(30*time.Minute))
	registerParticipant(t, db, event.ID, a.ID)

	s.SendEventReminders(now)

	var reminder models.Notification
	require.NoError(t, db.Where("user_id = ?", a.ID).First(&reminder).Error)
	assert.Contains(t, reminder.Message, "1 hour")
}
