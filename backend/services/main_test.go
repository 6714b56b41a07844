package services

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skillhub/backend/models"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database with a shared cache survives the
	// connection pool opening more than one connection.
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.SkillCategory{},
		&models.SkillReview{},
		&models.Resource{},
		&models.ResourceCompletion{},
		&models.ResourceReview{},
		&models.Event{},
		&models.Participant{},
		&models.EventRating{},
		&models.Progress{},
		&models.ProgressResource{},
		&models.AssessmentScore{},
		&models.LearningGoal{},
		&models.Notification{},
	)
	require.NoError(t, err)

	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestSkill(t *testing.T, db *gorm.DB, name string, createdBy uint) models.Skill {
	t.Helper()
	skill := models.Skill{
		Name:        name,
		Category:    "Programming",
		Description: "test skill",
		CreatedByID: createdBy,
	}
	require.NoError(t, db.Create(&skill).Error)
	return skill
}

func createTestResources(t *testing.T, db *gorm.DB, skillID, addedBy uint, n int) []models.Resource {
	t.Helper()
	resources := make([]models.Resource, n)
	for i := range resources {
		resources[i] = models.Resource{
			Title:       "resource",
			Description: "test resource",
			Category:    "Programming",
			SkillID:     skillID,
			AddedByID:   addedBy,
		}
		require.NoError(t, db.Create(&resources[i]).Error)
	}
	return resources
}

func createTestEvent(t *testing.T, db *gorm.DB, organizerID uint, date time.Time) models.Event {
	t.Helper()
	event := models.Event{
		Title:       "Go Workshop",
		Description: "hands-on session",
		Category:    "Programming",
		Date:        date,
		OrganizerID: organizerID,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func registerParticipant(t *testing.T, db *gorm.DB, eventID, userID uint) models.Participant {
	t.Helper()
	participant := models.Participant{
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: time.Now(),
	}
	require.NoError(t, db.Create(&participant).Error)
	return participant
}
