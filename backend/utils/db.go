package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
)

// InitDB opens the database connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := MigrateModels(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateModels runs AutoMigrate for every model. Shared with tests,
// which run against sqlite instead of postgres.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
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
}
