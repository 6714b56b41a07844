package models

import (
	"time"

	"gorm.io/gorm"
)

// Progress tracks one user's learning of one skill. The Progress
// field is derived from resource completions whenever a resource is
// marked or unmarked; the practice-time and assessment paths add to
// it without recomputing, so readers that need the exact
// resource-completion ratio recompute it from ResourceCompletion rows
// instead of trusting this field.
type Progress struct {
	gorm.Model
	UserID             uint `gorm:"index:idx_user_skill,unique"`
	SkillID            uint `gorm:"index:idx_user_skill,unique"`
	Goal               string
	TargetDate         *time.Time
	Progress           float64 `gorm:"default:0"` // 0..100
	PracticeMinutes    int     `gorm:"default:0"`
	ResourcesCompleted []ProgressResource
	AssessmentScores   []AssessmentScore
}

type ProgressResource struct {
	gorm.Model
	ProgressID  uint `gorm:"index"`
	ResourceID  uint
	CompletedAt time.Time
}

type AssessmentScore struct {
	gorm.Model
	ProgressID uint `gorm:"index"`
	QuizID     string
	Score      int // 0..100
	Date       time.Time
}
