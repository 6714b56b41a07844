package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GoalInProgress = "in_progress"
	GoalCompleted  = "completed"
	GoalExpired    = "expired"
)

type LearningGoal struct {
	gorm.Model
	UserID          uint      `gorm:"index:idx_goal_user_skill,unique"`
	SkillID         uint      `gorm:"index:idx_goal_user_skill,unique"`
	TargetDate      time.Time `gorm:"not null"`
	CurrentProgress float64   `gorm:"default:0"` // 0..100
	Status          string    `gorm:"default:in_progress"`
	AchievedAt      *time.Time
}

// UpdateStatus re-runs the goal state machine against the current
// progress and wall clock. AchievedAt is set on the first transition
// to completed and deliberately never cleared afterwards, even if
// progress later drops below 100.
func (g *LearningGoal) UpdateStatus(now time.Time) {
	switch {
	case g.CurrentProgress >= 100:
		g.Status = GoalCompleted
		if g.AchievedAt == nil {
			t := now
			g.AchievedAt = &t
		}
	case now.After(g.TargetDate):
		g.Status = GoalExpired
	default:
		g.Status = GoalInProgress
	}
}

// BeforeSave mirrors the status evaluation onto every save path.
func (g *LearningGoal) BeforeSave(tx *gorm.DB) error {
	g.UpdateStatus(time.Now())
	return nil
}
