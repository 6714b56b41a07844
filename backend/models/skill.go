package models

import (
	"time"

	"gorm.io/gorm"
)

type Skill struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Category    string `gorm:"index;not null"`
	Description string `gorm:"not null"`
	CreatedByID uint   `gorm:"index"`
	CreatedBy   *User
}

type SkillCategory struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Description string
	Icon        string
}

// SkillReview is one user's review of a skill; a user may review a
// skill at most once.
type SkillReview struct {
	gorm.Model
	SkillID uint `gorm:"index:idx_skill_reviewer,unique"`
	UserID  uint `gorm:"index:idx_skill_reviewer,unique"`
	Rating  int  `gorm:"not null"` // 1..5
	Comment string
	Date    time.Time
}
