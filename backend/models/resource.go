package models

import (
	"time"

	"gorm.io/gorm"
)

type Resource struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Link        string
	Type        string `gorm:"default:Article"` // Article, Video, Course, Book, Other, Image, PDF
	Category    string `gorm:"index;not null"`
	Tags        string // comma-separated
	Visibility  string `gorm:"default:public"` // public, private
	Views       int    `gorm:"default:0"`
	Rating      float64
	SkillID     uint `gorm:"index;not null"`
	AddedByID   uint `gorm:"index;not null"`
	Completions []ResourceCompletion
}

// ResourceCompletion records that a user finished a resource. The
// composite unique index keeps at most one entry per user per
// resource; the duplicate check in the progress service runs first so
// callers get a clean error instead of a constraint violation.
type ResourceCompletion struct {
	gorm.Model
	ResourceID  uint `gorm:"index:idx_resource_user,unique"`
	UserID      uint `gorm:"index:idx_resource_user,unique"`
	CompletedAt time.Time
}

type ResourceReview struct {
	gorm.Model
	ResourceID uint `gorm:"index:idx_resource_reviewer,unique"`
	UserID     uint `gorm:"index:idx_resource_reviewer,unique"`
	Rating     int  `gorm:"not null"` // 1..5
	Comment    string
	Date       time.Time
}
