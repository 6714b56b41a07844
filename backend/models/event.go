package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	Title           string    `gorm:"not null"`
	Description     string    `gorm:"not null"`
	Category        string    `gorm:"index;not null"`
	Date            time.Time `gorm:"index;not null"`
	EndDate         *time.Time
	Location        string `gorm:"default:Online"`
	IsVirtual       bool   `gorm:"default:true"`
	MeetingLink     string
	Image           string
	OrganizerID     uint    `gorm:"index;not null"`
	MaxParticipants int     // 0 means unlimited
	Popularity      int     `gorm:"default:0"`
	Views           int     `gorm:"default:0"`
	Visibility      string  `gorm:"default:public"` // public, private
	RelatedSkills   []Skill `gorm:"many2many:event_skills;"`
	Participants    []Participant
	Ratings         []EventRating
}

// Participant is one user's registration on an event, carrying the
// attendance-code state. AttendanceCode is a pointer so unregistered
// codes stay NULL and the unique index only applies to issued codes.
type Participant struct {
	gorm.Model
	EventID              uint `gorm:"index:idx_event_user,unique"`
	UserID               uint `gorm:"index:idx_event_user,unique"`
	RegisteredAt         time.Time
	AttendanceCode       *string `gorm:"uniqueIndex"`
	CodeGeneratedAt      *time.Time
	CodeExpiresAt        *time.Time
	Attended             bool `gorm:"default:false"`
	AttendanceVerifiedAt *time.Time
}

type EventRating struct {
	gorm.Model
	EventID uint `gorm:"index:idx_event_rater,unique"`
	UserID  uint `gorm:"index:idx_event_rater,unique"`
	Rating  int  `gorm:"not null"` // 1..5
	Comment string
	Date    time.Time
}
