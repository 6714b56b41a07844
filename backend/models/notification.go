package models

import (
	"gorm.io/gorm"
)

const (
	NotificationFriend      = "friend"
	NotificationChat        = "chat"
	NotificationSkill       = "skill"
	NotificationEvent       = "event"
	NotificationGoal        = "goal"
	NotificationSkillReview = "skill_review"
)

type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"index:idx_notif_user_read"`
	Title   string `gorm:"not null"`
	Message string `gorm:"not null"`
	Type    string `gorm:"not null"` // friend, chat, skill, event, goal, skill_review
	Read    bool   `gorm:"index:idx_notif_user_read;default:false"`

	// Optional reference to the related entity.
	ReferenceID   uint
	ReferenceType string // Skill, Event, LearningGoal, Resource
}

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationFriend, NotificationChat, NotificationSkill,
		NotificationEvent, NotificationGoal, NotificationSkillReview:
		return true
	}
	return false
}
