package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"skillhub/backend/models"
)

// NotificationService persists notifications for later delivery. The
// attendance and progress paths treat it as fire-and-forget: a failed
// notification write is logged and never fails the primary operation.
type NotificationService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationService(db *gorm.DB, logger *log.Logger) *NotificationService {
	return &NotificationService{DB: db, Logger: logger}
}

type NotificationInput struct {
	UserID        uint
	Title         string
	Message       string
	Type          string
	ReferenceID   uint
	ReferenceType string
}

// Create persists one notification and reports the error to the
// caller. Controllers use this path so clients see failures.
func (ns *NotificationService) Create(in NotificationInput) (*models.Notification, error) {
	notification := models.Notification{
		UserID:        in.UserID,
		Title:         in.Title,
		Message:       in.Message,
		Type:          in.Type,
		ReferenceID:   in.ReferenceID,
		ReferenceType: in.ReferenceType,
	}

	if err := ns.DB.Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// Notify is the best-effort path used by the attendance and progress
// engines: errors are swallowed after logging.
func (ns *NotificationService) Notify(in NotificationInput) {
	if _, err := ns.Create(in); err != nil {
		ns.Logger.Printf("notification write failed for user %d: %v", in.UserID, err)
	}
}

// NotifyUsers fans one notification out to several users.
func (ns *NotificationService) NotifyUsers(userIDs []uint, in NotificationInput) {
	for _, id := range userIDs {
		in.UserID = id
		ns.Notify(in)
	}
}

func (ns *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := ns.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (ns *NotificationService) MarkAllAsRead(userID uint) error {
	return ns.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// CleanupOld deletes notifications older than 30 days.
func (ns *NotificationService) CleanupOld() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -30)
	result := ns.DB.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
