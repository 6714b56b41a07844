package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/services"
	"skillhub/backend/utils"
)

type NotificationController struct {
	DB            *gorm.DB
	Cfg           *config.Config
	Notifications *services.NotificationService
}

func NewNotificationController(db *gorm.DB, cfg *config.Config, ns *services.NotificationService) *NotificationController {
	return &NotificationController{DB: db, Cfg: cfg, Notifications: ns}
}

func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var notifications []models.Notification
	err = nc.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(50).
		Find(&notifications).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, notifications)
}

func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	count, err := nc.Notifications.UnreadCount(userID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"count": count})
}

func (nc *NotificationController) CreateNotification(c *fiber.Ctx) error {
	_, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		UserID        uint   `json:"user_id"`
		Title         string `json:"title"`
		Message       string `json:"message"`
		Type          string `json:"type"`
		ReferenceID   uint   `json:"reference_id"`
		ReferenceType string `json:"reference_type"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.UserID == 0 || input.Title == "" || input.Message == "" {
		return utils.BadRequest(c, "user_id, title and message are required")
	}
	if !models.ValidNotificationType(input.Type) {
		return utils.BadRequest(c, "Invalid notification type")
	}

	notification, err := nc.Notifications.Create(services.NotificationInput{
		UserID:        input.UserID,
		Title:         input.Title,
		Message:       input.Message,
		Type:          input.Type,
		ReferenceID:   input.ReferenceID,
		ReferenceType: input.ReferenceType,
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Created(c, notification)
}

func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid notification ID")
	}

	var notification models.Notification
	if err := nc.DB.First(&notification, id).Error; err != nil {
		return utils.NotFound(c, "Notification not found")
	}
	if notification.UserID != userID {
		return utils.Forbidden(c, "Not authorized to update this notification")
	}

	notification.Read = true
	if err := nc.DB.Save(&notification).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, notification)
}

func (nc *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if err := nc.Notifications.MarkAllAsRead(userID); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "All notifications marked as read"})
}

func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid notification ID")
	}

	var notification models.Notification
	if err := nc.DB.First(&notification, id).Error; err != nil {
		return utils.NotFound(c, "Notification not found")
	}
	if notification.UserID != userID {
		return utils.Forbidden(c, "Not authorized to delete this notification")
	}

	if err := nc.DB.Delete(&notification).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Notification removed"})
}
