package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/services"
	"skillhub/backend/utils"
)

type EventController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Attendance *services.AttendanceService
}

func NewEventController(db *gorm.DB, cfg *config.Config, attendance *services.AttendanceService) *EventController {
	return &EventController{DB: db, Cfg: cfg, Attendance: attendance}
}

func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	query := ec.DB.Preload("RelatedSkills").
		Where("date >= ? AND visibility = ?", time.Now(), "public")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var events []models.Event
	if err := query.Order("date ASC").Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(events)
}

func (ec *EventController) GetPopularEvents(c *fiber.Ctx) error {
	var events []models.Event
	err := ec.DB.Where("date >= ? AND visibility = ?", time.Now(), "public").
		Order("popularity DESC").Limit(10).Find(&events).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(events)
}

func (ec *EventController) GetEventByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	err = ec.DB.Preload("RelatedSkills").Preload("Participants").Preload("Ratings").
		First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Event not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	ec.DB.Model(&event).Update("views", gorm.Expr("views + 1"))

	return c.JSON(event)
}

func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		Category        string     `json:"category"`
		Date            time.Time  `json:"date"`
		EndDate         *time.Time `json:"end_date"`
		Location        string     `json:"location"`
		IsVirtual       *bool      `json:"is_virtual"`
		MeetingLink     string     `json:"meeting_link"`
		MaxParticipants int        `json:"max_participants"`
		RelatedSkillIDs []uint     `json:"related_skill_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" || input.Description == "" || input.Category == "" || input.Date.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title, description, category and date are required",
		})
	}

	var relatedSkills []models.Skill
	if len(input.RelatedSkillIDs) > 0 {
		if err := ec.DB.Where("id IN ?", input.RelatedSkillIDs).Find(&relatedSkills).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		if len(relatedSkills) != len(input.RelatedSkillIDs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "One or more skills not found",
			})
		}
	}

	event := models.Event{
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Date:            input.Date,
		EndDate:         input.EndDate,
		MeetingLink:     input.MeetingLink,
		MaxParticipants: input.MaxParticipants,
		OrganizerID:     userID,
		RelatedSkills:   relatedSkills,
	}
	if input.Location != "" {
		event.Location = input.Location
	}
	if input.IsVirtual != nil {
		event.IsVirtual = *input.IsVirtual
	} else {
		event.IsVirtual = true
	}

	if err := ec.DB.Create(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create event",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}
	if event.OrganizerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this event",
		})
	}

	var input struct {
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		Category        string     `json:"category"`
		Date            *time.Time `json:"date"`
		EndDate         *time.Time `json:"end_date"`
		Location        string     `json:"location"`
		IsVirtual       *bool      `json:"is_virtual"`
		MeetingLink     string     `json:"meeting_link"`
		MaxParticipants *int       `json:"max_participants"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Title != "" {
		event.Title = input.Title
	}
	if input.Description != "" {
		event.Description = input.Description
	}
	if input.Category != "" {
		event.Category = input.Category
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.EndDate != nil {
		event.EndDate = input.EndDate
	}
	if input.Location != "" {
		event.Location = input.Location
	}
	if input.IsVirtual != nil {
		event.IsVirtual = *input.IsVirtual
	}
	if input.MeetingLink != "" {
		event.MeetingLink = input.MeetingLink
	}
	if input.MaxParticipants != nil {
		event.MaxParticipants = *input.MaxParticipants
	}

	if err := ec.DB.Save(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update event",
		})
	}

	return c.JSON(event)
}

func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}
	if event.OrganizerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to delete this event",
		})
	}

	if err := ec.DB.Delete(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete event",
		})
	}

	return c.JSON(fiber.Map{"message": "Event removed"})
}

func (ec *EventController) RegisterForEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	if event.Date.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot register for past events",
		})
	}

	var registered int64
	ec.DB.Model(&models.Participant{}).
		Where("event_id = ? AND user_id = ?", event.ID, userID).
		Count(&registered)
	if registered > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Already registered for this event",
		})
	}

	if event.MaxParticipants > 0 {
		var total int64
		ec.DB.Model(&models.Participant{}).Where("event_id = ?", event.ID).Count(&total)
		if total >= int64(event.MaxParticipants) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Event is full",
			})
		}
	}

	participant := models.Participant{
		EventID:      event.ID,
		UserID:       userID,
		RegisteredAt: time.Now(),
	}
	if err := ec.DB.Create(&participant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not register for event",
		})
	}

	return c.JSON(fiber.Map{"message": "Successfully registered for event"})
}

func (ec *EventController) UnregisterFromEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	if event.Date.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot unregister from past events",
		})
	}

	err = ec.DB.Unscoped().
		Where("event_id = ? AND user_id = ?", event.ID, userID).
		Delete(&models.Participant{}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not unregister from event",
		})
	}

	return c.JSON(fiber.Map{"message": "Successfully unregistered from event"})
}

func (ec *EventController) RateEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	var registered int64
	ec.DB.Model(&models.Participant{}).
		Where("event_id = ? AND user_id = ?", event.ID, userID).
		Count(&registered)
	if registered == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only participants can rate an event",
		})
	}

	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Rating < 1 || input.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rating must be between 1 and 5",
		})
	}

	var existing models.EventRating
	if err := ec.DB.Where("event_id = ? AND user_id = ?", event.ID, userID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You have already rated this event",
		})
	}

	rating := models.EventRating{
		EventID: event.ID,
		UserID:  userID,
		Rating:  input.Rating,
		Comment: input.Comment,
		Date:    time.Now(),
	}
	if err := ec.DB.Create(&rating).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save rating",
		})
	}

	ec.DB.Model(&event).Update("popularity", gorm.Expr("popularity + 1"))

	return c.Status(fiber.StatusCreated).JSON(rating)
}

// GenerateAttendanceCode issues a fresh code for the calling
// participant.
func (ec *EventController) GenerateAttendanceCode(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	issued, err := ec.Attendance.GenerateCode(uint(id), userID)
	if err != nil {
		return attendanceError(c, err)
	}

	return c.JSON(fiber.Map{
		"code":       issued.Code,
		"expires_at": issued.ExpiresAt,
	})
}

func (ec *EventController) GetMyAttendanceCode(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	issued, err := ec.Attendance.GetMyCode(uint(id), userID)
	if err != nil {
		return attendanceError(c, err)
	}

	return c.JSON(fiber.Map{
		"code":       issued.Code,
		"expires_at": issued.ExpiresAt,
		"attended":   issued.Attended,
	})
}

func (ec *EventController) ValidateAttendanceCode(c *fiber.Ctx) error {
	_, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil || input.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Attendance code is required",
		})
	}

	verified, err := ec.Attendance.ValidateCode(uint(id), input.Code)
	if err != nil {
		return attendanceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Attendance verified",
		"user": fiber.Map{
			"id":   verified.UserID,
			"name": verified.Name,
		},
		"verified_at": verified.VerifiedAt,
	})
}

func (ec *EventController) GetAttendanceStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	stats, err := ec.Attendance.Stats(uint(id), userID)
	if err != nil {
		return attendanceError(c, err)
	}

	return c.JSON(stats)
}

// attendanceError maps the attendance service errors onto HTTP
// statuses.
func attendanceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEventNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNotRegistered),
		errors.Is(err, services.ErrCodeNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNoCodeIssued),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrAlreadyVerified):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotOrganizer):
		status = fiber.StatusForbidden
	}

	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
