package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/services"
	"skillhub/backend/utils"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Progress: progress}
}

func (pc *ProgressController) GetUserProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var progress []models.Progress
	err = pc.DB.Preload("ResourcesCompleted").Preload("AssessmentScores").
		Where("user_id = ?", userID).
		Order("created_at DESC").Find(&progress).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(progress)
}

func (pc *ProgressController) GetProgressByID(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid progress ID",
		})
	}

	var progress models.Progress
	err = pc.DB.Preload("ResourcesCompleted").Preload("AssessmentScores").
		First(&progress, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Progress not found",
		})
	}
	if progress.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to view this progress",
		})
	}

	return c.JSON(progress)
}

func (pc *ProgressController) DeleteProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid progress ID",
		})
	}

	var progress models.Progress
	if err := pc.DB.First(&progress, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Progress not found",
		})
	}
	if progress.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to delete this progress",
		})
	}

	if err := pc.DB.Delete(&progress).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete progress",
		})
	}

	return c.JSON(fiber.Map{"message": "Progress removed"})
}

// MarkResourceCompleted runs the full recompute chain for the calling
// user and returns the refreshed progress and goal.
func (pc *ProgressController) MarkResourceCompleted(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}
	resourceID, err := c.ParamsInt("resourceId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	progress, goal, err := pc.Progress.MarkResourceCompleted(uint(skillID), uint(resourceID), userID)
	if err != nil {
		return progressError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Resource marked as completed",
		"progress": progress,
		"goal":     goal,
	})
}

func (pc *ProgressController) UnmarkResourceCompleted(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}
	resourceID, err := c.ParamsInt("resourceId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	progress, goal, err := pc.Progress.UnmarkResourceCompleted(uint(skillID), uint(resourceID), userID)
	if err != nil {
		return progressError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Resource unmarked",
		"progress": progress,
		"goal":     goal,
	})
}

func (pc *ProgressController) AddPracticeTime(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}

	var input struct {
		Minutes int `json:"minutes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	progress, err := pc.Progress.AddPracticeTime(uint(skillID), userID, input.Minutes)
	if err != nil {
		return progressError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Practice time recorded",
		"progress": progress,
	})
}

func (pc *ProgressController) SubmitAssessment(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}

	var input struct {
		QuizID string `json:"quiz_id"`
		Score  int    `json:"score"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	progress, err := pc.Progress.SubmitAssessment(uint(skillID), userID, input.QuizID, input.Score)
	if err != nil {
		return progressError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Assessment recorded",
		"progress": progress,
	})
}

func (pc *ProgressController) GetSkillProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}

	result, err := pc.Progress.GetSkillProgress(uint(skillID), userID)
	if err != nil {
		return progressError(c, err)
	}

	return c.JSON(result)
}

func progressError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrSkillNotFound),
		errors.Is(err, services.ErrResourceNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
