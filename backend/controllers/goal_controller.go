package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/utils"
)

type GoalController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGoalController(db *gorm.DB, cfg *config.Config) *GoalController {
	return &GoalController{DB: db, Cfg: cfg}
}

// GetGoals lists the caller's goals, re-evaluating each against the
// wall clock so an overdue goal reads as expired even before the
// daily sweep touches it.
func (gc *GoalController) GetGoals(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var goals []models.LearningGoal
	if err := gc.DB.Where("user_id = ?", userID).Order("target_date ASC").Find(&goals).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	now := time.Now()
	for i := range goals {
		before := goals[i].Status
		goals[i].UpdateStatus(now)
		if goals[i].Status != before {
			gc.DB.Save(&goals[i])
		}
	}

	return utils.Success(c, fiber.StatusOK, goals)
}

// CreateGoal is the manual creation path; the progress engine creates
// goals automatically on first resource completion.
func (gc *GoalController) CreateGoal(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		SkillID    uint      `json:"skill_id"`
		TargetDate time.Time `json:"target_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.SkillID == 0 || input.TargetDate.IsZero() {
		return utils.BadRequest(c, "skill_id and target_date are required")
	}

	var skill models.Skill
	if err := gc.DB.First(&skill, input.SkillID).Error; err != nil {
		return utils.NotFound(c, "Skill not found")
	}

	var existing models.LearningGoal
	if err := gc.DB.Where("user_id = ? AND skill_id = ?", userID, input.SkillID).First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Goal for this skill already exists")
	}

	goal := models.LearningGoal{
		UserID:     userID,
		SkillID:    input.SkillID,
		TargetDate: input.TargetDate,
	}
	if err := gc.DB.Create(&goal).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Created(c, goal)
}

func (gc *GoalController) UpdateGoal(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid goal ID")
	}

	var goal models.LearningGoal
	if err := gc.DB.First(&goal, id).Error; err != nil {
		return utils.NotFound(c, "Goal not found")
	}
	if goal.UserID != userID {
		return utils.Forbidden(c, "Not authorized to update this goal")
	}

	var input struct {
		TargetDate *time.Time `json:"target_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.TargetDate != nil {
		goal.TargetDate = *input.TargetDate
	}

	if err := gc.DB.Save(&goal).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, goal)
}

func (gc *GoalController) DeleteGoal(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid goal ID")
	}

	var goal models.LearningGoal
	if err := gc.DB.First(&goal, id).Error; err != nil {
		return utils.NotFound(c, "Goal not found")
	}
	if goal.UserID != userID {
		return utils.Forbidden(c, "Not authorized to delete this goal")
	}

	if err := gc.DB.Delete(&goal).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Goal removed"})
}
