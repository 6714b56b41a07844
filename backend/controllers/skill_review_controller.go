package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/services"
	"skillhub/backend/utils"
)

type SkillReviewController struct {
	DB            *gorm.DB
	Cfg           *config.Config
	Notifications *services.NotificationService
}

func NewSkillReviewController(db *gorm.DB, cfg *config.Config, ns *services.NotificationService) *SkillReviewController {
	return &SkillReviewController{DB: db, Cfg: cfg, Notifications: ns}
}

// AddReview creates a review; one review per user per skill. The
// skill creator gets a best-effort notification.
func (rc *SkillReviewController) AddReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	skillID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid skill ID")
	}

	var skill models.Skill
	if err := rc.DB.First(&skill, skillID).Error; err != nil {
		return utils.NotFound(c, "Skill not found")
	}

	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return utils.BadRequest(c, "Rating must be between 1 and 5")
	}

	var existing models.SkillReview
	if err := rc.DB.Where("skill_id = ? AND user_id = ?", skillID, userID).First(&existing).Error; err == nil {
		return utils.BadRequest(c, "You have already reviewed this skill")
	}

	review := models.SkillReview{
		SkillID: uint(skillID),
		UserID:  userID,
		Rating:  input.Rating,
		Comment: input.Comment,
		Date:    time.Now(),
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	if skill.CreatedByID != 0 && skill.CreatedByID != userID {
		rc.Notifications.Notify(services.NotificationInput{
			UserID:        skill.CreatedByID,
			Title:         "New Skill Review",
			Message:       fmt.Sprintf("Your skill %s received a %d-star review", skill.Name, input.Rating),
			Type:          models.NotificationSkillReview,
			ReferenceID:   skill.ID,
			ReferenceType: "Skill",
		})
	}

	return utils.Created(c, review)
}

func (rc *SkillReviewController) GetReviews(c *fiber.Ctx) error {
	skillID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid skill ID")
	}

	var reviews []models.SkillReview
	if err := rc.DB.Where("skill_id = ?", skillID).Order("date DESC").Find(&reviews).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	var average float64
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		average = float64(sum) / float64(len(reviews))
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"reviews": reviews,
		"average": average,
		"count":   len(reviews),
	})
}

func (rc *SkillReviewController) UpdateReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := c.ParamsInt("reviewId")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var review models.SkillReview
	if err := rc.DB.First(&review, reviewID).Error; err != nil {
		return utils.NotFound(c, "Review not found")
	}
	if review.UserID != userID {
		return utils.Forbidden(c, "Not authorized to update this review")
	}

	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Rating != 0 {
		if input.Rating < 1 || input.Rating > 5 {
			return utils.BadRequest(c, "Rating must be between 1 and 5")
		}
		review.Rating = input.Rating
	}
	if input.Comment != "" {
		review.Comment = input.Comment
	}

	if err := rc.DB.Save(&review).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, review)
}

func (rc *SkillReviewController) DeleteReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := c.ParamsInt("reviewId")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var review models.SkillReview
	if err := rc.DB.First(&review, reviewID).Error; err != nil {
		return utils.NotFound(c, "Review not found")
	}
	if review.UserID != userID {
		return utils.Forbidden(c, "Not authorized to delete this review")
	}

	if err := rc.DB.Delete(&review).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Review removed"})
}
