package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/utils"
)

type ResourceController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewResourceController(db *gorm.DB, cfg *config.Config) *ResourceController {
	return &ResourceController{DB: db, Cfg: cfg}
}

func (rc *ResourceController) GetResources(c *fiber.Ctx) error {
	query := rc.DB.Where("visibility = ?", "public")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if resourceType := c.Query("type"); resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []models.Resource
	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(resources)
}

func (rc *ResourceController) GetResourceByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	var resource models.Resource
	if err := rc.DB.Preload("Completions").First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resource not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// View counter; failures here are not worth failing the read.
	rc.DB.Model(&resource).Update("views", gorm.Expr("views + 1"))

	return c.JSON(resource)
}

func (rc *ResourceController) CreateResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Tags        string `json:"tags"`
		Visibility  string `json:"visibility"`
		SkillID     uint   `json:"skill_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" || input.Description == "" || input.Category == "" || input.SkillID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title, description, category and skill_id are required",
		})
	}

	var skill models.Skill
	if err := rc.DB.First(&skill, input.SkillID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Skill not found",
		})
	}

	resource := models.Resource{
		Title:       input.Title,
		Description: input.Description,
		Link:        input.Link,
		Category:    input.Category,
		Tags:        input.Tags,
		SkillID:     input.SkillID,
		AddedByID:   userID,
	}
	if input.Type != "" {
		resource.Type = input.Type
	}
	if input.Visibility != "" {
		resource.Visibility = input.Visibility
	}

	if err := rc.DB.Create(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create resource",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resource)
}

func (rc *ResourceController) UpdateResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resource not found",
		})
	}
	if resource.AddedByID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this resource",
		})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Tags        string `json:"tags"`
		Visibility  string `json:"visibility"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Title != "" {
		resource.Title = input.Title
	}
	if input.Description != "" {
		resource.Description = input.Description
	}
	if input.Link != "" {
		resource.Link = input.Link
	}
	if input.Type != "" {
		resource.Type = input.Type
	}
	if input.Category != "" {
		resource.Category = input.Category
	}
	if input.Tags != "" {
		resource.Tags = input.Tags
	}
	if input.Visibility != "" {
		resource.Visibility = input.Visibility
	}

	if err := rc.DB.Save(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update resource",
		})
	}

	return c.JSON(resource)
}

func (rc *ResourceController) DeleteResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resource not found",
		})
	}
	if resource.AddedByID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to delete this resource",
		})
	}

	if err := rc.DB.Delete(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete resource",
		})
	}

	return c.JSON(fiber.Map{"message": "Resource removed"})
}

func (rc *ResourceController) GetResourcesBySkill(c *fiber.Ctx) error {
	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}

	var resources []models.Resource
	err = rc.DB.Where("skill_id = ? AND visibility = ?", skillID, "public").
		Order("created_at DESC").Find(&resources).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(resources)
}

// AddResourceReview records a 1-5 rating for a resource and refreshes
// the resource's cached average. One review per user per resource.
func (rc *ResourceController) AddResourceReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
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

	var resource models.Resource
	if err := rc.DB.First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resource not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var existing int64
	rc.DB.Model(&models.ResourceReview{}).
		Where("resource_id = ? AND user_id = ?", resource.ID, userID).
		Count(&existing)
	if existing > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You have already reviewed this resource",
		})
	}

	review := models.ResourceReview{
		ResourceID: resource.ID,
		UserID:     userID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		Date:       time.Now(),
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create review",
		})
	}

	var average float64
	rc.DB.Model(&models.ResourceReview{}).
		Where("resource_id = ?", resource.ID).
		Select("AVG(rating)").Scan(&average)
	rc.DB.Model(&resource).Update("rating", average)

	return c.Status(fiber.StatusCreated).JSON(review)
}

func (rc *ResourceController) GetResourceReviews(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	var reviews []models.ResourceReview
	err = rc.DB.Where("resource_id = ?", id).
		Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var average float64
	if len(reviews) > 0 {
		rc.DB.Model(&models.ResourceReview{}).
			Where("resource_id = ?", id).
			Select("AVG(rating)").Scan(&average)
	}

	return c.JSON(fiber.Map{
		"reviews": reviews,
		"average": average,
		"count":   len(reviews),
	})
}
