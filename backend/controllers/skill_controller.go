package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/utils"
)

type SkillController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSkillController(db *gorm.DB, cfg *config.Config) *SkillController {
	return &SkillController{DB: db, Cfg: cfg}
}

func (sc *SkillController) GetSkills(c *fiber.Ctx) error {
	var skills []models.Skill
	if err := sc.DB.Order("name ASC").Find(&skills).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(skills)
}

func (sc *SkillController) GetSkillByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}

	var skill models.Skill
	if err := sc.DB.Preload("CreatedBy").First(&skill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Skill not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	creator := fiber.Map{}
	if skill.CreatedBy != nil {
		creator = fiber.Map{"id": skill.CreatedBy.ID, "name": skill.CreatedBy.Name}
	}

	return c.JSON(fiber.Map{
		"id":          skill.ID,
		"name":        skill.Name,
		"category":    skill.Category,
		"description": skill.Description,
		"created_by":  creator,
		"created_at":  skill.CreatedAt,
	})
}

func (sc *SkillController) CreateSkill(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Name == "" || input.Category == "" || input.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, category and description are required",
		})
	}

	// Case-insensitive duplicate check.
	var existing models.Skill
	if err := sc.DB.Where("LOWER(name) = ?", strings.ToLower(input.Name)).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Skill already exists",
		})
	}

	skill := models.Skill{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		CreatedByID: userID,
	}
	if err := sc.DB.Create(&skill).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create skill",
		})
	}

	// Keep the category catalog in step with the skills that exist.
	sc.DB.Where(models.SkillCategory{Name: input.Category}).
		FirstOrCreate(&models.SkillCategory{Name: input.Category})

	return c.Status(fiber.StatusCreated).JSON(skill)
}

func (sc *SkillController) UpdateSkill(c *fiber.Ctx) error {
	_, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID",
		})
	}

	var skill models.Skill
	if err := sc.DB.First(&skill, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Skill not found",
		})
	}

	var input struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Name != "" {
		skill.Name = input.Name
	}
	if input.Category != "" {
		skill.Category = input.Category
	}
	if input.Description != "" {
		skill.Description = input.Description
	}

	if err := sc.DB.Save(&skill).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update skill",
		})
	}

	return c.JSON(skill)
}

// GetCategories lists the category catalog. Categories referenced by
// skills that predate the catalog are folded in on the fly.
func (sc *SkillController) GetCategories(c *fiber.Ctx) error {
	var inUse []string
	err := sc.DB.Model(&models.Skill{}).Distinct("category").Pluck("category", &inUse).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	for _, name := range inUse {
		sc.DB.Where(models.SkillCategory{Name: name}).
			FirstOrCreate(&models.SkillCategory{Name: name})
	}

	var categories []models.SkillCategory
	if err := sc.DB.Order("name").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(categories)
}

// GetRecommendations suggests skills in categories the user is
// already learning, padded with the newest skills when there are
// fewer than five matches.
func (sc *SkillController) GetRecommendations(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var userSkillIDs []uint
	sc.DB.Model(&models.Progress{}).Where("user_id = ?", userID).Pluck("skill_id", &userSkillIDs)

	var recommendations []models.Skill
	if len(userSkillIDs) > 0 {
		var categories []string
		sc.DB.Model(&models.Skill{}).Where("id IN ?", userSkillIDs).
			Distinct("category").Pluck("category", &categories)

		sc.DB.Where("id NOT IN ? AND category IN ?", userSkillIDs, categories).
			Limit(10).Find(&recommendations)
	}

	if len(recommendations) < 5 {
		exclude := make([]uint, 0, len(userSkillIDs)+len(recommendations))
		exclude = append(exclude, userSkillIDs...)
		for _, r := range recommendations {
			exclude = append(exclude, r.ID)
		}

		var additional []models.Skill
		query := sc.DB.Order("created_at DESC").Limit(5 - len(recommendations))
		if len(exclude) > 0 {
			query = query.Where("id NOT IN ?", exclude)
		}
		query.Find(&additional)

		recommendations = append(recommendations, additional...)
	}

	return c.JSON(recommendations)
}
