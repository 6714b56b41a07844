package controllers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/models"
	"skillhub/backend/utils"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile with progress summaries
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var progress []models.Progress
	uc.DB.Where("user_id = ?", userID).Order("updated_at DESC").Limit(5).Find(&progress)

	var goals []models.LearningGoal
	uc.DB.Where("user_id = ? AND status = ?", userID, models.GoalInProgress).Find(&goals)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"bio":             user.Bio,
		"profile_picture": user.ProfilePicture,
		"role":            user.Role,
		"created_at":      user.CreatedAt,
		"recent_progress": progress,
		"active_goals":    goals,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the authenticated user's profile data
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Bio            string `json:"bio"`
		ProfilePicture string `json:"profile_picture"`
		OldPassword    string `json:"old_password"`
		NewPassword    string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.ProfilePicture != "" {
		user.ProfilePicture = input.ProfilePicture
	}

	if input.Email != "" && input.Email != user.Email {
		var existing models.User
		if err := uc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil && existing.ID != user.ID {
			return utils.BadRequest(c, "Email already taken")
		}
		user.Email = input.Email
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.BadRequest(c, "Old password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"bio":             user.Bio,
		"profile_picture": user.ProfilePicture,
	})
}

// GetUserByID returns another user's public profile.
func (uc *UserController) GetUserByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return utils.Success(c, fiber.StatusOK, user.Public())
}
