package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"skillhub/backend/models"
)

var (
	ErrSkillNotFound    = errors.New("skill not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrAlreadyCompleted = errors.New("resource already completed")
	ErrInvalidInput     = errors.New("invalid input")
)

// Newly auto-created goals get a month to complete by default; the
// manual creation path lets users pick their own target date.
const defaultGoalWindow = 30 * 24 * time.Hour

// ProgressService maintains the derived completion percentage per
// (user, skill) pair and propagates it into the learning-goal status
// machine.
//
// The mark/unmark sequence (append completion, recount, update
// Progress, update Goal, notify) is deliberately not wrapped in a
// transaction: concurrent completions by the same user on the same
// skill can recount against a stale state and the stored percentage
// catches up on the next write. The whole sequence lives in one
// method so a transaction wrapper is a local change if that gap ever
// needs closing.
type ProgressService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewProgressService(db *gorm.DB, notifications *NotificationService) *ProgressService {
	return &ProgressService{DB: db, Notifications: notifications}
}

// recomputePct derives the resource-completion percentage for a
// (user, skill) pair fresh from the store.
func (ps *ProgressService) recomputePct(skillID, userID uint) (float64, error) {
	var total int64
	if err := ps.DB.Model(&models.Resource{}).Where("skill_id = ?", skillID).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	var completed int64
	err := ps.DB.Model(&models.ResourceCompletion{}).
		Joins("JOIN resources ON resources.id = resource_completions.resource_id").
		Where("resources.skill_id = ? AND resource_completions.user_id = ?", skillID, userID).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	return math.Min(float64(completed)/float64(total)*100, 100), nil
}

// upsertProgress lazily creates the Progress record for the pair and
// sets the derived percentage.
func (ps *ProgressService) upsertProgress(skillID, userID uint, pct float64) (*models.Progress, error) {
	var progress models.Progress
	err := ps.DB.Where(models.Progress{UserID: userID, SkillID: skillID}).
		FirstOrCreate(&progress).Error
	if err != nil {
		return nil, err
	}

	progress.Progress = pct
	if err := ps.DB.Save(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// upsertGoal propagates the percentage into the learning goal and
// re-runs its status machine. A goal missing for the pair is created
// with the default window.
func (ps *ProgressService) upsertGoal(skillID, userID uint, pct float64) (*models.LearningGoal, error) {
	var goal models.LearningGoal
	err := ps.DB.Where(models.LearningGoal{UserID: userID, SkillID: skillID}).
		Attrs(models.LearningGoal{TargetDate: time.Now().Add(defaultGoalWindow)}).
		FirstOrCreate(&goal).Error
	if err != nil {
		return nil, err
	}

	goal.CurrentProgress = pct
	goal.UpdateStatus(time.Now())
	if err := ps.DB.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// MarkResourceCompleted records that the user finished a resource and
// runs the full recompute chain: completion entry, percentage,
// Progress record, learning goal, notifications.
func (ps *ProgressService) MarkResourceCompleted(skillID, resourceID, userID uint) (*models.Progress, *models.LearningGoal, error) {
	var skill models.Skill
	if err := ps.DB.First(&skill, skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSkillNotFound
		}
		return nil, nil, err
	}

	var resource models.Resource
	if err := ps.DB.Where("id = ? AND skill_id = ?", resourceID, skillID).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrResourceNotFound
		}
		return nil, nil, err
	}

	var existing int64
	err := ps.DB.Model(&models.ResourceCompletion{}).
		Where("resource_id = ? AND user_id = ?", resourceID, userID).
		Count(&existing).Error
	if err != nil {
		return nil, nil, err
	}
	if existing > 0 {
		return nil, nil, ErrAlreadyCompleted
	}

	now := time.Now()
	completion := models.ResourceCompletion{
		ResourceID:  resourceID,
		UserID:      userID,
		CompletedAt: now,
	}
	if err := ps.DB.Create(&completion).Error; err != nil {
		return nil, nil, err
	}

	pct, err := ps.recomputePct(skillID, userID)
	if err != nil {
		return nil, nil, err
	}

	progress, err := ps.upsertProgress(skillID, userID, pct)
	if err != nil {
		return nil, nil, err
	}

	entry := models.ProgressResource{
		ProgressID:  progress.ID,
		ResourceID:  resourceID,
		CompletedAt: now,
	}
	if err := ps.DB.Create(&entry).Error; err != nil {
		return nil, nil, err
	}

	goal, err := ps.upsertGoal(skillID, userID, pct)
	if err != nil {
		return nil, nil, err
	}

	ps.Notifications.Notify(NotificationInput{
		UserID:        userID,
		Title:         "Learning Progress",
		Message:       fmt.Sprintf("Your progress on %s is now %.0f%%", skill.Name, pct),
		Type:          models.NotificationSkill,
		ReferenceID:   skillID,
		ReferenceType: "Skill",
	})
	if skill.CreatedByID != 0 && skill.CreatedByID != userID {
		var user models.User
		actorName := "A learner"
		if err := ps.DB.First(&user, userID).Error; err == nil {
			actorName = user.Name
		}
		ps.Notifications.Notify(NotificationInput{
			UserID:        skill.CreatedByID,
			Title:         "Skill Activity",
			Message:       fmt.Sprintf("%s completed a resource for %s", actorName, skill.Name),
			Type:          models.NotificationSkill,
			ReferenceID:   skillID,
			ReferenceType: "Skill",
		})
	}

	return progress, goal, nil
}

// UnmarkResourceCompleted removes the user's completion entry and
// re-runs the same recompute chain. Unmarking a resource the user
// never completed is a silent no-op at the resource layer; the
// recompute still runs against whatever is stored. A goal that drops
// below 100 demotes back to in_progress, but its AchievedAt stays
// set.
func (ps *ProgressService) UnmarkResourceCompleted(skillID, resourceID, userID uint) (*models.Progress, *models.LearningGoal, error) {
	var resource models.Resource
	if err := ps.DB.Where("id = ? AND skill_id = ?", resourceID, skillID).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrResourceNotFound
		}
		return nil, nil, err
	}

	err := ps.DB.Unscoped().
		Where("resource_id = ? AND user_id = ?", resourceID, userID).
		Delete(&models.ResourceCompletion{}).Error
	if err != nil {
		return nil, nil, err
	}

	pct, err := ps.recomputePct(skillID, userID)
	if err != nil {
		return nil, nil, err
	}

	progress, err := ps.upsertProgress(skillID, userID, pct)
	if err != nil {
		return nil, nil, err
	}

	err = ps.DB.Unscoped().
		Where("progress_id = ? AND resource_id = ?", progress.ID, resourceID).
		Delete(&models.ProgressResource{}).Error
	if err != nil {
		return nil, nil, err
	}

	goal, err := ps.upsertGoal(skillID, userID, pct)
	if err != nil {
		return nil, nil, err
	}

	return progress, goal, nil
}

// AddPracticeTime logs practice minutes and bumps the stored
// percentage by up to 5 points per hour practiced. This is an
// additive path on top of the derived value and can drift it away
// from the resource-completion ratio; SkillProgress recomputes the
// ratio fresh for exactly that reason.
func (ps *ProgressService) AddPracticeTime(skillID, userID uint, minutes int) (*models.Progress, error) {
	if minutes <= 0 {
		return nil, ErrInvalidInput
	}

	var skill models.Skill
	if err := ps.DB.First(&skill, skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}

	var progress models.Progress
	err := ps.DB.Where(models.Progress{UserID: userID, SkillID: skillID}).
		FirstOrCreate(&progress).Error
	if err != nil {
		return nil, err
	}

	progress.PracticeMinutes += minutes
	progress.Progress = math.Min(progress.Progress+math.Min(5, float64(minutes/60)), 100)

	if err := ps.DB.Save(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// SubmitAssessment records a quiz score and bumps the stored
// percentage by up to 10 points, through the same additive path as
// practice time.
func (ps *ProgressService) SubmitAssessment(skillID, userID uint, quizID string, score int) (*models.Progress, error) {
	if score < 0 || score > 100 {
		return nil, ErrInvalidInput
	}

	var skill models.Skill
	if err := ps.DB.First(&skill, skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}

	var progress models.Progress
	err := ps.DB.Where(models.Progress{UserID: userID, SkillID: skillID}).
		FirstOrCreate(&progress).Error
	if err != nil {
		return nil, err
	}

	entry := models.AssessmentScore{
		ProgressID: progress.ID,
		QuizID:     quizID,
		Score:      score,
		Date:       time.Now(),
	}
	if err := ps.DB.Create(&entry).Error; err != nil {
		return nil, err
	}

	progress.Progress = math.Min(progress.Progress+math.Min(10, float64(score/10)), 100)

	if err := ps.DB.Save(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

type SkillProgress struct {
	SkillID              uint    `json:"skill_id"`
	CompletionPercentage int     `json:"completion_percentage"`
	CompletedResources   int     `json:"completed_resources"`
	TotalResources       int     `json:"total_resources"`
	PracticeTimeMinutes  int     `json:"practice_time_minutes"`
	AssessmentScore      float64 `json:"assessment_score"`
}

// GetSkillProgress is the source-of-truth read path: the
// resource-completion percentage is recomputed fresh rather than read
// from the stored Progress field, which the additive practice and
// assessment paths may have skewed.
func (ps *ProgressService) GetSkillProgress(skillID, userID uint) (*SkillProgress, error) {
	var skill models.Skill
	if err := ps.DB.First(&skill, skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}

	var total int64
	if err := ps.DB.Model(&models.Resource{}).Where("skill_id = ?", skillID).Count(&total).Error; err != nil {
		return nil, err
	}

	var completed int64
	err := ps.DB.Model(&models.ResourceCompletion{}).
		Joins("JOIN resources ON resources.id = resource_completions.resource_id").
		Where("resources.skill_id = ? AND resource_completions.user_id = ?", skillID, userID).
		Count(&completed).Error
	if err != nil {
		return nil, err
	}

	result := SkillProgress{
		SkillID:            skillID,
		CompletedResources: int(completed),
		TotalResources:     int(total),
	}
	if total > 0 {
		result.CompletionPercentage = int(math.Round(float64(completed) / float64(total) * 100))
	}

	var progress models.Progress
	err = ps.DB.Preload("AssessmentScores").
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		First(&progress).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		result.PracticeTimeMinutes = progress.PracticeMinutes
		if len(progress.AssessmentScores) > 0 {
			sum := 0
			for _, s := range progress.AssessmentScores {
				sum += s.Score
			}
			result.AssessmentScore = float64(sum) / float64(len(progress.AssessmentScores))
		}
	}

	return &result, nil
}
