package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillhub/backend/models"
)

func TestMarkResourceCompletedRecomputes(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 4)

	progress, goal, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, progress.Progress)
	assert.Equal(t, 25.0, goal.CurrentProgress)
	assert.Equal(t, models.GoalInProgress, goal.Status)

	progress, _, err = ps.MarkResourceCompleted(skill.ID, resources[1].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.Progress)

	var entries []models.ProgressResource
	require.NoError(t, db.Where("progress_id = ?", progress.ID).Find(&entries).Error)
	assert.Len(t, entries, 2)
}

func TestMarkResourceCompletedPreconditions(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 1)

	_, _, err := ps.MarkResourceCompleted(skill.ID+99, resources[0].ID, learner.ID)
	assert.ErrorIs(t, err, ErrSkillNotFound)

	_, _, err = ps.MarkResourceCompleted(skill.ID, resources[0].ID+99, learner.ID)
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, _, err = ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	_, _, err = ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestGoalCompletesAtFullProgress(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 2)

	_, goal, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalInProgress, goal.Status)
	assert.Nil(t, goal.AchievedAt)

	_, goal, err = ps.MarkResourceCompleted(skill.ID, resources[1].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, goal.CurrentProgress)
	assert.Equal(t, models.GoalCompleted, goal.Status)
	assert.NotNil(t, goal.AchievedAt)
}

func TestUnmarkRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 4)

	_, _, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	progress, _, err := ps.MarkResourceCompleted(skill.ID, resources[1].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.Progress)

	progress, _, err = ps.UnmarkResourceCompleted(skill.ID, resources[1].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, progress.Progress)

	progress, _, err = ps.MarkResourceCompleted(skill.ID, resources[1].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.Progress)
}

func TestUnmarkPreservesAchievedAt(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 1)

	_, goal, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	require.Equal(t, models.GoalCompleted, goal.Status)
	require.NotNil(t, goal.AchievedAt)
	achieved := *goal.AchievedAt

	_, goal, err = ps.UnmarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalInProgress, goal.Status)
	require.NotNil(t, goal.AchievedAt)
	assert.Equal(t, achieved.Unix(), goal.AchievedAt.Unix())
}

func TestUnmarkNeverCompletedIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 2)

	progress, _, err := ps.UnmarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, progress.Progress)
}

func TestMarkNotifiesActorAndCreator(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 2)

	_, _, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, learner.ID)
	require.NoError(t, err)

	var toLearner, toCreator int64
	db.Model(&models.Notification{}).Where("user_id = ?", learner.ID).Count(&toLearner)
	db.Model(&models.Notification{}).Where("user_id = ?", creator.ID).Count(&toCreator)
	assert.Equal(t, int64(1), toLearner)
	assert.Equal(t, int64(1), toCreator)
}

func TestMarkBySkillCreatorNotifiesOnce(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 1)

	_, _, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, creator.ID)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", creator.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddPracticeTime(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)

	_, err := ps.AddPracticeTime(skill.ID, learner.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ps.AddPracticeTime(skill.ID, learner.ID, -5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	progress, err := ps.AddPracticeTime(skill.ID, learner.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, progress.PracticeMinutes)
	assert.Equal(t, 1.0, progress.Progress) // floor(90/60) = 1

	// Ten hours caps the increment at 5.
	progress, err = ps.AddPracticeTime(skill.ID, learner.ID, 600)
	require.NoError(t, err)
	assert.Equal(t, 690, progress.PracticeMinutes)
	assert.Equal(t, 6.0, progress.Progress)
}

func TestSubmitAssessment(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)

	_, err := ps.SubmitAssessment(skill.ID, learner.ID, "quiz-1", 101)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ps.SubmitAssessment(skill.ID, learner.ID, "quiz-1", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	progress, err := ps.SubmitAssessment(skill.ID, learner.ID, "quiz-1", 85)
	require.NoError(t, err)
	assert.Equal(t, 8.0, progress.Progress) // floor(85/10) = 8

	progress, err = ps.SubmitAssessment(skill.ID, learner.ID, "quiz-2", 100)
	require.NoError(t, err)
	assert.Equal(t, 18.0, progress.Progress) // capped at +10

	var scores []models.AssessmentScore
	require.NoError(t, db.Where("progress_id = ?", progress.ID).Find(&scores).Error)
	assert.Len(t, scores, 2)
}

func TestGetSkillProgressRecomputesFresh(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 5)

	for _, r := range resources[:3] {
		_, _, err := ps.MarkResourceCompleted(skill.ID, r.ID, learner.ID)
		require.NoError(t, err)
	}

	// Skew the stored field through the additive paths; the read path
	// must still report the resource-based ratio.
	_, err := ps.AddPracticeTime(skill.ID, learner.ID, 120)
	require.NoError(t, err)
	_, err = ps.SubmitAssessment(skill.ID, learner.ID, "quiz-1", 90)
	require.NoError(t, err)

	result, err := ps.GetSkillProgress(skill.ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, result.CompletionPercentage)
	assert.Equal(t, 3, result.CompletedResources)
	assert.Equal(t, 5, result.TotalResources)
	assert.Equal(t, 120, result.PracticeTimeMinutes)
	assert.Equal(t, 90.0, result.AssessmentScore)
}

func TestGetSkillProgressNoResources(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	learner := createTestUser(t, db, "learner")
	skill := createTestSkill(t, db, "Go", creator.ID)

	result, err := ps.GetSkillProgress(skill.ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CompletionPercentage)
	assert.Equal(t, 0, result.TotalResources)

	_, err = ps.GetSkillProgress(skill.ID+99, learner.ID)
	assert.ErrorIs(t, err, ErrSkillNotFound)
}

func TestDistinctUsersCompleteSameResource(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProgressService(db, NewNotificationService(db, testLogger()))

	creator := createTestUser(t, db, "creator")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	skill := createTestSkill(t, db, "Go", creator.ID)
	resources := createTestResources(t, db, skill.ID, creator.ID, 2)

	_, _, err := ps.MarkResourceCompleted(skill.ID, resources[0].ID, alice.ID)
	require.NoError(t, err)
	_, _, err = ps.MarkResourceCompleted(skill.ID, resources[0].ID, bob.ID)
	require.NoError(t, err)

	var completions int64
	db.Model(&models.ResourceCompletion{}).Where("resource_id = ?", resources[0].ID).Count(&completions)
	assert.Equal(t, int64(2), completions)

	aliceProgress, err := ps.GetSkillProgress(skill.ID, alice.ID)
	require.NoError(t, err)
	bobProgress, err := ps.GetSkillProgress(skill.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, aliceProgress.CompletionPercentage)
	assert.Equal(t, 50, bobProgress.CompletionPercentage)
}
