package controllers_test

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillhub/backend/models"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// createEvent makes an event over the API and returns its ID.
func createEvent(t *testing.T, token, title string) uint {
	t.Helper()

	resp := doJSON(t, "POST", "/api/events/", token, map[string]interface{}{
		"title":       title,
		"description": "test event",
		"category":    "Workshop",
		"date":        time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)
	return uint(result["ID"].(float64))
}

func TestEventRegistration(t *testing.T) {
	organizer, _ := registerUser(t, "evorganizer")
	attendee, _ := registerUser(t, "evattendee")
	eventID := createEvent(t, organizer, "Registration Event")

	resp := doJSON(t, "POST", fmt.Sprintf("/api/events/%d/register", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Registering twice is rejected.
	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/register", eventID), attendee, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttendanceCodeFlow(t *testing.T) {
	organizer, _ := registerUser(t, "codeorganizer")
	attendee, attendeeID := registerUser(t, "codeattendee")
	eventID := createEvent(t, organizer, "Code Flow Event")

	resp := doJSON(t, "POST", fmt.Sprintf("/api/events/%d/register", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Issue a code.
	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/generate-code", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeBody(t, resp)
	firstCode := result["code"].(string)
	assert.Regexp(t, codePattern, firstCode)
	assert.NotEmpty(t, result["expires_at"])

	// The code is retrievable and not yet used.
	resp = doJSON(t, "GET", fmt.Sprintf("/api/events/%d/my-code", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result = decodeBody(t, resp)
	assert.Equal(t, firstCode, result["code"])
	assert.Equal(t, false, result["attended"])

	// Regenerating replaces the code and orphans the old one.
	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/generate-code", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	secondCode := decodeBody(t, resp)["code"].(string)
	assert.NotEqual(t, firstCode, secondCode)

	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/validate-code", eventID), organizer, map[string]string{
		"code": firstCode,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// The current code validates exactly once.
	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/validate-code", eventID), organizer, map[string]string{
		"code": secondCode,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result = decodeBody(t, resp)
	verifiedUser := result["user"].(map[string]interface{})
	assert.Equal(t, float64(attendeeID), verifiedUser["id"])

	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/validate-code", eventID), organizer, map[string]string{
		"code": secondCode,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateCodeRequiresRegistration(t *testing.T) {
	organizer, _ := registerUser(t, "reqorganizer")
	outsider, _ := registerUser(t, "reqoutsider")
	eventID := createEvent(t, organizer, "Closed Event")

	resp := doJSON(t, "POST", fmt.Sprintf("/api/events/%d/generate-code", eventID), outsider, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestValidateExpiredCodeOverHTTP(t *testing.T) {
	organizer, _ := registerUser(t, "exporganizer")
	attendee, attendeeID := registerUser(t, "expattendee")
	eventID := createEvent(t, organizer, "Expiry Event")

	resp := doJSON(t, "POST", fmt.Sprintf("/api/events/%d/register", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/generate-code", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	code := decodeBody(t, resp)["code"].(string)

	// Push the expiry into the past.
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Participant{}).
		Where("event_id = ? AND user_id = ?", eventID, attendeeID).
		Update("code_expires_at", expired).Error)

	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/validate-code", eventID), organizer, map[string]string{
		"code": code,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttendanceStatsEndpoint(t *testing.T) {
	organizer, _ := registerUser(t, "statorganizer")
	attendee, _ := registerUser(t, "statattendee")
	eventID := createEvent(t, organizer, "Stats Event")

	resp := doJSON(t, "POST", fmt.Sprintf("/api/events/%d/register", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/generate-code", eventID), attendee, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	code := decodeBody(t, resp)["code"].(string)

	resp = doJSON(t, "POST", fmt.Sprintf("/api/events/%d/validate-code", eventID), organizer, map[string]string{
		"code": code,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Only the organizer may read the stats.
	resp = doJSON(t, "GET", fmt.Sprintf("/api/events/%d/attendance-stats", eventID), attendee, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, "GET", fmt.Sprintf("/api/events/%d/attendance-stats", eventID), organizer, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, float64(1), result["total"])
	assert.Equal(t, float64(1), result["attended_count"])
	assert.Equal(t, float64(100), result["rate"])
}
