package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skillhub/backend/config"
	"skillhub/backend/routes"
	"skillhub/backend/utils"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	// Named in-memory database with a shared cache so every pooled
	// connection sees the same tables.
	db, err = gorm.Open(sqlite.Open("file:ctrl?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	if err := utils.MigrateModels(db); err != nil {
		panic(err)
	}

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg, log.New(io.Discard, "", 0))
}

// doJSON issues a request against the test app, encoding body as JSON
// when it is non-nil and attaching token as the Authorization header.
func doJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// registerUser creates an account over the API and returns its JWT
// token and user ID.
func registerUser(t *testing.T, name string) (string, uint) {
	t.Helper()

	resp := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	require.NotEmpty(t, result["token"])
	user := result["user"].(map[string]interface{})
	return result["token"].(string), uint(user["id"].(float64))
}
