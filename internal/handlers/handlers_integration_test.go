package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailydiet/internal/database"
	"dailydiet/internal/handlers"
	"dailydiet/internal/middleware"
	"dailydiet/internal/models"
	"dailydiet/internal/repositories"
	"dailydiet/internal/services"
	"dailydiet/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	avatarDir string
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	avatarDir := t.TempDir()
	avatars, err := storage.NewLocalStore(avatarDir)
	require.NoError(t, err)

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	dietRepo := repositories.NewGORMDietRepository(db)

	// Initialize Services
	sessions := services.NewSessionService(userRepo)
	userService := services.NewUserService(userRepo, services.NewBcryptHasher(bcrypt.MinCost), sessions, avatars)
	dietService := services.NewDietService(dietRepo, nil, nil)
	metricsService := services.NewMetricsService(dietRepo, nil)

	// Initialize Handlers
	app := fiber.New()
	handlers.NewUserHandler(userService, sessions, 7*24*time.Hour).RegisterRoutes(app)
	handlers.NewDietHandler(dietService, metricsService, sessions).RegisterRoutes(app)

	return &testEnv{app: app, db: db, avatarDir: avatarDir}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (e *testEnv) do(t *testing.T, method, path string, body any, session string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session})
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

// register creates a user and returns its id and session token.
func (e *testEnv) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/users", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	}, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "userId: "))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	return strings.TrimPrefix(string(body), "userId: "), cookie.Value
}

func (e *testEnv) createDiet(t *testing.T, session string, body map[string]any) models.Diet {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/diet", body, session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		Diet models.Diet `json:"diet"`
	}
	decode(t, resp, &out)
	return out.Diet
}

func dietBody(name string, onDiet bool, date string) map[string]any {
	return map[string]any{
		"name":        name,
		"description": name + " description",
		"isOnDiet":    onDiet,
		"date":        date,
	}
}

func TestRegister(t *testing.T) {
	env := setupApp(t)

	userID, session := env.register(t, "John Doe", "johndoe@gmail.com")
	_, err := uuid.Parse(userID)
	assert.NoError(t, err)
	_, err = uuid.Parse(session)
	assert.NoError(t, err)

	// Test Duplicate Registration (email)
	resp := env.do(t, http.MethodPost, "/users", map[string]string{
		"name":     "Someone Else",
		"email":    "johndoe@gmail.com",
		"password": "password123",
	}, "")
	var dup map[string]any
	decode(t, resp, &dup)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", dup["message"])

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "johndoe@gmail.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Test validation failure
	resp = env.do(t, http.MethodPost, "/users", map[string]string{"name": "X", "email": "nope"}, "")
	var invalid struct {
		Message string                `json:"message"`
		Errors  []handlers.FieldError `json:"errors"`
	}
	decode(t, resp, &invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", invalid.Message)
	fields := make([]string, 0, len(invalid.Errors))
	for _, e := range invalid.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)
}

func TestRegisterKeepsPresentedSession(t *testing.T) {
	env := setupApp(t)
	presented := uuid.New().String()

	resp := env.do(t, http.MethodPost, "/users", map[string]string{
		"name":     "Jane",
		"email":    "jane@example.com",
		"password": "password123",
	}, presented)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))

	resp = env.do(t, http.MethodGet, "/users", nil, presented)
	var out struct {
		User map[string]any `json:"user"`
	}
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jane@example.com", out.User["email"])
}

func TestLogin(t *testing.T) {
	env := setupApp(t)
	_, session := env.register(t, "John Doe", "johndoe@gmail.com")

	// Test Login
	resp := env.do(t, http.MethodPost, "/users/login", map[string]string{
		"email":    "johndoe@gmail.com",
		"password": "password123",
	}, "")
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful", loginResp["message"])
	assert.Equal(t, session, loginResp["sessionId"])

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Equal(t, session, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)

	// Test wrong password
	resp = env.do(t, http.MethodPost, "/users/login", map[string]string{
		"email":    "johndoe@gmail.com",
		"password": "wrongpassword",
	}, "")
	var bad map[string]string
	decode(t, resp, &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", bad["message"])
	assert.Nil(t, sessionCookie(resp))

	// Test unknown email
	resp = env.do(t, http.MethodPost, "/users/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	}, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := setupApp(t)
	env.register(t, "John Doe", "johndoe@gmail.com")

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodPut, "/users/" + uuid.New().String()},
		{http.MethodPost, "/diet"},
		{http.MethodGet, "/diet"},
		{http.MethodGet, "/diet/metrics"},
		{http.MethodGet, "/diet/" + uuid.New().String()},
		{http.MethodPut, "/diet/" + uuid.New().String()},
		{http.MethodDelete, "/diet/" + uuid.New().String()},
	}
	for _, route := range routes {
		// No cookie
		resp := env.do(t, route.method, route.path, nil, "")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s without cookie", route.method, route.path)

		// Cookie for a session nobody holds
		resp = env.do(t, route.method, route.path, nil, uuid.New().String())
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with unknown cookie", route.method, route.path)
	}
}

func TestDietRoundTrip(t *testing.T) {
	env := setupApp(t)
	userID, session := env.register(t, "John Doe", "johndoe@gmail.com")

	created := env.createDiet(t, session, dietBody("Salad", true, "2024-10-19T12:30:00Z"))
	assert.Equal(t, userID, created.UserID)

	resp := env.do(t, http.MethodGet, "/diet", nil, session)
	var list struct {
		Diet []models.Diet `json:"diet"`
	}
	decode(t, resp, &list)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Diet, 1)

	got := list.Diet[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Salad", got.Name)
	assert.Equal(t, "Salad description", got.Description)
	assert.True(t, got.IsOnDiet)
	assert.True(t, time.Date(2024, 10, 19, 12, 30, 0, 0, time.UTC).Equal(got.Date), "date %s", got.Date)

	// Fetch by id
	resp = env.do(t, http.MethodGet, "/diet/"+created.ID, nil, session)
	var one struct {
		Diet models.Diet `json:"diet"`
	}
	decode(t, resp, &one)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, one.Diet.ID)

	// Update every mutable field
	resp = env.do(t, http.MethodPut, "/diet/"+created.ID, dietBody("Burger", false, "2024-10-20 20:00:00"), session)
	decode(t, resp, &one)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Burger", one.Diet.Name)
	assert.False(t, one.Diet.IsOnDiet)
	assert.True(t, time.Date(2024, 10, 20, 20, 0, 0, 0, time.UTC).Equal(one.Diet.Date))

	resp = env.do(t, http.MethodGet, "/diet/"+created.ID, nil, session)
	decode(t, resp, &one)
	assert.Equal(t, "Burger", one.Diet.Name)
	assert.Equal(t, "Burger description", one.Diet.Description)
	assert.False(t, one.Diet.IsOnDiet)
}

func TestDietDateCoercion(t *testing.T) {
	env := setupApp(t)
	_, session := env.register(t, "John Doe", "johndoe@gmail.com")

	// Epoch milliseconds
	millis := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli()
	body := dietBody("Eggs", true, "")
	body["date"] = millis
	created := env.createDiet(t, session, body)
	assert.Equal(t, millis, created.Date.UnixMilli())

	// A numeric string is read as a date layout, not as milliseconds
	created = env.createDiet(t, session, dietBody("Eggs", true, "2024"))
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(created.Date), "date %s", created.Date)

	// Unparseable date
	resp := env.do(t, http.MethodPost, "/diet", dietBody("Eggs", true, "yesterday"), session)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing isOnDiet
	resp = env.do(t, http.MethodPost, "/diet", map[string]any{
		"name":        "Eggs",
		"description": "Scrambled",
		"date":        "2024-01-02",
	}, session)
	var invalid struct {
		Errors []handlers.FieldError `json:"errors"`
	}
	decode(t, resp, &invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, invalid.Errors, 1)
	assert.Equal(t, "isOnDiet", invalid.Errors[0].Field)

	// Malformed id
	resp = env.do(t, http.MethodGet, "/diet/not-a-uuid", nil, session)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDietOwnershipIsolation(t *testing.T) {
	env := setupApp(t)
	_, sessionA := env.register(t, "Alice", "alice@example.com")
	_, sessionB := env.register(t, "Bob", "bob@example.com")

	diet := env.createDiet(t, sessionA, dietBody("Soup", true, "2024-10-19T12:30:00Z"))

	resp := env.do(t, http.MethodGet, "/diet/"+diet.ID, nil, sessionB)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/diet/"+diet.ID, dietBody("Stolen", false, "2024-10-19"), sessionB)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/diet/"+diet.ID, nil, sessionB)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/diet", nil, sessionB)
	var list struct {
		Diet []models.Diet `json:"diet"`
	}
	decode(t, resp, &list)
	assert.Empty(t, list.Diet)

	// Still intact for the owner
	resp = env.do(t, http.MethodGet, "/diet/"+diet.ID, nil, sessionA)
	var one struct {
		Diet models.Diet `json:"diet"`
	}
	decode(t, resp, &one)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Soup", one.Diet.Name)
}

func TestDietDelete(t *testing.T) {
	env := setupApp(t)
	_, session := env.register(t, "John Doe", "johndoe@gmail.com")
	diet := env.createDiet(t, session, dietBody("Toast", false, "2024-10-19"))

	resp := env.do(t, http.MethodDelete, "/diet/"+diet.ID, nil, session)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/diet/"+diet.ID, nil, session)
	var missing map[string]string
	decode(t, resp, &missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "The diet does not exist", missing["message"])

	// Malformed id on delete
	resp = env.do(t, http.MethodDelete, "/diet/not-a-uuid", nil, session)
	decode(t, resp, &missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "The diet does not exist", missing["message"])
}

func TestDietMetrics(t *testing.T) {
	env := setupApp(t)
	_, session := env.register(t, "John Doe", "johndoe@gmail.com")

	// Empty ledger
	resp := env.do(t, http.MethodGet, "/diet/metrics", nil, session)
	var metrics models.DietMetrics
	decode(t, resp, &metrics)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.DietMetrics{}, metrics)

	env.createDiet(t, session, dietBody("Oats", true, "2024-10-16T08:00:00Z"))
	env.createDiet(t, session, dietBody("Pizza", false, "2024-10-17T20:00:00Z"))
	env.createDiet(t, session, dietBody("Salad", true, "2024-10-18T13:00:00Z"))
	env.createDiet(t, session, dietBody("Fruit", true, "2024-10-19T10:00:00Z"))

	resp = env.do(t, http.MethodGet, "/diet/metrics", nil, session)
	decode(t, resp, &metrics)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.DietMetrics{
		TotalDiets:         4,
		TotalDietsOnDiet:   3,
		TotalDietsOffDiet:  1,
		BestOnDietSequence: 2,
	}, metrics)
}

func TestUpdateUser(t *testing.T) {
	env := setupApp(t)
	userID, session := env.register(t, "John Doe", "johndoe@gmail.com")
	otherID, _ := env.register(t, "Jane Doe", "jane@example.com")

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	resp := env.do(t, http.MethodPut, "/users/"+userID, map[string]string{
		"name":   "Johnny",
		"avatar": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, session)
	var out struct {
		User models.User `json:"user"`
	}
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Johnny", out.User.Name)
	assert.Equal(t, "johndoe@gmail.com", out.User.Email)
	require.NotNil(t, out.User.Avatar)
	assert.True(t, strings.HasPrefix(*out.User.Avatar, "avatars/"+userID+"/"))

	stored, err := os.ReadFile(filepath.Join(env.avatarDir, filepath.FromSlash(*out.User.Avatar)))
	require.NoError(t, err)
	assert.Equal(t, png, stored)

	// Email already taken
	resp = env.do(t, http.MethodPut, "/users/"+userID, map[string]string{"email": "jane@example.com"}, session)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Someone else's profile
	resp = env.do(t, http.MethodPut, "/users/"+otherID, map[string]string{"name": "Hijack"}, session)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Not an image
	resp = env.do(t, http.MethodPut, "/users/"+userID, map[string]string{
		"avatar": base64.StdEncoding.EncodeToString([]byte("plain text")),
	}, session)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Profile reflects the update
	resp = env.do(t, http.MethodGet, "/users", nil, session)
	decode(t, resp, &out)
	assert.Equal(t, "Johnny", out.User.Name)
}
