package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"task-manager/internal/auth"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/service"
)

func newTestHandler(t *testing.T) (*Handler, *auth.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	require.NoError(t, userRepo.Init(context.Background()))
	require.NoError(t, taskRepo.Init(context.Background()))

	issuer := auth.NewTokenIssuer([]byte("test-secret"), "task-manager-api", time.Hour, 2*time.Hour)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	handler := NewHandler(
		service.NewUserService(userRepo, 4),
		service.NewTaskService(taskRepo),
		issuer,
		logger,
	)
	return handler, issuer
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	handler, issuer := newTestHandler(t)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router, issuer
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func registerUser(t *testing.T, router *gin.Engine, email string) (accessToken, refreshToken string) {
	t.Helper()
	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":           email,
		"password":        "Abcd1234!",
		"confirmPassword": "Abcd1234!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register %s: %s", email, rec.Body.String())
	data := body["data"].(map[string]any)
	return data["accessToken"].(string), data["refreshToken"].(string)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":           "not-an-email",
		"password":        "weak",
		"confirmPassword": "other",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["errors"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	registerUser(t, router, "a@x.com")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":           "A@X.com",
		"password":        "Abcd1234!",
		"confirmPassword": "Abcd1234!",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginAndMe(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "a@x.com")

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@x.com",
		"password": "Abcd1234!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	access := body["data"].(map[string]any)["accessToken"].(string)

	rec, body = doJSON(t, router, http.MethodGet, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	require.Equal(t, "a@x.com", user["email"])

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@x.com",
		"password": "WrongPass1!",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := gin.New()
	handler.RegisterRoutes(router)
	router.GET("/whoami", handler.optionalAuth(), func(c *gin.Context) {
		if user, ok := currentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"email": user.Email})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": nil})
	})

	access, _ := registerUser(t, router, "a@x.com")

	// a valid token resolves an identity
	rec, body := doJSON(t, router, http.MethodGet, "/whoami", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a@x.com", body["email"])

	// no token and a garbage token both pass through anonymously
	rec, body = doJSON(t, router, http.MethodGet, "/whoami", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["email"])

	rec, body = doJSON(t, router, http.MethodGet, "/whoami", "not.a.token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["email"])
}

func TestMeRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenTypeEnforcement(t *testing.T) {
	router, _ := newTestRouter(t)
	access, refresh := registerUser(t, router, "a@x.com")

	// refresh token at the refresh endpoint mints a new pair
	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/refresh", refresh, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	require.NotEmpty(t, data["accessToken"])
	require.NotEmpty(t, data["refreshToken"])

	// access token at the refresh endpoint is rejected
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/refresh", access, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// refresh token never authorizes an ordinary endpoint
	rec, _ = doJSON(t, router, http.MethodGet, "/api/tasks", refresh, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaleTokenAfterAccountDeletion(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "gone@x.com")

	rec, _ := doJSON(t, router, http.MethodDelete, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/tasks", access, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "a@x.com")

	rec, _ := doJSON(t, router, http.MethodPut, "/api/auth/change-password", access, gin.H{
		"currentPassword":    "WrongPass1!",
		"newPassword":        "Newpass1!",
		"confirmNewPassword": "Newpass1!",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPut, "/api/auth/change-password", access, gin.H{
		"currentPassword":    "Abcd1234!",
		"newPassword":        "Newpass1!",
		"confirmNewPassword": "Newpass1!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@x.com",
		"password": "Newpass1!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "a@x.com")

	// create with defaults
	rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", access, gin.H{
		"title":    "Buy milk",
		"priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := body["data"].(map[string]any)["task"].(map[string]any)
	require.Equal(t, "pending", task["status"])
	require.Equal(t, "high", task["priority"])
	taskID := int64(task["id"].(float64))

	// filtered listing contains exactly that task
	rec, body = doJSON(t, router, http.MethodGet, "/api/tasks?priority=high&status=pending", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	require.Equal(t, float64(1), data["count"])

	// partial update
	rec, body = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/tasks/%d", taskID), access, gin.H{
		"description": "two liters",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	task = body["data"].(map[string]any)["task"].(map[string]any)
	require.Equal(t, "two liters", task["description"])
	require.Equal(t, "Buy milk", task["title"])

	// status-only patch
	rec, body = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", taskID), access, gin.H{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	task = body["data"].(map[string]any)["task"].(map[string]any)
	require.Equal(t, "completed", task["status"])

	// stats reflect the completed task
	rec, body = doJSON(t, router, http.MethodGet, "/api/tasks/stats/summary", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["data"].(map[string]any)
	require.Equal(t, float64(1), stats["total"])
	require.Equal(t, float64(1), stats["byStatus"].(map[string]any)["completed"])

	// delete
	rec, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskID), access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), access, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskOwnershipAcrossUsers(t *testing.T) {
	router, _ := newTestRouter(t)
	aliceToken, _ := registerUser(t, router, "alice@x.com")
	bobToken, _ := registerUser(t, router, "bob@x.com")

	rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", aliceToken, gin.H{
		"title": "Alice's secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := int64(body["data"].(map[string]any)["task"].(map[string]any)["id"].(float64))

	path := fmt.Sprintf("/api/tasks/%d", taskID)
	rec, _ = doJSON(t, router, http.MethodGet, path, bobToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPut, path, bobToken, gin.H{"title": "Stolen title"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// bob's listing never contains alice's task
	rec, body = doJSON(t, router, http.MethodGet, "/api/tasks", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(0), body["data"].(map[string]any)["count"])
}

func TestTaskValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "a@x.com")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/tasks", access, gin.H{"title": "ab"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/tasks", access, gin.H{
		"title":  "Valid title",
		"status": "bogus",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/tasks", access, gin.H{
		"title":    "Valid title",
		"due_date": "2001-01-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/tasks?status=bogus", access, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateWithNoValidFields(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "a@x.com")

	rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", access, gin.H{"title": "Stable task"})
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := int64(body["data"].(map[string]any)["task"].(map[string]any)["id"].(float64))

	rec, body = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/tasks/%d", taskID), access, gin.H{
		"unrecognized": "field",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No valid fields to update", body["message"])
}

func TestDueDateClearAndOverdue(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "a@x.com")

	future := time.Now().UTC().AddDate(0, 0, 5).Format("2006-01-02")
	rec, body := doJSON(t, router, http.MethodPost, "/api/tasks", access, gin.H{
		"title":    "Due soon",
		"due_date": future,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := int64(body["data"].(map[string]any)["task"].(map[string]any)["id"].(float64))

	// a future due date is not overdue
	rec, body = doJSON(t, router, http.MethodGet, "/api/tasks/overdue", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(0), body["data"].(map[string]any)["count"])

	// on update any parseable date is accepted, including the past
	past := "2020-01-01"
	rec, body = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/tasks/%d", taskID), access, gin.H{
		"due_date": past,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/tasks/overdue", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), body["data"].(map[string]any)["count"])

	// clearing via explicit null removes it from overdue
	rec, _ = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/tasks/%d", taskID), access, map[string]any{
		"due_date": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/tasks/overdue", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(0), body["data"].(map[string]any)["count"])
}

func TestInvalidTaskID(t *testing.T) {
	router, _ := newTestRouter(t)
	access, _ := registerUser(t, router, "a@x.com")

	rec, _ := doJSON(t, router, http.MethodGet, "/api/tasks/abc", access, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
