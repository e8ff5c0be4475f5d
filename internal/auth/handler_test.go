package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tralvick/backloghub/pkg/database"
	"github.com/tralvick/backloghub/pkg/logger"
	"github.com/tralvick/backloghub/pkg/models"
)

const testSecret = "test-secret"

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init(logger.ERROR, false, nil)

	db, err := database.Open(filepath.Join(t.TempDir(), "auth_test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := NewHandler(db, testSecret)
	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/logout", AuthMiddleware(testSecret), handler.Logout)
	router.GET("/whoami", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, username string) models.AuthResponse {
	t.Helper()
	w := postJSON(t, router, "/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Sup3rSecret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	var resp models.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	router := setupAuthRouter(t)
	reg := registerUser(t, router, "alice")
	if reg.Token == "" || reg.UserID == "" {
		t.Fatalf("register response missing token or user id: %+v", reg)
	}

	w := postJSON(t, router, "/auth/login", "", gin.H{
		"username": "alice",
		"password": "Sup3rSecret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	var resp models.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.UserID != reg.UserID {
		t.Errorf("login user id = %q, want %q", resp.UserID, reg.UserID)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	router := setupAuthRouter(t)
	w := postJSON(t, router, "/auth/register", "", gin.H{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("weak password returned %d, want 400", w.Code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := setupAuthRouter(t)
	registerUser(t, router, "carol")
	w := postJSON(t, router, "/auth/register", "", gin.H{
		"username": "carol",
		"email":    "other@example.com",
		"password": "Sup3rSecret",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate username returned %d, want 409", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := setupAuthRouter(t)
	registerUser(t, router, "dave")
	w := postJSON(t, router, "/auth/login", "", gin.H{
		"username": "dave",
		"password": "WrongPass1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password returned %d, want 401", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	router := setupAuthRouter(t)
	reg := registerUser(t, router, "erin")

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("protected route before logout returned %d", w.Code)
	}

	if w := postJSON(t, router, "/auth/logout", reg.Token, gin.H{}); w.Code != http.StatusOK {
		t.Fatalf("logout returned %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("protected route after logout returned %d, want 401", w.Code)
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	router := setupAuthRouter(t)
	req := httptest.NewRequest("GET", "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header returned %d, want 401", w.Code)
	}
}
