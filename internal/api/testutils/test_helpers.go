package testutils

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
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sgvihar/society-server/internal/api"
	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/repository"
	"github.com/sgvihar/society-server/internal/service"
)

const (
	jwtSecret     = "test-secret-key"
	AdminEmail    = "admin@test.local"
	AdminPassword = "admin-password"
	UserEmail     = "resident@test.local"
	UserPassword  = "resident-password"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	AdminJWT   string
	UserID     string
	UserJWT    string
}

// SetupTestContext builds a router over an in-memory repository with a
// seeded admin account and one resident account.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	repo := repository.NewMemoryRepository()
	svc := service.NewDefaultService(repo, jwtSecret, AdminEmail, AdminPassword, "Admin")

	require.NoError(t, svc.SeedDefaults(context.Background()))

	handler := api.NewHandler(svc)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Same JWT secret injection the server does at startup
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(jwtSecret))
		c.Next()
	})

	handler.SetupRoutes(router)

	admin, err := repo.GetUserByEmail(context.Background(), AdminEmail)
	require.NoError(t, err)
	require.NotNil(t, admin)

	userID := createResident(t, repo)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		AdminJWT:   signToken(t, admin.ID, admin.Name, admin.Role),
		UserID:     userID,
		UserJWT:    signToken(t, userID, "Resident One", models.RoleUser),
	}
}

func createResident(t *testing.T, repo repository.Repository) string {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(UserPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		Email:    UserEmail,
		Name:     "Resident One",
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user.ID
}

func signToken(t *testing.T, userID, name, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
