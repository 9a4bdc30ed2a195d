package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgvihar/society-server/internal/api/testutils"
	"github.com/sgvihar/society-server/internal/models"
)

func TestSignup(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Successful signup
	signupReq := models.SignUpRequest{
		Email:    "newuser@example.com",
		Password: "Password123",
		Name:     "New User",
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/signup", signupReq, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleUser, resp.Role)

	// Duplicate email
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/signup", signupReq, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing required fields
	invalidReq := models.SignUpRequest{
		Email: "invalid@example.com",
	}

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/signup", invalidReq, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Successful login
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    testutils.UserEmail,
		Password: testutils.UserPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleUser, resp.Role)

	// Seeded admin login
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    testutils.AdminEmail,
		Password: testutils.AdminPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleAdmin, resp.Role)

	// Invalid credentials
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    testutils.UserEmail,
		Password: "wrongpassword",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// User not found
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "testpassword",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserDirectory(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Admin sees the seeded admin plus the resident
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/users",
		nil, testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []models.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 2)

	// Residents may not browse the directory
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/users",
		nil, testutils.AuthHeaders(testCtx.UserJWT))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
