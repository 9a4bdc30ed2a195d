package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/repository"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	repo := repository.NewMemoryRepository()
	return NewDefaultService(repo, "test-secret", "admin@test.local", "admin-password", "Admin")
}

func TestSignUpAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	building := 3
	flat := "B-12"
	resp, err := svc.SignUp(ctx, models.SignUpRequest{
		Email:      "resident@test.local",
		Password:   "password123",
		Name:       "Resident One",
		BuildingNo: &building,
		FlatNo:     &flat,
	})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.NotEmpty(t, resp.UserID)

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.SignUp(ctx, models.SignUpRequest{
			Email:    "resident@test.local",
			Password: "password123",
			Name:     "Someone Else",
		})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("login returns token", func(t *testing.T) {
		resp, err := svc.Login(ctx, models.LoginRequest{
			Email:    "resident@test.local",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleUser, resp.Role)
		assert.Equal(t, "Resident One", resp.Name)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{
			Email:    "resident@test.local",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{
			Email:    "nobody@test.local",
			Password: "password123",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSeedDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx))

	resp, err := svc.Login(ctx, models.LoginRequest{
		Email:    "admin@test.local",
		Password: "admin-password",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)

	sources, err := svc.ListExpenseSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 3)

	// Seeding again must not duplicate anything
	require.NoError(t, svc.SeedDefaults(ctx))

	sources, err = svc.ListExpenseSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 3)
}
