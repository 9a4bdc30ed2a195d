package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgvihar/society-server/internal/ledger"
	"github.com/sgvihar/society-server/internal/models"
)

func createTestUser(t *testing.T, svc Service, email string) string {
	t.Helper()
	resp, err := svc.SignUp(context.Background(), models.SignUpRequest{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return resp.UserID
}

func upcomingEvent(name string, maxParticipants *int) models.CreateEventRequest {
	date := time.Now().AddDate(0, 0, 30).Format(ledger.DateLayout)
	deadline := time.Now().AddDate(0, 0, 14).Format(ledger.DateLayout)
	return models.CreateEventRequest{
		Name:                 name,
		Description:          "Annual cultural program",
		Date:                 date,
		RegistrationDeadline: deadline,
		MaxParticipants:      maxParticipants,
	}
}

func registration(names ...string) models.RegisterEventRequest {
	participants := make([]models.Participant, 0, len(names))
	for _, n := range names {
		participants = append(participants, models.Participant{Name: n, Age: 30, Gender: "F"})
	}
	return models.RegisterEventRequest{
		Participants: participants,
		ContactPhone: "9876543210",
	}
}

func TestCreateEvent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, upcomingEvent("Diwali Night", nil))
	require.NoError(t, err)
	assert.True(t, event.IsActive)
	assert.Zero(t, event.CurrentParticipants)

	t.Run("deadline after event date rejected", func(t *testing.T) {
		req := upcomingEvent("Bad Event", nil)
		req.RegistrationDeadline = time.Now().AddDate(0, 0, 60).Format(ledger.DateLayout)

		_, err := svc.CreateEvent(ctx, req)

		var vErr *ledger.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestRegisterForEvent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	userID := createTestUser(t, svc, "resident@test.local")
	otherID := createTestUser(t, svc, "other@test.local")

	max := 5
	event, err := svc.CreateEvent(ctx, upcomingEvent("Annual Day", &max))
	require.NoError(t, err)

	t.Run("sequence numbers assigned in order", func(t *testing.T) {
		first, err := svc.RegisterForEvent(ctx, userID, event.ID, registration("Asha"))
		require.NoError(t, err)
		assert.Equal(t, 1, first.SequenceNumber)
		assert.Equal(t, models.RegistrationConfirmed, first.Status)

		second, err := svc.RegisterForEvent(ctx, otherID, event.ID, registration("Ravi", "Meera"))
		require.NoError(t, err)
		assert.Equal(t, 2, second.SequenceNumber)
	})

	t.Run("capacity gate", func(t *testing.T) {
		_, err := svc.RegisterForEvent(ctx, userID, event.ID, registration("Kiran", "Divya", "Rahul"))
		assert.ErrorIs(t, err, ErrEventFull)

		_, err = svc.RegisterForEvent(ctx, userID, event.ID, registration("Kiran", "Divya"))
		assert.NoError(t, err)
	})

	t.Run("inactive event closed", func(t *testing.T) {
		inactive := false
		_, err := svc.UpdateEvent(ctx, event.ID, models.UpdateEventRequest{IsActive: &inactive})
		require.NoError(t, err)

		_, err = svc.RegisterForEvent(ctx, userID, event.ID, registration("Late"))
		assert.ErrorIs(t, err, ErrEventClosed)
	})

	t.Run("deadline passed", func(t *testing.T) {
		req := upcomingEvent("Closed Event", nil)
		req.Date = "2024-01-20"
		req.RegistrationDeadline = "2024-01-10"
		past, err := svc.CreateEvent(ctx, req)
		require.NoError(t, err)

		_, err = svc.RegisterForEvent(ctx, userID, past.ID, registration("Late"))
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := svc.RegisterForEvent(ctx, userID, "no-such-event", registration("Nobody"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCancelRegistration(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	userID := createTestUser(t, svc, "resident@test.local")
	otherID := createTestUser(t, svc, "other@test.local")

	event, err := svc.CreateEvent(ctx, upcomingEvent("Holi Mela", nil))
	require.NoError(t, err)

	reg, err := svc.RegisterForEvent(ctx, userID, event.ID, registration("Asha"))
	require.NoError(t, err)

	t.Run("another resident cannot cancel", func(t *testing.T) {
		err := svc.CancelRegistration(ctx, otherID, reg.ID, false)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("owner can cancel", func(t *testing.T) {
		require.NoError(t, svc.CancelRegistration(ctx, userID, reg.ID, false))

		regs, err := svc.ListUserRegistrations(ctx, userID)
		require.NoError(t, err)
		require.Len(t, regs, 1)
		assert.Equal(t, models.RegistrationCancelled, regs[0].Status)
	})

	t.Run("admin can cancel any", func(t *testing.T) {
		reg, err := svc.RegisterForEvent(ctx, otherID, event.ID, registration("Ravi"))
		require.NoError(t, err)

		assert.NoError(t, svc.CancelRegistration(ctx, userID, reg.ID, true))
	})
}
