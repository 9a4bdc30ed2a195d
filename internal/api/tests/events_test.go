package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgvihar/society-server/internal/api/testutils"
	"github.com/sgvihar/society-server/internal/models"
)

func createEventRequest(name string) models.CreateEventRequest {
	return models.CreateEventRequest{
		Name:                 name,
		Description:          "Annual cultural program",
		Date:                 time.Now().AddDate(0, 0, 30).Format("2006-01-02"),
		RegistrationDeadline: time.Now().AddDate(0, 0, 14).Format("2006-01-02"),
	}
}

func TestEventRegistrationFlow(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Only admins create events
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/events",
		createEventRequest("Diwali Night"), testutils.AuthHeaders(testCtx.UserJWT))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/events",
		createEventRequest("Diwali Night"), testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Event models.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	eventID := created.Event.ID

	// The event list is public
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/events", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Events []models.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Events, 1)

	// A resident registers
	regReq := models.RegisterEventRequest{
		Participants: []models.Participant{{Name: "Asha", Age: 30, Gender: "F"}},
		ContactPhone: "9876543210",
	}
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/events/"+eventID+"/registrations",
		regReq, testutils.AuthHeaders(testCtx.UserJWT))
	require.Equal(t, http.StatusCreated, w.Code)

	var reg models.RegistrationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.Equal(t, 1, reg.SequenceNumber)
	require.NotEmpty(t, reg.RegistrationID)

	// Registration without participants is rejected by binding
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/events/"+eventID+"/registrations",
		models.RegisterEventRequest{ContactPhone: "9876543210"}, testutils.AuthHeaders(testCtx.UserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The resident sees their own registration
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/registrations",
		nil, testutils.AuthHeaders(testCtx.UserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var mine struct {
		Registrations []models.EventRegistration `json:"registrations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine.Registrations, 1)
	assert.Equal(t, models.RegistrationConfirmed, mine.Registrations[0].Status)

	// And can cancel it
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/registrations/"+reg.RegistrationID,
		nil, testutils.AuthHeaders(testCtx.UserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	// Admin reviews the event roster
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/events/"+eventID+"/registrations",
		nil, testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var roster struct {
		Registrations []models.EventRegistration `json:"registrations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roster))
	require.Len(t, roster.Registrations, 1)
	assert.Equal(t, models.RegistrationCancelled, roster.Registrations[0].Status)
}
