package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgvihar/society-server/internal/models"
)

// Event handlers
func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "event": event})
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "event": event})
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.svc.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Event deleted",
	})
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.svc.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "events": events})
}

// Registration handlers
func (h *Handler) RegisterForEvent(c *gin.Context) {
	var req models.RegisterEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userID := c.MustGet("userId").(string)

	registration, err := h.svc.RegisterForEvent(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.RegistrationResponse{
		Status:         "success",
		RegistrationID: registration.ID,
		SequenceNumber: registration.SequenceNumber,
	})
}

func (h *Handler) ListEventRegistrations(c *gin.Context) {
	registrations, err := h.svc.ListEventRegistrations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "registrations": registrations})
}

func (h *Handler) ListMyRegistrations(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	registrations, err := h.svc.ListUserRegistrations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "registrations": registrations})
}

func (h *Handler) CancelRegistration(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	role, _ := c.Get("userRole")

	err := h.svc.CancelRegistration(c.Request.Context(), userID, c.Param("id"), role == models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Registration cancelled",
	})
}
