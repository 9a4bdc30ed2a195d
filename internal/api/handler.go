package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgvihar/society-server/internal/ledger"
	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/service"
)

// Handler holds the service and exposes the HTTP handlers
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Public routes
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/login", h.Login)
	api.GET("/events", h.ListEvents)

	// Authenticated resident routes
	authed := api.Group("")
	authed.Use(AuthMiddleware())
	{
		authed.GET("/summary", h.GetSummary)
		authed.GET("/years", h.ListYears)
		authed.GET("/donations/by-flat", h.FindDonationByFlat)
		authed.POST("/events/:id/registrations", h.RegisterForEvent)
		authed.GET("/registrations", h.ListMyRegistrations)
		authed.DELETE("/registrations/:id", h.CancelRegistration)
	}

	// Admin routes
	admin := api.Group("")
	admin.Use(AuthMiddleware(), AdminMiddleware())
	{
		admin.GET("/donations", h.ListDonations)
		admin.POST("/donations", h.AddDonation)
		admin.PUT("/donations/:id", h.UpdateDonation)
		admin.DELETE("/donations/:id", h.DeleteDonation)
		admin.GET("/donations/:id/history", h.GetEditHistory)

		admin.GET("/expenses", h.ListExpenses)
		admin.POST("/expenses", h.AddExpense)
		admin.PUT("/expenses/:id", h.UpdateExpense)
		admin.DELETE("/expenses/:id", h.DeleteExpense)

		admin.GET("/expense-sources", h.ListExpenseSources)
		admin.POST("/expense-sources", h.AddExpenseSource)
		admin.PUT("/expense-sources/:id", h.RenameExpenseSource)
		admin.DELETE("/expense-sources/:id", h.DeleteExpenseSource)

		admin.GET("/users", h.ListUsers)

		admin.POST("/events", h.CreateEvent)
		admin.PUT("/events/:id", h.UpdateEvent)
		admin.DELETE("/events/:id", h.DeleteEvent)
		admin.GET("/events/:id/registrations", h.ListEventRegistrations)
	}
}

// respondError maps service and ledger errors to HTTP responses. Store
// errors pass through as internal errors with their message intact.
func respondError(c *gin.Context, err error) {
	var validationErr *ledger.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "VALIDATION_ERROR",
			Message: validationErr.Reason,
		})
		return
	}

	var conflictErr *ledger.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Status:  "error",
			Code:    "CONFLICT",
			Message: conflictErr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: "Record not found",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Status:  "error",
			Code:    "UNAUTHORIZED",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Status:  "error",
			Code:    "CONFLICT",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Status:  "error",
			Code:    "FORBIDDEN",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrEventClosed),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrEventFull):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Status:  "error",
			Code:    "CONFLICT",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "BAD_REQUEST",
		Message: err.Error(),
	})
}

// actor returns the authenticated user's display name for audit entries.
func actor(c *gin.Context) string {
	if name, ok := c.Get("userName"); ok {
		if s, ok := name.(string); ok && s != "" {
			return s
		}
	}
	return "Admin"
}

// Authentication handlers
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListUsers serves the resident directory to admins.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": users})
}
