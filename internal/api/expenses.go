package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgvihar/society-server/internal/models"
)

// Expense handlers
func (h *Handler) AddExpense(c *gin.Context) {
	var req models.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	expense, err := h.svc.AddExpense(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "expense": expense})
}

func (h *Handler) UpdateExpense(c *gin.Context) {
	var req models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	expense, err := h.svc.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "expense": expense})
}

func (h *Handler) DeleteExpense(c *gin.Context) {
	if err := h.svc.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Expense deleted",
	})
}

func (h *Handler) ListExpenses(c *gin.Context) {
	expenses, err := h.svc.ListExpenses(c.Request.Context(), c.Query("year"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "expenses": expenses})
}

// Expense source handlers
func (h *Handler) AddExpenseSource(c *gin.Context) {
	var req models.ExpenseSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	source, err := h.svc.AddExpenseSource(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "source": source})
}

func (h *Handler) RenameExpenseSource(c *gin.Context) {
	var req models.ExpenseSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.svc.RenameExpenseSource(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: "success"})
}

func (h *Handler) DeleteExpenseSource(c *gin.Context) {
	if err := h.svc.DeleteExpenseSource(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Expense source deleted",
	})
}

func (h *Handler) ListExpenseSources(c *gin.Context) {
	sources, err := h.svc.ListExpenseSources(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "sources": sources})
}
