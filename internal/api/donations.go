package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sgvihar/society-server/internal/fiscal"
	"github.com/sgvihar/society-server/internal/models"
)

// Donation handlers
func (h *Handler) AddDonation(c *gin.Context) {
	var req models.AddDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	donation, err := h.svc.AddDonation(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.DonationResponse{
		Status:   "success",
		Donation: donation,
	})
}

func (h *Handler) UpdateDonation(c *gin.Context) {
	var req models.UpdateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	donation, err := h.svc.UpdateDonation(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DonationResponse{
		Status:   "success",
		Donation: donation,
	})
}

func (h *Handler) DeleteDonation(c *gin.Context) {
	if err := h.svc.DeleteDonation(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Donation deleted",
	})
}

func (h *Handler) ListDonations(c *gin.Context) {
	year := c.Query("year")
	if year == "" {
		year = fiscal.Current()
	}

	donations, err := h.svc.ListDonations(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DonationListResponse{
		Status:        "success",
		FinancialYear: year,
		Donations:     donations,
	})
}

func (h *Handler) GetEditHistory(c *gin.Context) {
	id := c.Param("id")

	history, err := h.svc.GetEditHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EditHistoryResponse{
		Status:      "success",
		DonationID:  id,
		EditHistory: history,
	})
}

// FindDonationByFlat serves the resident receipt lookup.
func (h *Handler) FindDonationByFlat(c *gin.Context) {
	buildingNo, err := strconv.Atoi(c.Query("building"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "BAD_REQUEST",
			Message: "building must be a number",
		})
		return
	}
	flatNo := c.Query("flat")
	if flatNo == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "BAD_REQUEST",
			Message: "flat is required",
		})
		return
	}

	donation, err := h.svc.FindDonationByFlat(c.Request.Context(), buildingNo, flatNo, c.Query("year"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DonationResponse{
		Status:   "success",
		Donation: donation,
	})
}

// Aggregate handlers
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.svc.ComputeSummary(c.Request.Context(), c.Query("year"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListYears(c *gin.Context) {
	years, err := h.svc.ListFinancialYears(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.YearsResponse{
		Status: "success",
		Years:  years,
	})
}
