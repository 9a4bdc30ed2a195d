package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sgvihar/society-server/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func internalDonation(id string, building int, flat, year string) models.Donation {
	return models.Donation{
		ID:            id,
		BuildingNo:    intPtr(building),
		FlatNo:        strPtr(flat),
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: models.PaymentUPI,
		Date:          time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		FinancialYear: year,
	}
}

func TestValidateDonation(t *testing.T) {
	t.Run("rejects non-positive amount", func(t *testing.T) {
		d := internalDonation("d1", 3, "201", "2024-2025")
		d.Amount = decimal.Zero
		err := ValidateDonation(&d)
		assert.Error(t, err)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("rejects internal without unit", func(t *testing.T) {
		d := internalDonation("d1", 3, "201", "2024-2025")
		d.FlatNo = nil
		assert.Error(t, ValidateDonation(&d))

		d = internalDonation("d1", 3, "201", "2024-2025")
		d.BuildingNo = nil
		assert.Error(t, ValidateDonation(&d))
	})

	t.Run("rejects external without contributor name", func(t *testing.T) {
		d := internalDonation("d1", 3, "201", "2024-2025")
		d.IsExternal = true
		d.ContributorName = strPtr("  ")
		assert.Error(t, ValidateDonation(&d))
	})

	t.Run("cash always requires receivedBy", func(t *testing.T) {
		d := internalDonation("d1", 3, "201", "2024-2025")
		d.PaymentMethod = models.PaymentCash
		assert.Error(t, ValidateDonation(&d))

		d.ReceivedBy = strPtr("Treasurer")
		assert.NoError(t, ValidateDonation(&d))
	})

	t.Run("accepts valid external cash donation", func(t *testing.T) {
		d := models.Donation{
			IsExternal:      true,
			ContributorName: strPtr("Well Wisher"),
			Amount:          decimal.NewFromInt(1000),
			PaymentMethod:   models.PaymentCash,
			ReceivedBy:      strPtr("Secretary"),
			FinancialYear:   "2024-2025",
		}
		assert.NoError(t, ValidateDonation(&d))
	})
}

func TestCheckAdmission(t *testing.T) {
	existing := []models.Donation{
		internalDonation("d1", 3, "201", "2024-2025"),
	}

	t.Run("rejects duplicate unit in same year", func(t *testing.T) {
		candidate := internalDonation("", 3, "201", "2024-2025")
		err := CheckAdmission(&candidate, existing, "")
		assert.ErrorIs(t, err, ErrDuplicateUnit)
	})

	t.Run("accepts same unit in different year", func(t *testing.T) {
		candidate := internalDonation("", 3, "201", "2023-2024")
		assert.NoError(t, CheckAdmission(&candidate, existing, ""))
	})

	t.Run("accepts different flat in same year", func(t *testing.T) {
		candidate := internalDonation("", 3, "202", "2024-2025")
		assert.NoError(t, CheckAdmission(&candidate, existing, ""))
	})

	t.Run("external candidates always admitted", func(t *testing.T) {
		candidate := models.Donation{
			IsExternal:      true,
			ContributorName: strPtr("Well Wisher"),
			Amount:          decimal.NewFromInt(100),
			PaymentMethod:   models.PaymentUPI,
			FinancialYear:   "2024-2025",
		}
		assert.NoError(t, CheckAdmission(&candidate, existing, ""))
	})

	t.Run("external records may share a contributor name", func(t *testing.T) {
		shared := models.Donation{
			ID:              "e1",
			IsExternal:      true,
			ContributorName: strPtr("Well Wisher"),
			Amount:          decimal.NewFromInt(100),
			PaymentMethod:   models.PaymentUPI,
			FinancialYear:   "2024-2025",
		}
		candidate := shared
		candidate.ID = ""
		assert.NoError(t, CheckAdmission(&candidate, append(existing, shared), ""))
	})

	t.Run("excludes the record's own id on update", func(t *testing.T) {
		candidate := internalDonation("d1", 3, "201", "2024-2025")
		assert.NoError(t, CheckAdmission(&candidate, existing, "d1"))
	})

	t.Run("soft-deleted records do not block admission", func(t *testing.T) {
		deleted := internalDonation("d2", 5, "101", "2024-2025")
		now := time.Now()
		deleted.DeletedAt = &now
		candidate := internalDonation("", 5, "101", "2024-2025")
		assert.NoError(t, CheckAdmission(&candidate, append(existing, deleted), ""))
	})
}

func TestDiffChanges(t *testing.T) {
	old := internalDonation("d1", 3, "201", "2024-2025")
	old.Amount = decimal.NewFromInt(100)
	old.PaymentMethod = models.PaymentCash
	old.ReceivedBy = strPtr("Treasurer")

	t.Run("only patched fields are compared", func(t *testing.T) {
		amount := decimal.NewFromInt(150)
		changes, err := DiffChanges(&old, models.UpdateDonationRequest{Amount: &amount})
		assert.NoError(t, err)
		assert.Len(t, changes, 1)
		change, ok := changes["amount"]
		assert.True(t, ok)
		assert.True(t, change.Old.(decimal.Decimal).Equal(decimal.NewFromInt(100)))
		assert.True(t, change.New.(decimal.Decimal).Equal(decimal.NewFromInt(150)))
	})

	t.Run("unchanged values produce no entry", func(t *testing.T) {
		amount := decimal.NewFromInt(100)
		changes, err := DiffChanges(&old, models.UpdateDonationRequest{
			Amount:     &amount,
			ReceivedBy: strPtr("Treasurer"),
		})
		assert.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("previously absent field records old as null", func(t *testing.T) {
		changes, err := DiffChanges(&old, models.UpdateDonationRequest{
			ContributorName: strPtr("Well Wisher"),
		})
		assert.NoError(t, err)
		assert.Nil(t, changes["contributorName"].Old)
		assert.Equal(t, "Well Wisher", changes["contributorName"].New)
	})

	t.Run("invalid date is a validation error", func(t *testing.T) {
		_, err := DiffChanges(&old, models.UpdateDonationRequest{Date: strPtr("junk")})
		assert.IsType(t, &ValidationError{}, err)
	})
}

func TestAuditEntries(t *testing.T) {
	created := NewCreatedEntry("Admin")
	assert.Equal(t, models.AuditCreated, created.Action)
	assert.Equal(t, "Admin", created.EditedBy)
	assert.Empty(t, created.Changes)
	assert.NotEmpty(t, created.ID)

	updated := NewUpdatedEntry("Admin", map[string]models.FieldChange{
		"amount": {Old: 100, New: 150},
	})
	assert.Equal(t, models.AuditUpdated, updated.Action)
	assert.Len(t, updated.Changes, 1)

	deleted := NewDeletedEntry("Admin")
	assert.Equal(t, models.AuditDeleted, deleted.Action)
	assert.Empty(t, deleted.Changes)
}

func TestAggregates(t *testing.T) {
	donations := []models.Donation{
		{FinancialYear: "2024-2025", Amount: decimal.NewFromInt(100)},
		{FinancialYear: "2024-2025", Amount: decimal.NewFromInt(250)},
		{FinancialYear: "2023-2024", Amount: decimal.NewFromInt(999)},
	}
	expenses := []models.Expense{
		{FinancialYear: "2024-2025", Amount: decimal.NewFromInt(80)},
		{FinancialYear: "2023-2024", Amount: decimal.NewFromInt(10)},
	}

	assert.True(t, TotalIncome(donations, "2024-2025").Equal(decimal.NewFromInt(350)))
	assert.True(t, TotalExpenses(expenses, "2024-2025").Equal(decimal.NewFromInt(80)))
	assert.True(t, Balance(donations, expenses, "2024-2025").Equal(decimal.NewFromInt(270)))
}

func TestAggregatesSkipDeletedAndMayGoNegative(t *testing.T) {
	now := time.Now()
	donations := []models.Donation{
		{FinancialYear: "2024-2025", Amount: decimal.NewFromInt(100)},
		{FinancialYear: "2024-2025", Amount: decimal.NewFromInt(400), DeletedAt: &now},
	}
	expenses := []models.Expense{
		{FinancialYear: "2024-2025", Amount: decimal.NewFromInt(180)},
	}

	assert.True(t, TotalIncome(donations, "2024-2025").Equal(decimal.NewFromInt(100)))
	assert.True(t, Balance(donations, expenses, "2024-2025").Equal(decimal.NewFromInt(-80)))
}

func TestYears(t *testing.T) {
	donations := []models.Donation{
		{FinancialYear: "2023-2024"},
		{FinancialYear: "2022-2023"},
	}
	expenses := []models.Expense{
		{FinancialYear: "2023-2024"},
	}

	years := Years(donations, expenses, "2024-2025")
	assert.Equal(t, []string{"2024-2025", "2023-2024", "2022-2023"}, years)
}

func TestTouchesUnit(t *testing.T) {
	amount := decimal.NewFromInt(10)
	assert.False(t, TouchesUnit(models.UpdateDonationRequest{Amount: &amount}))
	assert.True(t, TouchesUnit(models.UpdateDonationRequest{FlatNo: strPtr("305")}))
	assert.True(t, TouchesUnit(models.UpdateDonationRequest{BuildingNo: intPtr(2)}))
	ext := true
	assert.True(t, TouchesUnit(models.UpdateDonationRequest{IsExternal: &ext}))
}
