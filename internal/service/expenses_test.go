package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgvihar/society-server/internal/ledger"
	"github.com/sgvihar/society-server/internal/models"
)

func TestAddExpense(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	expense, err := svc.AddExpense(ctx, models.AddExpenseRequest{
		Description:   "Stage rental",
		Category:      "Festival",
		Amount:        decimal.NewFromInt(1200),
		PaymentMethod: models.PaymentUPI,
		Date:          "2024-10-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-2025", expense.FinancialYear)

	t.Run("non-positive amount rejected", func(t *testing.T) {
		_, err := svc.AddExpense(ctx, models.AddExpenseRequest{
			Description:   "Free lunch",
			Category:      "Misc",
			Amount:        decimal.Zero,
			PaymentMethod: models.PaymentUPI,
			Date:          "2024-10-15",
		})

		var vErr *ledger.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		_, err := svc.AddExpense(ctx, models.AddExpenseRequest{
			Description:   "Chairs",
			Category:      "Misc",
			Amount:        decimal.NewFromInt(100),
			PaymentMethod: models.PaymentUPI,
			Date:          "15/10/2024",
		})

		var vErr *ledger.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestUpdateExpense(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	expense, err := svc.AddExpense(ctx, models.AddExpenseRequest{
		Description:   "Stage rental",
		Category:      "Festival",
		Amount:        decimal.NewFromInt(1200),
		PaymentMethod: models.PaymentUPI,
		Date:          "2024-10-15",
	})
	require.NoError(t, err)

	t.Run("fields updated", func(t *testing.T) {
		amount := decimal.NewFromInt(1500)
		updated, err := svc.UpdateExpense(ctx, expense.ID, models.UpdateExpenseRequest{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(amount))
	})

	t.Run("financial year stays with the original bucket", func(t *testing.T) {
		date := "2025-06-01"
		updated, err := svc.UpdateExpense(ctx, expense.ID, models.UpdateExpenseRequest{Date: &date})
		require.NoError(t, err)
		assert.Equal(t, "2024-2025", updated.FinancialYear)
	})

	t.Run("unknown id", func(t *testing.T) {
		amount := decimal.NewFromInt(10)
		_, err := svc.UpdateExpense(ctx, "no-such-id", models.UpdateExpenseRequest{Amount: &amount})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListExpensesByYear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2024-05-01", "2024-11-20", "2023-08-01"} {
		_, err := svc.AddExpense(ctx, models.AddExpenseRequest{
			Description:   "Entry",
			Category:      "Misc",
			Amount:        decimal.NewFromInt(50),
			PaymentMethod: models.PaymentUPI,
			Date:          date,
		})
		require.NoError(t, err)
	}

	expenses, err := svc.ListExpenses(ctx, "2024-2025")
	require.NoError(t, err)
	assert.Len(t, expenses, 2)

	expenses, err = svc.ListExpenses(ctx, "2023-2024")
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestExpenseSources(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	source, err := svc.AddExpenseSource(ctx, "Festival Fund")
	require.NoError(t, err)

	require.NoError(t, svc.RenameExpenseSource(ctx, source.ID, "Cultural Fund"))

	sources, err := svc.ListExpenseSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Cultural Fund", sources[0].Name)

	require.NoError(t, svc.DeleteExpenseSource(ctx, source.ID))

	sources, err = svc.ListExpenseSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, svc.RenameExpenseSource(ctx, "no-such-id", "X"), ErrNotFound)
		assert.ErrorIs(t, svc.DeleteExpenseSource(ctx, "no-such-id"), ErrNotFound)
	})
}
