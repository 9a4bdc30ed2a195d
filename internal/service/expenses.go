package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sgvihar/society-server/internal/fiscal"
	"github.com/sgvihar/society-server/internal/ledger"
	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/repository"
)

// AddExpense records a bookkeeping entry. Expenses carry no uniqueness
// constraint; only the amount and date are validated.
func (s *DefaultService) AddExpense(ctx context.Context, req models.AddExpenseRequest) (*models.Expense, error) {
	date, err := time.Parse(ledger.DateLayout, req.Date)
	if err != nil {
		return nil, &ledger.ValidationError{Reason: "date must be in YYYY-MM-DD format"}
	}
	if !req.Amount.IsPositive() {
		return nil, &ledger.ValidationError{Reason: "amount must be a positive number"}
	}

	expense := &models.Expense{
		Description:   req.Description,
		Category:      req.Category,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
		FinancialYear: fiscal.Resolve(date),
		ExpenseBy:     req.ExpenseBy,
		Receipt:       req.Receipt,
	}

	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("error creating expense: %w", err)
	}

	return expense, nil
}

func (s *DefaultService) UpdateExpense(ctx context.Context, id string, req models.UpdateExpenseRequest) (*models.Expense, error) {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting expense: %w", err)
	}
	if expense == nil {
		return nil, ErrNotFound
	}

	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, &ledger.ValidationError{Reason: "amount must be a positive number"}
		}
		expense.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Date != nil {
		date, err := time.Parse(ledger.DateLayout, *req.Date)
		if err != nil {
			return nil, &ledger.ValidationError{Reason: "date must be in YYYY-MM-DD format"}
		}
		// The fiscal bucket is fixed at creation, same as donations.
		expense.Date = date
	}
	if req.ExpenseBy != nil {
		expense.ExpenseBy = req.ExpenseBy
	}
	if req.Receipt != nil {
		expense.Receipt = req.Receipt
	}

	if err := s.repo.UpdateExpense(ctx, expense); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating expense: %w", err)
	}

	return expense, nil
}

func (s *DefaultService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting expense: %w", err)
	}
	return nil
}

func (s *DefaultService) ListExpenses(ctx context.Context, financialYear string) ([]models.Expense, error) {
	if financialYear == "" {
		financialYear = fiscal.Current()
	}

	all, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}

	expenses := make([]models.Expense, 0, len(all))
	for i := range all {
		if all[i].FinancialYear == financialYear {
			expenses = append(expenses, all[i])
		}
	}

	return expenses, nil
}

// Expense source methods
func (s *DefaultService) AddExpenseSource(ctx context.Context, name string) (*models.ExpenseSource, error) {
	source := &models.ExpenseSource{Name: name}
	if err := s.repo.CreateExpenseSource(ctx, source); err != nil {
		return nil, fmt.Errorf("error creating expense source: %w", err)
	}
	return source, nil
}

func (s *DefaultService) RenameExpenseSource(ctx context.Context, id, name string) error {
	source := &models.ExpenseSource{ID: id, Name: name}
	if err := s.repo.UpdateExpenseSource(ctx, source); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error renaming expense source: %w", err)
	}
	return nil
}

func (s *DefaultService) DeleteExpenseSource(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpenseSource(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting expense source: %w", err)
	}
	return nil
}

func (s *DefaultService) ListExpenseSources(ctx context.Context) ([]models.ExpenseSource, error) {
	sources, err := s.repo.ListExpenseSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing expense sources: %w", err)
	}
	return sources, nil
}
