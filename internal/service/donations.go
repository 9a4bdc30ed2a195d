package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sgvihar/society-server/internal/fiscal"
	"github.com/sgvihar/society-server/internal/ledger"
	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/repository"
)

// AddDonation validates a candidate contribution against the ledger rules,
// admits it, and persists it with its initial created audit entry. The
// financial year is frozen from the donation's own date.
func (s *DefaultService) AddDonation(ctx context.Context, actor string, req models.AddDonationRequest) (*models.Donation, error) {
	date, err := time.Parse(ledger.DateLayout, req.Date)
	if err != nil {
		return nil, &ledger.ValidationError{Reason: "date must be in YYYY-MM-DD format"}
	}

	donation := &models.Donation{
		IsExternal:    req.IsExternal,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
		FinancialYear: fiscal.Resolve(date),
		ReceivedBy:    trimPtr(req.ReceivedBy),
	}
	if req.IsExternal {
		donation.ContributorName = trimPtr(req.ContributorName)
	} else {
		donation.BuildingNo = req.BuildingNo
		donation.FlatNo = trimPtr(req.FlatNo)
	}

	existing, err := s.repo.ListLiveDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing donations: %w", err)
	}

	if err := ledger.CheckAdmission(donation, existing, ""); err != nil {
		return nil, err
	}

	donation.EditHistory = models.EditHistory{ledger.NewCreatedEntry(actor)}

	if err := s.repo.CreateDonation(ctx, donation); err != nil {
		// The partial unique index catches writers that raced past the
		// admission scan.
		if repository.IsUniqueViolation(err) {
			return nil, ledger.ErrDuplicateUnit
		}
		return nil, fmt.Errorf("error creating donation: %w", err)
	}

	return donation, nil
}

// UpdateDonation applies a partial update to a live donation. Field
// validation always runs on the merged record; the uniqueness scan reruns
// only when the patch touches the unit fields, excluding the record's own
// id. Exactly one updated audit entry is appended when any field actually
// changed.
func (s *DefaultService) UpdateDonation(ctx context.Context, actor, id string, req models.UpdateDonationRequest) (*models.Donation, error) {
	existing, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting donation: %w", err)
	}
	if existing == nil || !existing.IsLive() {
		return nil, ErrNotFound
	}

	changes, err := ledger.DiffChanges(existing, req)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if err := ledger.ApplyPatch(&merged, req); err != nil {
		return nil, err
	}

	if err := ledger.ValidateDonation(&merged); err != nil {
		return nil, err
	}

	if ledger.TouchesUnit(req) {
		all, err := s.repo.ListLiveDonations(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing donations: %w", err)
		}
		if err := ledger.CheckAdmission(&merged, all, id); err != nil {
			return nil, err
		}
	}

	if len(changes) == 0 {
		// Nothing actually changed; no audit entry, no write.
		return existing, nil
	}

	merged.EditHistory = append(existing.EditHistory, ledger.NewUpdatedEntry(actor, changes))

	if err := s.repo.UpdateDonation(ctx, &merged); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ledger.ErrDuplicateUnit
		}
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating donation: %w", err)
	}

	return &merged, nil
}

// DeleteDonation writes a terminal deleted audit entry and soft-deletes the
// record. The audit trail survives deletion; the unit/year slot is freed.
func (s *DefaultService) DeleteDonation(ctx context.Context, actor, id string) error {
	existing, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting donation: %w", err)
	}
	if existing == nil || !existing.IsLive() {
		return ErrNotFound
	}

	existing.EditHistory = append(existing.EditHistory, ledger.NewDeletedEntry(actor))

	if err := s.repo.SoftDeleteDonation(ctx, existing); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting donation: %w", err)
	}

	return nil
}

func (s *DefaultService) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	donation, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting donation: %w", err)
	}
	if donation == nil || !donation.IsLive() {
		return nil, ErrNotFound
	}
	return donation, nil
}

func (s *DefaultService) ListDonations(ctx context.Context, financialYear string) ([]models.Donation, error) {
	if financialYear == "" {
		financialYear = fiscal.Current()
	}

	donations, err := s.repo.ListDonationsByYear(ctx, financialYear)
	if err != nil {
		return nil, fmt.Errorf("error listing donations: %w", err)
	}

	return donations, nil
}

// GetEditHistory returns the audit trail of a donation, oldest entry first.
// It remains readable after the donation is deleted.
func (s *DefaultService) GetEditHistory(ctx context.Context, id string) (models.EditHistory, error) {
	donation, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting donation: %w", err)
	}
	if donation == nil {
		return nil, ErrNotFound
	}

	return donation.EditHistory, nil
}

// FindDonationByFlat looks up the live contribution for a residential unit
// in a financial year, used by the resident receipt lookup.
func (s *DefaultService) FindDonationByFlat(ctx context.Context, buildingNo int, flatNo, financialYear string) (*models.Donation, error) {
	if financialYear == "" {
		financialYear = fiscal.Current()
	}

	donations, err := s.repo.ListDonationsByYear(ctx, financialYear)
	if err != nil {
		return nil, fmt.Errorf("error listing donations: %w", err)
	}

	for i := range donations {
		d := &donations[i]
		if d.IsExternal || d.BuildingNo == nil || d.FlatNo == nil {
			continue
		}
		if *d.BuildingNo == buildingNo && *d.FlatNo == flatNo {
			return d, nil
		}
	}

	return nil, ErrNotFound
}

// ComputeSummary derives income, expenses and balance for a financial year
// by rescanning the collections; nothing is maintained incrementally.
func (s *DefaultService) ComputeSummary(ctx context.Context, financialYear string) (*models.SummaryResponse, error) {
	if financialYear == "" {
		financialYear = fiscal.Current()
	}

	donations, err := s.repo.ListLiveDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing donations: %w", err)
	}

	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}

	income := ledger.TotalIncome(donations, financialYear)
	spent := ledger.TotalExpenses(expenses, financialYear)

	return &models.SummaryResponse{
		Status:        "success",
		FinancialYear: financialYear,
		Income:        income,
		Expenses:      spent,
		Balance:       income.Sub(spent),
	}, nil
}

func (s *DefaultService) ListFinancialYears(ctx context.Context) ([]string, error) {
	donations, err := s.repo.ListLiveDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing donations: %w", err)
	}

	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}

	return ledger.Years(donations, expenses, fiscal.Current()), nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
