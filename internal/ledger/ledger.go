// Package ledger holds the contribution-ledger rules: admission checks for
// donation records, the audit-trail diff logic, and the income/expense
// aggregates. Everything here is pure; persistence belongs to the
// repository and orchestration to the service layer.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sgvihar/society-server/internal/models"
)

// DateLayout is the wire format for donation and expense dates.
const DateLayout = "2006-01-02"

// ValidationError is a user-correctable field error. It is surfaced
// verbatim to the caller and never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError marks a uniqueness violation. The caller should re-prompt
// rather than retry silently.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// ErrDuplicateUnit is returned when a residential unit already holds a live
// contribution for the candidate's financial year.
var ErrDuplicateUnit = &ConflictError{Reason: "unit already has a contribution for this financial year"}

// ValidateDonation checks field presence on a donation record. It runs
// before, and independently of, the uniqueness scan.
func ValidateDonation(d *models.Donation) error {
	if !d.Amount.IsPositive() {
		return &ValidationError{Reason: "amount must be a positive number"}
	}
	if d.PaymentMethod != models.PaymentCash && d.PaymentMethod != models.PaymentUPI {
		return &ValidationError{Reason: "payment method must be Cash or UPI"}
	}
	if d.IsExternal {
		if d.ContributorName == nil || strings.TrimSpace(*d.ContributorName) == "" {
			return &ValidationError{Reason: "contributor name is required for external contributions"}
		}
	} else {
		if d.BuildingNo == nil || d.FlatNo == nil || strings.TrimSpace(*d.FlatNo) == "" {
			return &ValidationError{Reason: "building and flat are required for internal contributions"}
		}
	}
	if d.PaymentMethod == models.PaymentCash {
		if d.ReceivedBy == nil || strings.TrimSpace(*d.ReceivedBy) == "" {
			return &ValidationError{Reason: "received by is required for cash payments"}
		}
	}
	return nil
}

// CheckAdmission decides whether a candidate donation may join the ledger.
// External contributions are always admitted. An internal contribution is
// rejected when another live internal record with a different id occupies
// the same (building, flat, financial year) triple. excludeID skips the
// record's own row during an update re-check.
func CheckAdmission(candidate *models.Donation, existing []models.Donation, excludeID string) error {
	if err := ValidateDonation(candidate); err != nil {
		return err
	}
	if candidate.IsExternal {
		return nil
	}
	for i := range existing {
		r := &existing[i]
		if r.ID == excludeID || r.IsExternal || !r.IsLive() {
			continue
		}
		if r.BuildingNo == nil || r.FlatNo == nil {
			continue
		}
		if *r.BuildingNo == *candidate.BuildingNo &&
			*r.FlatNo == *candidate.FlatNo &&
			r.FinancialYear == candidate.FinancialYear {
			return ErrDuplicateUnit
		}
	}
	return nil
}

// TouchesUnit reports whether a partial update can move the donation to a
// different uniqueness key. Updates that leave the unit fields alone skip
// the admission rescan but still pass field validation.
func TouchesUnit(patch models.UpdateDonationRequest) bool {
	return patch.BuildingNo != nil || patch.FlatNo != nil || patch.IsExternal != nil
}

// DiffChanges computes the audit diff for a partial update. Only fields
// present in the patch are compared; a field whose value did not change is
// left out of the result. Absent old values are recorded as null.
func DiffChanges(old *models.Donation, patch models.UpdateDonationRequest) (map[string]models.FieldChange, error) {
	changes := make(map[string]models.FieldChange)

	if patch.IsExternal != nil && *patch.IsExternal != old.IsExternal {
		changes["isExternal"] = models.FieldChange{Old: old.IsExternal, New: *patch.IsExternal}
	}
	if patch.BuildingNo != nil && (old.BuildingNo == nil || *old.BuildingNo != *patch.BuildingNo) {
		changes["buildingNo"] = models.FieldChange{Old: intOrNil(old.BuildingNo), New: *patch.BuildingNo}
	}
	if patch.FlatNo != nil && (old.FlatNo == nil || *old.FlatNo != *patch.FlatNo) {
		changes["flatNo"] = models.FieldChange{Old: strOrNil(old.FlatNo), New: *patch.FlatNo}
	}
	if patch.ContributorName != nil && (old.ContributorName == nil || *old.ContributorName != *patch.ContributorName) {
		changes["contributorName"] = models.FieldChange{Old: strOrNil(old.ContributorName), New: *patch.ContributorName}
	}
	if patch.Amount != nil && !old.Amount.Equal(*patch.Amount) {
		changes["amount"] = models.FieldChange{Old: old.Amount, New: *patch.Amount}
	}
	if patch.PaymentMethod != nil && *patch.PaymentMethod != old.PaymentMethod {
		changes["paymentMethod"] = models.FieldChange{Old: old.PaymentMethod, New: *patch.PaymentMethod}
	}
	if patch.Date != nil {
		newDate, err := time.Parse(DateLayout, *patch.Date)
		if err != nil {
			return nil, &ValidationError{Reason: "date must be in YYYY-MM-DD format"}
		}
		if !newDate.Equal(old.Date) {
			changes["date"] = models.FieldChange{Old: old.Date.Format(DateLayout), New: newDate.Format(DateLayout)}
		}
	}
	if patch.ReceivedBy != nil && (old.ReceivedBy == nil || *old.ReceivedBy != *patch.ReceivedBy) {
		changes["receivedBy"] = models.FieldChange{Old: strOrNil(old.ReceivedBy), New: *patch.ReceivedBy}
	}

	return changes, nil
}

// ApplyPatch merges the non-nil patch fields into the donation. The
// financial year is immutable and is never touched, even when the date
// changes.
func ApplyPatch(d *models.Donation, patch models.UpdateDonationRequest) error {
	if patch.IsExternal != nil {
		d.IsExternal = *patch.IsExternal
	}
	if patch.BuildingNo != nil {
		d.BuildingNo = patch.BuildingNo
	}
	if patch.FlatNo != nil {
		d.FlatNo = patch.FlatNo
	}
	if patch.ContributorName != nil {
		d.ContributorName = patch.ContributorName
	}
	if patch.Amount != nil {
		d.Amount = *patch.Amount
	}
	if patch.PaymentMethod != nil {
		d.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Date != nil {
		newDate, err := time.Parse(DateLayout, *patch.Date)
		if err != nil {
			return &ValidationError{Reason: "date must be in YYYY-MM-DD format"}
		}
		d.Date = newDate
	}
	if patch.ReceivedBy != nil {
		d.ReceivedBy = patch.ReceivedBy
	}
	return nil
}

// NewCreatedEntry returns the single audit entry every record creation
// produces. Its changes map is always empty.
func NewCreatedEntry(editedBy string) models.AuditEntry {
	return newEntry(models.AuditCreated, editedBy, map[string]models.FieldChange{})
}

// NewUpdatedEntry returns the audit entry for a successful field update.
func NewUpdatedEntry(editedBy string, changes map[string]models.FieldChange) models.AuditEntry {
	return newEntry(models.AuditUpdated, editedBy, changes)
}

// NewDeletedEntry returns the terminal audit entry written before a record
// is removed from the live set.
func NewDeletedEntry(editedBy string) models.AuditEntry {
	return newEntry(models.AuditDeleted, editedBy, map[string]models.FieldChange{})
}

func newEntry(action, editedBy string, changes map[string]models.FieldChange) models.AuditEntry {
	return models.AuditEntry{
		ID:       uuid.New().String(),
		Action:   action,
		EditedAt: time.Now().UTC(),
		EditedBy: editedBy,
		Changes:  changes,
	}
}

// TotalIncome sums live donation amounts for the given financial year.
// Internal and external contributions both count.
func TotalIncome(donations []models.Donation, year string) decimal.Decimal {
	total := decimal.Zero
	for i := range donations {
		if donations[i].FinancialYear == year && donations[i].IsLive() {
			total = total.Add(donations[i].Amount)
		}
	}
	return total
}

// TotalExpenses sums expense amounts for the given financial year.
func TotalExpenses(expenses []models.Expense, year string) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		if expenses[i].FinancialYear == year {
			total = total.Add(expenses[i].Amount)
		}
	}
	return total
}

// Balance returns income minus expenses for the given financial year.
// May be negative.
func Balance(donations []models.Donation, expenses []models.Expense, year string) decimal.Decimal {
	return TotalIncome(donations, year).Sub(TotalExpenses(expenses, year))
}

// Years collects the distinct financial years present across donations and
// expenses, always including current, sorted newest first.
func Years(donations []models.Donation, expenses []models.Expense, current string) []string {
	seen := map[string]bool{current: true}
	for i := range donations {
		seen[donations[i].FinancialYear] = true
	}
	for i := range expenses {
		seen[expenses[i].FinancialYear] = true
	}
	years := make([]string, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func strOrNil(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
