package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted by the society.
const (
	PaymentCash = "Cash"
	PaymentUPI  = "UPI"
)

// Audit actions recorded on a donation's edit history.
const (
	AuditCreated = "created"
	AuditUpdated = "updated"
	AuditDeleted = "deleted"
)

// Event registration statuses.
const (
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a user in the system
type User struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Name       string    `db:"name" json:"name"`
	Password   string    `db:"password" json:"-"` // Password hash, not returned in JSON
	Role       string    `db:"role" json:"role"`
	BuildingNo *int      `db:"building_no" json:"buildingNo,omitempty"`
	FlatNo     *string   `db:"flat_no" json:"flatNo,omitempty"`
	ContactNo  *string   `db:"contact_no" json:"contactNo,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Donation represents one contribution record in the ledger. Internal
// donations are tied to a residential unit (building + flat); external
// donations carry a contributor name instead. The financial year is frozen
// at creation time and never recomputed for the record.
type Donation struct {
	ID              string          `db:"id" json:"id"`
	BuildingNo      *int            `db:"building_no" json:"buildingNo,omitempty"`
	FlatNo          *string         `db:"flat_no" json:"flatNo,omitempty"`
	ContributorName *string         `db:"contributor_name" json:"contributorName,omitempty"`
	IsExternal      bool            `db:"is_external" json:"isExternal"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod   string          `db:"payment_method" json:"paymentMethod"`
	Date            time.Time       `db:"date" json:"date"`
	FinancialYear   string          `db:"financial_year" json:"financialYear"`
	ReceivedBy      *string         `db:"received_by" json:"receivedBy,omitempty"`
	EditHistory     EditHistory     `db:"edit_history" json:"editHistory"`
	DeletedAt       *time.Time      `db:"deleted_at" json:"deletedAt,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsLive reports whether the donation has not been soft-deleted. Only live
// records participate in the per-unit uniqueness constraint and aggregates.
func (d *Donation) IsLive() bool {
	return d.DeletedAt == nil
}

// FieldChange holds the before/after values of one field in an audit entry.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// AuditEntry is one immutable record of a create/update/delete action on a
// donation. Changes is empty for the created action and contains only the
// fields whose values actually changed for the updated action.
type AuditEntry struct {
	ID       string                 `json:"id"`
	Action   string                 `json:"action"`
	EditedAt time.Time              `json:"editedAt"`
	EditedBy string                 `json:"editedBy"`
	Changes  map[string]FieldChange `json:"changes"`
}

// EditHistory is the append-only audit trail of a donation, oldest first.
// It is stored as a single JSONB column and round-trips whole on every edit.
type EditHistory []AuditEntry

// Value implements driver.Valuer for JSONB storage.
func (h EditHistory) Value() (driver.Value, error) {
	if h == nil {
		h = EditHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (h *EditHistory) Scan(src interface{}) error {
	if src == nil {
		*h = EditHistory{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan edit history from %T", src)
	}
	return json.Unmarshal(b, h)
}

// Expense represents a bookkeeping entry for money spent by the society.
// Unlike donations, expenses carry no uniqueness constraint.
type Expense struct {
	ID            string          `db:"id" json:"id"`
	Description   string          `db:"description" json:"description"`
	Category      string          `db:"category" json:"category"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	Date          time.Time       `db:"date" json:"date"`
	FinancialYear string          `db:"financial_year" json:"financialYear"`
	ExpenseBy     *string         `db:"expense_by" json:"expenseBy,omitempty"`
	Receipt       *string         `db:"receipt" json:"receipt,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// ExpenseSource is a named fund expenses can be paid from.
type ExpenseSource struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Event represents a cultural event residents can register for.
type Event struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	Description          string    `db:"description" json:"description"`
	Date                 time.Time `db:"date" json:"date"`
	RegistrationDeadline time.Time `db:"registration_deadline" json:"registrationDeadline"`
	Venue                *string   `db:"venue" json:"venue,omitempty"`
	MaxParticipants      *int      `db:"max_participants" json:"maxParticipants,omitempty"`
	CurrentParticipants  int       `db:"current_participants" json:"currentParticipants"`
	IsActive             bool      `db:"is_active" json:"isActive"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// Participant is one person on an event registration.
type Participant struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	PerformanceName string `json:"performanceName,omitempty"`
}

// ParticipantList is stored as a single JSONB column on a registration.
type ParticipantList []Participant

// Value implements driver.Valuer for JSONB storage.
func (p ParticipantList) Value() (driver.Value, error) {
	if p == nil {
		p = ParticipantList{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (p *ParticipantList) Scan(src interface{}) error {
	if src == nil {
		*p = ParticipantList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan participants from %T", src)
	}
	return json.Unmarshal(b, p)
}

// EventRegistration represents one registration for an event. The sequence
// number is unique per event and assigned in registration order.
type EventRegistration struct {
	ID             string          `db:"id" json:"id"`
	EventID        string          `db:"event_id" json:"eventId"`
	EventName      string          `db:"event_name" json:"eventName"`
	UserID         string          `db:"user_id" json:"userId"`
	UserEmail      string          `db:"user_email" json:"userEmail"`
	SequenceNumber int             `db:"sequence_number" json:"sequenceNumber"`
	Participants   ParticipantList `db:"participants" json:"participants"`
	GroupName      *string         `db:"group_name" json:"groupName,omitempty"`
	ContactPhone   string          `db:"contact_phone" json:"contactPhoneNumber"`
	Status         string          `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}
