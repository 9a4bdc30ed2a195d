package models

import "github.com/shopspring/decimal"

// Request models
type SignUpRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	Name       string  `json:"name" binding:"required"`
	BuildingNo *int    `json:"buildingNo"`
	FlatNo     *string `json:"flatNo"`
	ContactNo  *string `json:"contactNo"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddDonationRequest struct {
	IsExternal      bool            `json:"isExternal"`
	BuildingNo      *int            `json:"buildingNo"`
	FlatNo          *string         `json:"flatNo"`
	ContributorName *string         `json:"contributorName"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=Cash UPI"`
	Date            string          `json:"date" binding:"required"` // YYYY-MM-DD
	ReceivedBy      *string         `json:"receivedBy"`
}

// UpdateDonationRequest carries a partial update: nil fields mean "no
// change", not "clear to null". The financial year is immutable and has no
// field here.
type UpdateDonationRequest struct {
	IsExternal      *bool            `json:"isExternal"`
	BuildingNo      *int             `json:"buildingNo"`
	FlatNo          *string          `json:"flatNo"`
	ContributorName *string          `json:"contributorName"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentMethod   *string          `json:"paymentMethod" binding:"omitempty,oneof=Cash UPI"`
	Date            *string          `json:"date"`
	ReceivedBy      *string          `json:"receivedBy"`
}

type AddExpenseRequest struct {
	Description   string          `json:"description" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=Cash UPI"`
	Date          string          `json:"date" binding:"required"` // YYYY-MM-DD
	ExpenseBy     *string         `json:"expenseBy"`
	Receipt       *string         `json:"receipt"`
}

type UpdateExpenseRequest struct {
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,oneof=Cash UPI"`
	Date          *string          `json:"date"`
	ExpenseBy     *string          `json:"expenseBy"`
	Receipt       *string          `json:"receipt"`
}

type ExpenseSourceRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateEventRequest struct {
	Name                 string  `json:"name" binding:"required"`
	Description          string  `json:"description"`
	Date                 string  `json:"date" binding:"required"`                 // YYYY-MM-DD
	RegistrationDeadline string  `json:"registrationDeadline" binding:"required"` // YYYY-MM-DD
	Venue                *string `json:"venue"`
	MaxParticipants      *int    `json:"maxParticipants"`
}

type UpdateEventRequest struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	Date                 *string `json:"date"`
	RegistrationDeadline *string `json:"registrationDeadline"`
	Venue                *string `json:"venue"`
	MaxParticipants      *int    `json:"maxParticipants"`
	IsActive             *bool   `json:"isActive"`
}

type RegisterEventRequest struct {
	Participants []Participant `json:"participants" binding:"required,min=1,dive"`
	GroupName    *string       `json:"groupName"`
	ContactPhone string        `json:"contactPhoneNumber" binding:"required"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type DonationResponse struct {
	Status   string    `json:"status"`
	Donation *Donation `json:"donation,omitempty"`
}

type DonationListResponse struct {
	Status        string     `json:"status"`
	FinancialYear string     `json:"financialYear"`
	Donations     []Donation `json:"donations"`
}

type EditHistoryResponse struct {
	Status      string      `json:"status"`
	DonationID  string      `json:"donationId"`
	EditHistory EditHistory `json:"editHistory"`
}

type SummaryResponse struct {
	Status        string          `json:"status"`
	FinancialYear string          `json:"financialYear"`
	Income        decimal.Decimal `json:"income"`
	Expenses      decimal.Decimal `json:"expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

type YearsResponse struct {
	Status string   `json:"status"`
	Years  []string `json:"years"`
}

type RegistrationResponse struct {
	Status         string `json:"status"`
	RegistrationID string `json:"registrationId,omitempty"`
	SequenceNumber int    `json:"sequenceNumber,omitempty"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
