package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/repository"
)

// Sentinel errors surfaced by the service layer. Handlers map them to HTTP
// status codes; validation and conflict errors come from the ledger package.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrForbidden          = errors.New("operation not permitted")
	ErrEventClosed        = errors.New("event is not open for registration")
	ErrDeadlinePassed     = errors.New("registration deadline has passed")
	ErrEventFull          = errors.New("event has reached maximum participants")
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	SeedDefaults(ctx context.Context) error
	ListUsers(ctx context.Context) ([]models.User, error)

	// Contribution ledger
	AddDonation(ctx context.Context, actor string, req models.AddDonationRequest) (*models.Donation, error)
	UpdateDonation(ctx context.Context, actor, id string, req models.UpdateDonationRequest) (*models.Donation, error)
	DeleteDonation(ctx context.Context, actor, id string) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	ListDonations(ctx context.Context, financialYear string) ([]models.Donation, error)
	GetEditHistory(ctx context.Context, id string) (models.EditHistory, error)
	FindDonationByFlat(ctx context.Context, buildingNo int, flatNo, financialYear string) (*models.Donation, error)

	// Aggregates
	ComputeSummary(ctx context.Context, financialYear string) (*models.SummaryResponse, error)
	ListFinancialYears(ctx context.Context) ([]string, error)

	// Expense bookkeeping
	AddExpense(ctx context.Context, req models.AddExpenseRequest) (*models.Expense, error)
	UpdateExpense(ctx context.Context, id string, req models.UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, financialYear string) ([]models.Expense, error)

	// Expense sources
	AddExpenseSource(ctx context.Context, name string) (*models.ExpenseSource, error)
	RenameExpenseSource(ctx context.Context, id, name string) error
	DeleteExpenseSource(ctx context.Context, id string) error
	ListExpenseSources(ctx context.Context) ([]models.ExpenseSource, error)

	// Events and registrations
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	RegisterForEvent(ctx context.Context, userID, eventID string, req models.RegisterEventRequest) (*models.EventRegistration, error)
	ListEventRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error)
	ListUserRegistrations(ctx context.Context, userID string) ([]models.EventRegistration, error)
	CancelRegistration(ctx context.Context, userID, registrationID string, isAdmin bool) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	adminEmail    string
	adminPassword string
	adminName     string
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret, adminEmail, adminPassword, adminName string) Service {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		adminName:     adminName,
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existingUser != nil {
		return nil, ErrEmailExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	// Create the user; self-registration is always a resident account
	user := &models.User{
		Email:      req.Email,
		Name:       req.Name,
		Password:   string(hashedPassword),
		Role:       models.RoleUser,
		BuildingNo: req.BuildingNo,
		FlatNo:     req.FlatNo,
		ContactNo:  req.ContactNo,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &models.AuthResponse{
		Status: "success",
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	// Get the user
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Generate JWT token
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// SeedDefaults creates the admin account and the default expense sources
// when they are missing. Safe to call on every startup.
func (s *DefaultService) SeedDefaults(ctx context.Context) error {
	admin, err := s.repo.GetUserByEmail(ctx, s.adminEmail)
	if err != nil {
		return fmt.Errorf("error checking admin account: %w", err)
	}

	if admin == nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("error hashing admin password: %w", err)
		}

		user := &models.User{
			Email:    s.adminEmail,
			Name:     s.adminName,
			Password: string(hashedPassword),
			Role:     models.RoleAdmin,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("error creating admin account: %w", err)
		}
	}

	sources, err := s.repo.ListExpenseSources(ctx)
	if err != nil {
		return fmt.Errorf("error listing expense sources: %w", err)
	}

	if len(sources) == 0 {
		for _, name := range []string{"Society Fund", "Maintenance Fund", "Emergency Fund"} {
			source := &models.ExpenseSource{Name: name}
			if err := s.repo.CreateExpenseSource(ctx, source); err != nil {
				return fmt.Errorf("error seeding expense source: %w", err)
			}
		}
	}

	return nil
}

// ListUsers returns the resident directory for the admin dashboard.
func (s *DefaultService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":  user.ID, // subject
		"name": user.Name,
		"role": user.Role,
		"exp":  expirationTime.Unix(),
		"iat":  time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
