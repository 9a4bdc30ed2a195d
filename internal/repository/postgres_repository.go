package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sgvihar/society-server/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrUniqueViolation is returned when an insert or update would break a
// uniqueness constraint. Non-Postgres backends return it directly.
var ErrUniqueViolation = errors.New("unique constraint violation")

// IsUniqueViolation reports whether err is a unique-constraint violation,
// either the sentinel or a Postgres 23505 error. The partial unique index
// on live internal donations is the persistence-layer backstop for the
// per-unit admission check.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// Donation operations
	CreateDonation(ctx context.Context, donation *models.Donation) error
	UpdateDonation(ctx context.Context, donation *models.Donation) error
	SoftDeleteDonation(ctx context.Context, donation *models.Donation) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	ListLiveDonations(ctx context.Context) ([]models.Donation, error)
	ListDonationsByYear(ctx context.Context, financialYear string) ([]models.Donation, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *models.Expense) error
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpenses(ctx context.Context) ([]models.Expense, error)

	// Expense source operations
	CreateExpenseSource(ctx context.Context, source *models.ExpenseSource) error
	UpdateExpenseSource(ctx context.Context, source *models.ExpenseSource) error
	DeleteExpenseSource(ctx context.Context, id string) error
	ListExpenseSources(ctx context.Context) ([]models.ExpenseSource, error)

	// Event operations
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)

	// Event registration operations
	CreateRegistration(ctx context.Context, registration *models.EventRegistration) error
	GetRegistration(ctx context.Context, id string) (*models.EventRegistration, error)
	ListRegistrationsByEvent(ctx context.Context, eventID string) ([]models.EventRegistration, error)
	ListRegistrationsByUser(ctx context.Context, userID string) ([]models.EventRegistration, error)
	UpdateRegistrationStatus(ctx context.Context, id, status string) error
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password, role, building_no, flat_no, contact_no, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Password, user.Role,
		user.BuildingNo, user.FlatNo, user.ContactNo, user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT * FROM users ORDER BY created_at`

	var users []models.User
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// Donation repository methods
func (r *PostgresRepository) CreateDonation(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (id, building_no, flat_no, contributor_name, is_external, amount,
			payment_method, date, financial_year, received_by, edit_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	if donation.ID == "" {
		donation.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		donation.ID, donation.BuildingNo, donation.FlatNo, donation.ContributorName,
		donation.IsExternal, donation.Amount, donation.PaymentMethod, donation.Date,
		donation.FinancialYear, donation.ReceivedBy, donation.EditHistory,
		donation.CreatedAt, donation.UpdatedAt)

	return err
}

// UpdateDonation persists the full record including the complete edit
// history array; history is not an incremental append at this layer.
func (r *PostgresRepository) UpdateDonation(ctx context.Context, donation *models.Donation) error {
	query := `
		UPDATE donations
		SET building_no = $2, flat_no = $3, contributor_name = $4, is_external = $5,
			amount = $6, payment_method = $7, date = $8, received_by = $9,
			edit_history = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	donation.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		donation.ID, donation.BuildingNo, donation.FlatNo, donation.ContributorName,
		donation.IsExternal, donation.Amount, donation.PaymentMethod, donation.Date,
		donation.ReceivedBy, donation.EditHistory, donation.UpdatedAt)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SoftDeleteDonation stamps deleted_at and persists the edit history
// carrying the terminal deleted entry. The row leaves the live set but the
// audit trail survives.
func (r *PostgresRepository) SoftDeleteDonation(ctx context.Context, donation *models.Donation) error {
	query := `
		UPDATE donations
		SET edit_history = $2, deleted_at = $3, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query, donation.ID, donation.EditHistory, now)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	donation.DeletedAt = &now
	return nil
}

func (r *PostgresRepository) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	query := `SELECT * FROM donations WHERE id = $1`

	var donation models.Donation
	err := r.db.GetContext(ctx, &donation, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Donation not found
		}
		return nil, err
	}

	return &donation, nil
}

func (r *PostgresRepository) ListLiveDonations(ctx context.Context) ([]models.Donation, error) {
	query := `SELECT * FROM donations WHERE deleted_at IS NULL ORDER BY date DESC, created_at DESC`

	var donations []models.Donation
	err := r.db.SelectContext(ctx, &donations, query)
	if err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *PostgresRepository) ListDonationsByYear(ctx context.Context, financialYear string) ([]models.Donation, error) {
	query := `
		SELECT * FROM donations
		WHERE deleted_at IS NULL AND financial_year = $1
		ORDER BY date DESC, created_at DESC
	`

	var donations []models.Donation
	err := r.db.SelectContext(ctx, &donations, query, financialYear)
	if err != nil {
		return nil, err
	}

	return donations, nil
}

// Expense repository methods
func (r *PostgresRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, description, category, amount, payment_method, date,
			financial_year, expense_by, receipt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.Description, expense.Category, expense.Amount,
		expense.PaymentMethod, expense.Date, expense.FinancialYear,
		expense.ExpenseBy, expense.Receipt, expense.CreatedAt, expense.UpdatedAt)

	return err
}

func (r *PostgresRepository) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET description = $2, category = $3, amount = $4, payment_method = $5,
			date = $6, expense_by = $7, receipt = $8, updated_at = $9
		WHERE id = $1
	`

	expense.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.Description, expense.Category, expense.Amount,
		expense.PaymentMethod, expense.Date, expense.ExpenseBy, expense.Receipt,
		expense.UpdatedAt)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteExpense(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT * FROM expenses WHERE id = $1`

	var expense models.Expense
	err := r.db.GetContext(ctx, &expense, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Expense not found
		}
		return nil, err
	}

	return &expense, nil
}

func (r *PostgresRepository) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	query := `SELECT * FROM expenses ORDER BY date DESC, created_at DESC`

	var expenses []models.Expense
	err := r.db.SelectContext(ctx, &expenses, query)
	if err != nil {
		return nil, err
	}

	return expenses, nil
}

// Expense source repository methods
func (r *PostgresRepository) CreateExpenseSource(ctx context.Context, source *models.ExpenseSource) error {
	query := `INSERT INTO expense_sources (id, name, created_at) VALUES ($1, $2, $3)`

	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	source.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query, source.ID, source.Name, source.CreatedAt)
	return err
}

func (r *PostgresRepository) UpdateExpenseSource(ctx context.Context, source *models.ExpenseSource) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE expense_sources SET name = $2 WHERE id = $1`, source.ID, source.Name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteExpenseSource(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expense_sources WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ListExpenseSources(ctx context.Context) ([]models.ExpenseSource, error) {
	query := `SELECT * FROM expense_sources ORDER BY created_at`

	var sources []models.ExpenseSource
	err := r.db.SelectContext(ctx, &sources, query)
	if err != nil {
		return nil, err
	}

	return sources, nil
}

// Event repository methods
func (r *PostgresRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, name, description, date, registration_deadline, venue,
			max_participants, current_participants, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Description, event.Date, event.RegistrationDeadline,
		event.Venue, event.MaxParticipants, event.CurrentParticipants, event.IsActive,
		event.CreatedAt, event.UpdatedAt)

	return err
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $2, description = $3, date = $4, registration_deadline = $5,
			venue = $6, max_participants = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	event.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Description, event.Date, event.RegistrationDeadline,
		event.Venue, event.MaxParticipants, event.IsActive, event.UpdatedAt)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Delete registrations first (due to foreign key constraint)
	_, err = tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1`, id)
	if err != nil {
		return err
	}

	var result sql.Result
	result, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	var rows int64
	rows, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		err = ErrNotFound
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT * FROM events WHERE id = $1`

	var event models.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Event not found
		}
		return nil, err
	}

	return &event, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	query := `SELECT * FROM events ORDER BY date`

	var events []models.Event
	err := r.db.SelectContext(ctx, &events, query)
	if err != nil {
		return nil, err
	}

	return events, nil
}

// CreateRegistration assigns the per-event sequence number and inserts the
// registration in one transaction. The event row is locked first so two
// concurrent registrations cannot claim the same number.
func (r *PostgresRepository) CreateRegistration(ctx context.Context, registration *models.EventRegistration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	_, err = tx.ExecContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, registration.EventID)
	if err != nil {
		return err
	}

	var nextSeq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM event_registrations WHERE event_id = $1`,
		registration.EventID).Scan(&nextSeq)
	if err != nil {
		return err
	}

	registration.SequenceNumber = nextSeq

	if registration.ID == "" {
		registration.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	registration.CreatedAt = now
	registration.UpdatedAt = now

	query := `
		INSERT INTO event_registrations (id, event_id, event_name, user_id, user_email,
			sequence_number, participants, group_name, contact_phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = tx.ExecContext(ctx, query,
		registration.ID, registration.EventID, registration.EventName,
		registration.UserID, registration.UserEmail, registration.SequenceNumber,
		registration.Participants, registration.GroupName, registration.ContactPhone,
		registration.Status, registration.CreatedAt, registration.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE events SET current_participants = current_participants + $2 WHERE id = $1`,
		registration.EventID, len(registration.Participants))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetRegistration(ctx context.Context, id string) (*models.EventRegistration, error) {
	query := `SELECT * FROM event_registrations WHERE id = $1`

	var registration models.EventRegistration
	err := r.db.GetContext(ctx, &registration, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Registration not found
		}
		return nil, err
	}

	return &registration, nil
}

func (r *PostgresRepository) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	query := `SELECT * FROM event_registrations WHERE event_id = $1 ORDER BY sequence_number`

	var registrations []models.EventRegistration
	err := r.db.SelectContext(ctx, &registrations, query, eventID)
	if err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *PostgresRepository) ListRegistrationsByUser(ctx context.Context, userID string) ([]models.EventRegistration, error) {
	query := `SELECT * FROM event_registrations WHERE user_id = $1 ORDER BY created_at DESC`

	var registrations []models.EventRegistration
	err := r.db.SelectContext(ctx, &registrations, query, userID)
	if err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *PostgresRepository) UpdateRegistrationStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE event_registrations SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
