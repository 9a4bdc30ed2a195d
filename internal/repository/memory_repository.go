package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sgvihar/society-server/internal/models"
)

// MemoryRepository is an in-memory Repository implementation. It backs the
// test suites and the DATA_BACKEND=memory development mode, and enforces
// the same per-unit uniqueness constraint the Postgres partial index does.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[string]models.User
	donations     map[string]models.Donation
	expenses      map[string]models.Expense
	sources       map[string]models.ExpenseSource
	events        map[string]models.Event
	registrations map[string]models.EventRegistration
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[string]models.User),
		donations:     make(map[string]models.Donation),
		expenses:      make(map[string]models.Expense),
		sources:       make(map[string]models.ExpenseSource),
		events:        make(map[string]models.Event),
		registrations: make(map[string]models.EventRegistration),
	}
}

// User repository methods
func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrUniqueViolation
		}
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok {
		user := u
		return &user, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// unitTaken reports whether another live internal donation occupies the
// candidate's (building, flat, financial year) triple.
func (r *MemoryRepository) unitTaken(candidate *models.Donation) bool {
	if candidate.IsExternal || candidate.BuildingNo == nil || candidate.FlatNo == nil {
		return false
	}
	for _, d := range r.donations {
		if d.ID == candidate.ID || d.IsExternal || d.DeletedAt != nil {
			continue
		}
		if d.BuildingNo != nil && d.FlatNo != nil &&
			*d.BuildingNo == *candidate.BuildingNo &&
			*d.FlatNo == *candidate.FlatNo &&
			d.FinancialYear == candidate.FinancialYear {
			return true
		}
	}
	return false
}

// Donation repository methods
func (r *MemoryRepository) CreateDonation(ctx context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if donation.ID == "" {
		donation.ID = uuid.New().String()
	}
	if r.unitTaken(donation) {
		return ErrUniqueViolation
	}

	now := time.Now().UTC()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	r.donations[donation.ID] = *donation
	return nil
}

func (r *MemoryRepository) UpdateDonation(ctx context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.donations[donation.ID]
	if !ok || existing.DeletedAt != nil {
		return ErrNotFound
	}
	if r.unitTaken(donation) {
		return ErrUniqueViolation
	}

	donation.UpdatedAt = time.Now().UTC()
	r.donations[donation.ID] = *donation
	return nil
}

func (r *MemoryRepository) SoftDeleteDonation(ctx context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.donations[donation.ID]
	if !ok || existing.DeletedAt != nil {
		return ErrNotFound
	}

	now := time.Now().UTC()
	existing.EditHistory = donation.EditHistory
	existing.DeletedAt = &now
	existing.UpdatedAt = now
	r.donations[donation.ID] = existing

	donation.DeletedAt = &now
	return nil
}

func (r *MemoryRepository) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.donations[id]; ok {
		donation := d
		return &donation, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListLiveDonations(ctx context.Context) ([]models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	donations := make([]models.Donation, 0, len(r.donations))
	for _, d := range r.donations {
		if d.DeletedAt == nil {
			donations = append(donations, d)
		}
	}
	sortDonations(donations)
	return donations, nil
}

func (r *MemoryRepository) ListDonationsByYear(ctx context.Context, financialYear string) ([]models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	donations := make([]models.Donation, 0)
	for _, d := range r.donations {
		if d.DeletedAt == nil && d.FinancialYear == financialYear {
			donations = append(donations, d)
		}
	}
	sortDonations(donations)
	return donations, nil
}

func sortDonations(donations []models.Donation) {
	sort.Slice(donations, func(i, j int) bool {
		if !donations[i].Date.Equal(donations[j].Date) {
			return donations[i].Date.After(donations[j].Date)
		}
		return donations[i].CreatedAt.After(donations[j].CreatedAt)
	})
}

// Expense repository methods
func (r *MemoryRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	r.expenses[expense.ID] = *expense
	return nil
}

func (r *MemoryRepository) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.expenses[expense.ID]; !ok {
		return ErrNotFound
	}

	expense.UpdatedAt = time.Now().UTC()
	r.expenses[expense.ID] = *expense
	return nil
}

func (r *MemoryRepository) DeleteExpense(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *MemoryRepository) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.expenses[id]; ok {
		expense := e
		return &expense, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expenses := make([]models.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		expenses = append(expenses, e)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
	return expenses, nil
}

// Expense source repository methods
func (r *MemoryRepository) CreateExpenseSource(ctx context.Context, source *models.ExpenseSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	source.CreatedAt = time.Now().UTC()

	r.sources[source.ID] = *source
	return nil
}

func (r *MemoryRepository) UpdateExpenseSource(ctx context.Context, source *models.ExpenseSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sources[source.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = source.Name
	r.sources[source.ID] = existing
	return nil
}

func (r *MemoryRepository) DeleteExpenseSource(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[id]; !ok {
		return ErrNotFound
	}
	delete(r.sources, id)
	return nil
}

func (r *MemoryRepository) ListExpenseSources(ctx context.Context) ([]models.ExpenseSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]models.ExpenseSource, 0, len(r.sources))
	for _, s := range r.sources {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].CreatedAt.Before(sources[j].CreatedAt) })
	return sources, nil
}

// Event repository methods
func (r *MemoryRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	r.events[event.ID] = *event
	return nil
}

func (r *MemoryRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	event.CurrentParticipants = existing.CurrentParticipants
	event.UpdatedAt = time.Now().UTC()
	r.events[event.ID] = *event
	return nil
}

func (r *MemoryRepository) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.events, id)
	for regID, reg := range r.registrations {
		if reg.EventID == id {
			delete(r.registrations, regID)
		}
	}
	return nil
}

func (r *MemoryRepository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.events[id]; ok {
		event := e
		return &event, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// Event registration repository methods
func (r *MemoryRepository) CreateRegistration(ctx context.Context, registration *models.EventRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[registration.EventID]
	if !ok {
		return ErrNotFound
	}

	maxSeq := 0
	for _, reg := range r.registrations {
		if reg.EventID == registration.EventID && reg.SequenceNumber > maxSeq {
			maxSeq = reg.SequenceNumber
		}
	}
	registration.SequenceNumber = maxSeq + 1

	if registration.ID == "" {
		registration.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	registration.CreatedAt = now
	registration.UpdatedAt = now

	r.registrations[registration.ID] = *registration

	event.CurrentParticipants += len(registration.Participants)
	r.events[event.ID] = event
	return nil
}

func (r *MemoryRepository) GetRegistration(ctx context.Context, id string) (*models.EventRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.registrations[id]; ok {
		registration := reg
		return &registration, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registrations := make([]models.EventRegistration, 0)
	for _, reg := range r.registrations {
		if reg.EventID == eventID {
			registrations = append(registrations, reg)
		}
	}
	sort.Slice(registrations, func(i, j int) bool {
		return registrations[i].SequenceNumber < registrations[j].SequenceNumber
	})
	return registrations, nil
}

func (r *MemoryRepository) ListRegistrationsByUser(ctx context.Context, userID string) ([]models.EventRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registrations := make([]models.EventRegistration, 0)
	for _, reg := range r.registrations {
		if reg.UserID == userID {
			registrations = append(registrations, reg)
		}
	}
	sort.Slice(registrations, func(i, j int) bool {
		return registrations[i].CreatedAt.After(registrations[j].CreatedAt)
	})
	return registrations, nil
}

func (r *MemoryRepository) UpdateRegistrationStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	registration, ok := r.registrations[id]
	if !ok {
		return ErrNotFound
	}
	registration.Status = status
	registration.UpdatedAt = time.Now().UTC()
	r.registrations[id] = registration
	return nil
}
