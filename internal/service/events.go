package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sgvihar/society-server/internal/ledger"
	"github.com/sgvihar/society-server/internal/models"
	"github.com/sgvihar/society-server/internal/repository"
)

// Event methods
func (s *DefaultService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	date, err := time.Parse(ledger.DateLayout, req.Date)
	if err != nil {
		return nil, &ledger.ValidationError{Reason: "date must be in YYYY-MM-DD format"}
	}
	deadline, err := time.Parse(ledger.DateLayout, req.RegistrationDeadline)
	if err != nil {
		return nil, &ledger.ValidationError{Reason: "registration deadline must be in YYYY-MM-DD format"}
	}
	if deadline.After(date) {
		return nil, &ledger.ValidationError{Reason: "registration deadline cannot be after the event date"}
	}

	event := &models.Event{
		Name:                 req.Name,
		Description:          req.Description,
		Date:                 date,
		RegistrationDeadline: deadline,
		Venue:                req.Venue,
		MaxParticipants:      req.MaxParticipants,
		IsActive:             true,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}

	return event, nil
}

func (s *DefaultService) UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	if event == nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse(ledger.DateLayout, *req.Date)
		if err != nil {
			return nil, &ledger.ValidationError{Reason: "date must be in YYYY-MM-DD format"}
		}
		event.Date = date
	}
	if req.RegistrationDeadline != nil {
		deadline, err := time.Parse(ledger.DateLayout, *req.RegistrationDeadline)
		if err != nil {
			return nil, &ledger.ValidationError{Reason: "registration deadline must be in YYYY-MM-DD format"}
		}
		event.RegistrationDeadline = deadline
	}
	if req.Venue != nil {
		event.Venue = req.Venue
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = req.MaxParticipants
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating event: %w", err)
	}

	return event, nil
}

func (s *DefaultService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting event: %w", err)
	}
	return nil
}

func (s *DefaultService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

// RegisterForEvent checks the event gates (active, deadline, capacity) and
// creates the registration. The per-event sequence number is assigned
// inside the repository transaction.
func (s *DefaultService) RegisterForEvent(ctx context.Context, userID, eventID string, req models.RegisterEventRequest) (*models.EventRegistration, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	if event == nil {
		return nil, ErrNotFound
	}

	if !event.IsActive {
		return nil, ErrEventClosed
	}
	if time.Now().After(event.RegistrationDeadline.AddDate(0, 0, 1)) {
		// Deadline is a date; registrations are accepted through that day.
		return nil, ErrDeadlinePassed
	}
	if event.MaxParticipants != nil &&
		event.CurrentParticipants+len(req.Participants) > *event.MaxParticipants {
		return nil, ErrEventFull
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	registration := &models.EventRegistration{
		EventID:      event.ID,
		EventName:    event.Name,
		UserID:       user.ID,
		UserEmail:    user.Email,
		Participants: req.Participants,
		GroupName:    req.GroupName,
		ContactPhone: req.ContactPhone,
		Status:       models.RegistrationConfirmed,
	}

	if err := s.repo.CreateRegistration(ctx, registration); err != nil {
		return nil, fmt.Errorf("error creating registration: %w", err)
	}

	return registration, nil
}

func (s *DefaultService) ListEventRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	registrations, err := s.repo.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	return registrations, nil
}

func (s *DefaultService) ListUserRegistrations(ctx context.Context, userID string) ([]models.EventRegistration, error) {
	registrations, err := s.repo.ListRegistrationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	return registrations, nil
}

// CancelRegistration marks a registration cancelled. Residents may only
// cancel their own; admins may cancel any.
func (s *DefaultService) CancelRegistration(ctx context.Context, userID, registrationID string, isAdmin bool) error {
	registration, err := s.repo.GetRegistration(ctx, registrationID)
	if err != nil {
		return fmt.Errorf("error getting registration: %w", err)
	}
	if registration == nil {
		return ErrNotFound
	}

	if !isAdmin && registration.UserID != userID {
		return ErrForbidden
	}

	if err := s.repo.UpdateRegistrationStatus(ctx, registrationID, models.RegistrationCancelled); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error cancelling registration: %w", err)
	}

	return nil
}
