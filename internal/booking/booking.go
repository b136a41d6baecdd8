// Package booking validates, creates and reviews session bookings.
package booking

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/storage"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Fields is what the public booking form submits.
type Fields struct {
	Email         string                `json:"email"`
	Phone         string                `json:"phone"`
	FirstName     string                `json:"firstName"`
	LastName      string                `json:"lastName"`
	Pronouns      string                `json:"pronouns"`
	Roles         []models.Role         `json:"roles"`
	GamingSystems []models.GamingSystem `json:"gamingSystems"`
}

// Normalize trims text fields and drops repeated roles and systems.
func (f Fields) Normalize() Fields {
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Pronouns = strings.TrimSpace(f.Pronouns)
	f.Roles = dedupe(f.Roles)
	f.GamingSystems = dedupe(f.GamingSystems)
	return f
}

// Validate checks f and returns one message per invalid field.
func Validate(f Fields) models.ValidationErrors {
	errs := models.ValidationErrors{}

	switch {
	case f.Email == "":
		errs.Add("email", i18n.T("Email is required"))
	case !emailPattern.MatchString(f.Email):
		errs.Add("email", i18n.T("Email is not valid"))
	}
	if f.Phone == "" {
		errs.Add("phone", i18n.T("Phone number is required"))
	}
	if f.FirstName == "" {
		errs.Add("firstName", i18n.T("First name is required"))
	}
	if f.LastName == "" {
		errs.Add("lastName", i18n.T("Last name is required"))
	}
	if f.Pronouns == "" {
		errs.Add("pronouns", i18n.T("Pronouns are required"))
	}

	if len(f.Roles) == 0 {
		errs.Add("roles", i18n.T("Select at least one role"))
	}
	for _, r := range f.Roles {
		if !r.Valid() {
			errs.Add("roles", i18n.T("Unknown role: %s", r))
		}
	}

	if len(f.GamingSystems) == 0 {
		errs.Add("gamingSystems", i18n.T("Select at least one gaming system"))
	}
	for _, s := range f.GamingSystems {
		if !s.Valid() {
			errs.Add("gamingSystems", i18n.T("Unknown gaming system: %s", s))
		}
	}
	return errs
}

// Store is the persistence the service needs.
type Store interface {
	Bookings(ctx context.Context) ([]models.Booking, error)
	AppendBooking(ctx context.Context, b models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
	Update(ctx context.Context, fn func(*storage.Tx) error) error
}

// Service implements the booking lifecycle.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewService returns a Service persisting through store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, newID: uuid.NewString}
}

// Create validates f and stores a new pending booking. Invalid input returns
// models.ValidationErrors and stores nothing.
func (s *Service) Create(ctx context.Context, f Fields) (*models.Booking, error) {
	f = f.Normalize()
	if err := Validate(f).Err(); err != nil {
		return nil, err
	}

	b := models.Booking{
		ID:            s.newID(),
		Email:         f.Email,
		Phone:         f.Phone,
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		Pronouns:      f.Pronouns,
		Roles:         f.Roles,
		GamingSystems: f.GamingSystems,
		CreatedAt:     s.now(),
		Status:        models.BookingStatusPending,
	}
	if err := s.store.AppendBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("store booking: %w", err)
	}
	return &b, nil
}

// SetStatus moves booking id to status. Unknown ids return storage.ErrNotFound;
// changes outside the transition table return models.ErrTransitionNotAllowed.
func (s *Service) SetStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return models.ValidationErrors{"status": i18n.T("Unknown status: %s", status)}
	}
	return s.store.Update(ctx, func(tx *storage.Tx) error {
		bookings, err := tx.Bookings()
		if err != nil {
			return err
		}
		i := slices.IndexFunc(bookings, func(b models.Booking) bool { return b.ID == id })
		if i < 0 {
			return fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
		}
		current := bookings[i].Status
		if !current.CanTransitionTo(status) {
			return fmt.Errorf("booking %s: %w", id, &models.TransitionError{From: string(current), To: string(status)})
		}
		if current == status {
			return nil
		}
		return tx.SetBookingStatus(id, status)
	})
}

// Delete removes booking id. Teams that embed it keep their copy.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteBooking(ctx, id)
}

// List returns the bookings with status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterBookings(bookings, status), nil
}

// Pending returns the bookings still waiting for a team.
func (s *Service) Pending(ctx context.Context) ([]models.Booking, error) {
	return s.List(ctx, models.BookingStatusPending)
}

// CountByStatus tallies bookings per status. Every known status is present.
func CountByStatus(bookings []models.Booking) map[models.BookingStatus]int {
	counts := make(map[models.BookingStatus]int, len(models.BookingStatuses))
	for _, st := range models.BookingStatuses {
		counts[st] = 0
	}
	for _, b := range bookings {
		counts[b.Status]++
	}
	return counts
}

func dedupe[T comparable](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
