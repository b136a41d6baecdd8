package models

import (
	"slices"
	"strings"
	"time"

	"github.com/Vadied/party-manager/internal/i18n"
)

// BookingStatus tracks a booking through review.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAssigned  BookingStatus = "assigned"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists the statuses in display order.
var BookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusAssigned, BookingStatusCancelled}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusAssigned, BookingStatusCancelled},
	BookingStatusAssigned: {BookingStatusPending},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	return slices.Contains(BookingStatuses, s)
}

// CanTransitionTo reports whether an administrator may move a booking from s
// to next. Writing the current status again is always permitted.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	return slices.Contains(bookingTransitions[s], next)
}

// Label returns the localized display name.
func (s BookingStatus) Label() string {
	switch s {
	case BookingStatusPending:
		return i18n.T("Pending")
	case BookingStatusAssigned:
		return i18n.T("Assigned")
	case BookingStatusCancelled:
		return i18n.T("Cancelled")
	}
	return string(s)
}

// Booking is one request to take part in a session. The JSON shape is the
// persisted layout.
type Booking struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	FirstName     string         `json:"firstName"`
	LastName      string         `json:"lastName"`
	Pronouns      string         `json:"pronouns"`
	Roles         []Role         `json:"roles"`
	GamingSystems []GamingSystem `json:"gamingSystems"`
	CreatedAt     time.Time      `json:"createdAt"`
	Status        BookingStatus  `json:"status"`
}

// HasRole reports whether the booking declared role r.
func (b Booking) HasRole(r Role) bool {
	return slices.Contains(b.Roles, r)
}

// Plays reports whether the booking listed system s among its preferences.
func (b Booking) Plays(s GamingSystem) bool {
	return slices.Contains(b.GamingSystems, s)
}

// FullName joins first and last name.
func (b Booking) FullName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

// Clone returns a copy that shares no slices with b.
func (b Booking) Clone() Booking {
	b.Roles = slices.Clone(b.Roles)
	b.GamingSystems = slices.Clone(b.GamingSystems)
	return b
}

// FilterBookings returns the bookings with the given status, preserving order.
// An empty status matches everything.
func FilterBookings(bookings []Booking, status BookingStatus) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out
}
