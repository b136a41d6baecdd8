// Package storage persists bookings and teams as two JSON arrays in a
// kvstore.Store. Dates are encoded as RFC 3339 (ISO-8601) strings.
//
// A payload that cannot be decoded is logged and treated as an empty
// collection; the next write to that collection replaces it.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Vadied/party-manager/internal/kvstore"
	"github.com/Vadied/party-manager/internal/models"
)

// Collection keys.
const (
	BookingsKey = "rpg-bookings"
	TeamsKey    = "rpg-teams"
)

// ErrNotFound is returned when an update or delete names an unknown id.
var ErrNotFound = errors.New("record not found")

// Repository is the persistence adapter used by the domain services.
type Repository struct {
	kv kvstore.Store
}

// New returns a Repository over kv.
func New(kv kvstore.Store) *Repository {
	return &Repository{kv: kv}
}

// View runs fn against a read-only snapshot of both collections.
func (r *Repository) View(ctx context.Context, fn func(*Tx) error) error {
	return r.kv.View(ctx, func(t kvstore.Tx) error {
		return fn(&Tx{kv: t})
	})
}

// Update runs fn in one store transaction. Either every write fn makes is
// kept or none is.
func (r *Repository) Update(ctx context.Context, fn func(*Tx) error) error {
	return r.kv.Update(ctx, func(t kvstore.Tx) error {
		return fn(&Tx{kv: t})
	})
}

// Bookings loads every booking in insertion order.
func (r *Repository) Bookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := r.View(ctx, func(tx *Tx) (err error) {
		out, err = tx.Bookings()
		return err
	})
	return out, err
}

// Teams loads every team in insertion order.
func (r *Repository) Teams(ctx context.Context) ([]models.Team, error) {
	var out []models.Team
	err := r.View(ctx, func(tx *Tx) (err error) {
		out, err = tx.Teams()
		return err
	})
	return out, err
}

// AppendBooking stores a new booking at the end of the collection.
func (r *Repository) AppendBooking(ctx context.Context, b models.Booking) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.AppendBooking(b) })
}

// SetBookingStatus overwrites the status of booking id.
func (r *Repository) SetBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.SetBookingStatus(id, status) })
}

// DeleteBooking removes booking id.
func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.DeleteBooking(id) })
}

// AppendTeam stores a new team at the end of the collection.
func (r *Repository) AppendTeam(ctx context.Context, t models.Team) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.AppendTeam(t) })
}

// SetTeamStatus overwrites the status of team id.
func (r *Repository) SetTeamStatus(ctx context.Context, id string, status models.TeamStatus) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.SetTeamStatus(id, status) })
}

// DeleteTeam removes team id. Bookings embedded in the team are untouched.
func (r *Repository) DeleteTeam(ctx context.Context, id string) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.DeleteTeam(id) })
}

// Tx exposes the collections inside one store transaction.
type Tx struct {
	kv kvstore.Tx
}

// Bookings loads every booking.
func (tx *Tx) Bookings() ([]models.Booking, error) {
	return load[models.Booking](tx.kv, BookingsKey)
}

// Teams loads every team.
func (tx *Tx) Teams() ([]models.Team, error) {
	return load[models.Team](tx.kv, TeamsKey)
}

// AppendBooking adds b to the end of the bookings collection.
func (tx *Tx) AppendBooking(b models.Booking) error {
	bookings, err := tx.Bookings()
	if err != nil {
		return err
	}
	return save(tx.kv, BookingsKey, append(bookings, b))
}

// SetBookingStatus overwrites the status of booking id.
func (tx *Tx) SetBookingStatus(id string, status models.BookingStatus) error {
	return modify(tx.kv, BookingsKey, id, func(b models.Booking) string { return b.ID },
		func(b *models.Booking) { b.Status = status })
}

// DeleteBooking removes booking id.
func (tx *Tx) DeleteBooking(id string) error {
	return remove(tx.kv, BookingsKey, id, func(b models.Booking) string { return b.ID })
}

// AppendTeam adds t to the end of the teams collection.
func (tx *Tx) AppendTeam(t models.Team) error {
	teams, err := tx.Teams()
	if err != nil {
		return err
	}
	return save(tx.kv, TeamsKey, append(teams, t))
}

// SetTeamStatus overwrites the status of team id.
func (tx *Tx) SetTeamStatus(id string, status models.TeamStatus) error {
	return modify(tx.kv, TeamsKey, id, func(t models.Team) string { return t.ID },
		func(t *models.Team) { t.Status = status })
}

// DeleteTeam removes team id.
func (tx *Tx) DeleteTeam(id string) error {
	return remove(tx.kv, TeamsKey, id, func(t models.Team) string { return t.ID })
}

func load[T any](kv kvstore.Tx, key string) ([]T, error) {
	raw, err := kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("storage: discarding unreadable %s payload: %v", key, err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T any](kv kvstore.Tx, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Put(key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func modify[T any](kv kvstore.Tx, key, id string, idOf func(T) string, change func(*T)) error {
	items, err := load[T](kv, key)
	if err != nil {
		return err
	}
	for i := range items {
		if idOf(items[i]) == id {
			change(&items[i])
			return save(kv, key, items)
		}
	}
	return fmt.Errorf("%s %s: %w", key, id, ErrNotFound)
}

func remove[T any](kv kvstore.Tx, key, id string, idOf func(T) string) error {
	items, err := load[T](kv, key)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if idOf(item) != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return fmt.Errorf("%s %s: %w", key, id, ErrNotFound)
	}
	return save(kv, key, kept)
}
