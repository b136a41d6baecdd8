package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Vadied/party-manager/internal/booking"
	"github.com/Vadied/party-manager/internal/eligibility"
	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/team"
)

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type catalogResponse struct {
	GamingSystems     []option `json:"gamingSystems"`
	Roles             []option `json:"roles"`
	BookingStatuses   []option `json:"bookingStatuses"`
	TeamStatuses      []option `json:"teamStatuses"`
	DefaultMaxPlayers int      `json:"defaultMaxPlayers"`
	MinMaxPlayers     int      `json:"minMaxPlayers"`
	MaxMaxPlayers     int      `json:"maxMaxPlayers"`
}

// Catalog lists the enumerations with their display labels.
func Catalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := catalogResponse{
		DefaultMaxPlayers: models.DefaultMaxPlayers,
		MinMaxPlayers:     models.MinMaxPlayers,
		MaxMaxPlayers:     models.MaxMaxPlayers,
	}
	for _, s := range models.GamingSystems {
		resp.GamingSystems = append(resp.GamingSystems, option{string(s), s.Label()})
	}
	for _, role := range models.Roles {
		resp.Roles = append(resp.Roles, option{string(role), role.Label()})
	}
	for _, s := range models.BookingStatuses {
		resp.BookingStatuses = append(resp.BookingStatuses, option{string(s), s.Label()})
	}
	for _, s := range models.TeamStatuses {
		resp.TeamStatuses = append(resp.TeamStatuses, option{string(s), s.Label()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateBooking handles the public booking form. delay simulates the
// submission round trip; zero disables it.
func CreateBooking(svc *booking.Service, delay time.Duration) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var f booking.Fields
		if err := readJSON(w, r, &f); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
		b, err := svc.Create(r.Context(), f)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// ListBookings returns all bookings, or those with ?status=.
func ListBookings(svc *booking.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		status := models.BookingStatus(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			handleError(w, r, models.ValidationErrors{"status": i18n.T("Unknown status: %s", status)})
			return
		}
		bookings, err := svc.List(r.Context(), status)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, bookings)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetBookingStatus applies {"status": ...} to booking :id.
func SetBookingStatus(svc *booking.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req statusRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := svc.SetStatus(r.Context(), ps.ByName("id"), models.BookingStatus(req.Status)); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteBooking removes booking :id.
func DeleteBooking(svc *booking.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := svc.Delete(r.Context(), ps.ByName("id")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type statsResponse struct {
	TotalBookings     int `json:"totalBookings"`
	PendingBookings   int `json:"pendingBookings"`
	AssignedBookings  int `json:"assignedBookings"`
	CancelledBookings int `json:"cancelledBookings"`
	Teams             int `json:"teams"`
}

// Stats returns the dashboard counters.
func Stats(bookings *booking.Service, teams *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		all, err := bookings.List(r.Context(), "")
		if err != nil {
			handleError(w, r, err)
			return
		}
		allTeams, err := teams.List(r.Context(), "")
		if err != nil {
			handleError(w, r, err)
			return
		}
		counts := booking.CountByStatus(all)
		writeJSON(w, http.StatusOK, statsResponse{
			TotalBookings:     len(all),
			PendingBookings:   counts[models.BookingStatusPending],
			AssignedBookings:  counts[models.BookingStatusAssigned],
			CancelledBookings: counts[models.BookingStatusCancelled],
			Teams:             len(allTeams),
		})
	}
}

// Candidates returns who may be picked as master and players for
// ?system=, with ?master= removed from the players. Without ?system= every
// system matches.
func Candidates(svc *booking.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		q := r.URL.Query()
		var system models.GamingSystem
		if raw := strings.TrimSpace(q.Get("system")); raw != "" {
			parsed, ok := models.ParseGamingSystem(raw)
			if !ok {
				handleError(w, r, models.ValidationErrors{"system": i18n.T("Unknown gaming system: %s", raw)})
				return
			}
			system = parsed
		}
		pending, err := svc.Pending(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, eligibility.For(pending, system, q.Get("master")))
	}
}
