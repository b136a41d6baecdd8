package models

import (
	"slices"
	"strings"
	"time"

	"github.com/Vadied/party-manager/internal/i18n"
)

const (
	// DefaultMaxPlayers is used when a team is created without a capacity.
	DefaultMaxPlayers = 4
	// MinMaxPlayers is the smallest capacity a team may declare.
	MinMaxPlayers = 2
	// MaxMaxPlayers is the largest capacity a team may declare.
	MaxMaxPlayers = 8
)

// TeamStatus tracks an assembled group.
type TeamStatus string

const (
	TeamStatusDraft     TeamStatus = "draft"
	TeamStatusConfirmed TeamStatus = "confirmed"
	TeamStatusCompleted TeamStatus = "completed"
)

// TeamStatuses lists the statuses in display order.
var TeamStatuses = []TeamStatus{TeamStatusDraft, TeamStatusConfirmed, TeamStatusCompleted}

// Valid reports whether s is a known team status.
func (s TeamStatus) Valid() bool {
	return slices.Contains(TeamStatuses, s)
}

// CanTransitionTo reports whether a team may move from s to next: forward one
// step at a time, or back to draft from anywhere.
func (s TeamStatus) CanTransitionTo(next TeamStatus) bool {
	switch {
	case s == next, next == TeamStatusDraft:
		return true
	case s == TeamStatusDraft && next == TeamStatusConfirmed:
		return true
	case s == TeamStatusConfirmed && next == TeamStatusCompleted:
		return true
	}
	return false
}

// Label returns the localized display name.
func (s TeamStatus) Label() string {
	switch s {
	case TeamStatusDraft:
		return i18n.T("Draft")
	case TeamStatusConfirmed:
		return i18n.T("Confirmed")
	case TeamStatusCompleted:
		return i18n.T("Completed")
	}
	return string(s)
}

// Team is one assembled play group. Master and Players are snapshots taken
// when the team was created; later edits to the bookings do not reach them.
type Team struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	GamingSystem GamingSystem `json:"gamingSystem"`
	Master       Booking      `json:"master"`
	Players      []Booking    `json:"players"`
	MaxPlayers   int          `json:"maxPlayers"`
	SessionDate  *time.Time   `json:"sessionDate,omitempty"`
	Status       TeamStatus   `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Participants returns the master followed by the players.
func (t Team) Participants() []Booking {
	out := make([]Booking, 0, len(t.Players)+1)
	out = append(out, t.Master)
	return append(out, t.Players...)
}

// OpenSlots is the number of player places still free.
func (t Team) OpenSlots() int {
	if n := t.MaxPlayers - len(t.Players); n > 0 {
		return n
	}
	return 0
}

// PlayerNames joins the players' full names with commas.
func (t Team) PlayerNames() string {
	names := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		names = append(names, p.FullName())
	}
	return strings.Join(names, ", ")
}

// FilterTeams returns the teams with the given status, preserving order.
// An empty status matches everything.
func FilterTeams(teams []Team, status TeamStatus) []Team {
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
