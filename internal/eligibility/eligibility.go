// Package eligibility selects which pending bookings may join a team being
// assembled for a game system. Results keep the order of the input.
package eligibility

import "github.com/Vadied/party-manager/internal/models"

// Candidates holds both candidate lists for one selection state.
type Candidates struct {
	Masters []models.Booking `json:"masters"`
	Players []models.Booking `json:"players"`
}

// Masters returns the pending bookings that offered to run a game and play
// system. An empty system matches every booking.
func Masters(bookings []models.Booking, system models.GamingSystem) []models.Booking {
	return filter(bookings, models.RoleMaster, system, "")
}

// Players returns the pending bookings that offered to play system, except
// excludeID. An empty system matches every booking.
func Players(bookings []models.Booking, system models.GamingSystem, excludeID string) []models.Booking {
	return filter(bookings, models.RolePlayer, system, excludeID)
}

// For computes both lists. A booking with both roles can appear in both;
// only the selected master is removed from the players.
func For(bookings []models.Booking, system models.GamingSystem, masterID string) Candidates {
	return Candidates{
		Masters: Masters(bookings, system),
		Players: Players(bookings, system, masterID),
	}
}

func filter(bookings []models.Booking, role models.Role, system models.GamingSystem, excludeID string) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status != models.BookingStatusPending || !b.HasRole(role) {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if system != "" && !b.Plays(system) {
			continue
		}
		out = append(out, b)
	}
	return out
}
