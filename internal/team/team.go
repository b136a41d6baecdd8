// Package team assembles play groups from pending bookings.
package team

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vadied/party-manager/internal/eligibility"
	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/storage"
)

// Request is what an administrator submits to create a team.
type Request struct {
	Name         string              `json:"name"`
	GamingSystem models.GamingSystem `json:"gamingSystem"`
	MasterID     string              `json:"masterId"`
	PlayerIDs    []string            `json:"playerIds"`
	MaxPlayers   int                 `json:"maxPlayers"`
	SessionDate  *time.Time          `json:"sessionDate,omitempty"`
}

func (r Request) normalize() Request {
	r.Name = strings.TrimSpace(r.Name)
	r.MasterID = strings.TrimSpace(r.MasterID)
	if r.MaxPlayers == 0 {
		r.MaxPlayers = models.DefaultMaxPlayers
	}
	return r
}

// checkShape validates everything that does not need the stored bookings.
func checkShape(name string, system models.GamingSystem, masterID string, playerIDs []string, maxPlayers int) models.ValidationErrors {
	errs := models.ValidationErrors{}
	if name == "" {
		errs.Add("name", i18n.T("Team name is required"))
	}
	if !system.Valid() {
		errs.Add("gamingSystem", i18n.T("Select a gaming system"))
	}
	if masterID == "" {
		errs.Add("masterId", i18n.T("Select a game master"))
	}
	if maxPlayers < models.MinMaxPlayers {
		errs.Add("maxPlayers", i18n.T("Maximum players must be at least %d", models.MinMaxPlayers))
	} else if maxPlayers > models.MaxMaxPlayers {
		errs.Add("maxPlayers", i18n.T("Maximum players cannot exceed %d", models.MaxMaxPlayers))
	} else if len(playerIDs) > maxPlayers {
		errs.Add("playerIds", i18n.T("Too many players: %d selected, maximum %d", len(playerIDs), maxPlayers))
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if masterID != "" && id == masterID {
			errs.Add("playerIds", i18n.T("The game master cannot also be a player"))
		}
		if seen[id] {
			errs.Add("playerIds", i18n.T("Player %s was selected more than once", id))
		}
		seen[id] = true
	}
	return errs
}

// Build constructs a draft team from booking snapshots. The master must have
// offered to run system and every player to play it; len(players) may not
// exceed maxPlayers (0 means the default). Id and creation time are left for
// the caller.
func Build(name string, system models.GamingSystem, master *models.Booking, players []models.Booking, maxPlayers int, sessionDate *time.Time) (models.Team, error) {
	name = strings.TrimSpace(name)
	if maxPlayers == 0 {
		maxPlayers = models.DefaultMaxPlayers
	}
	masterID := ""
	if master != nil {
		masterID = master.ID
	}
	playerIDs := make([]string, 0, len(players))
	for _, p := range players {
		playerIDs = append(playerIDs, p.ID)
	}

	errs := checkShape(name, system, masterID, playerIDs, maxPlayers)
	if master != nil && (!master.HasRole(models.RoleMaster) || !master.Plays(system)) {
		errs.Add("masterId", i18n.T("%s is not available as game master for %s", master.FullName(), system.Label()))
	}
	for _, p := range players {
		if !p.HasRole(models.RolePlayer) || !p.Plays(system) {
			errs.Add("playerIds", i18n.T("%s is not available as player for %s", p.FullName(), system.Label()))
		}
	}
	if err := errs.Err(); err != nil {
		return models.Team{}, err
	}

	snapshots := make([]models.Booking, 0, len(players))
	for _, p := range players {
		snapshots = append(snapshots, p.Clone())
	}
	var date *time.Time
	if sessionDate != nil {
		d := *sessionDate
		date = &d
	}
	return models.Team{
		Name:         name,
		GamingSystem: system,
		Master:       master.Clone(),
		Players:      snapshots,
		MaxPlayers:   maxPlayers,
		SessionDate:  date,
		Status:       models.TeamStatusDraft,
	}, nil
}

// Store is the persistence the service needs.
type Store interface {
	Teams(ctx context.Context) ([]models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	Update(ctx context.Context, fn func(*storage.Tx) error) error
}

// Service implements the team lifecycle.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewService returns a Service persisting through store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, newID: uuid.NewString}
}

// Create assembles a draft team and marks its master and players assigned.
// Candidates are checked against the stored bookings inside the same
// transaction that writes the team, so a booking taken in the meantime fails
// the request instead of landing in two teams.
func (s *Service) Create(ctx context.Context, req Request) (*models.Team, error) {
	req = req.normalize()
	if err := checkShape(req.Name, req.GamingSystem, req.MasterID, req.PlayerIDs, req.MaxPlayers).Err(); err != nil {
		return nil, err
	}

	var created models.Team
	err := s.store.Update(ctx, func(tx *storage.Tx) error {
		bookings, err := tx.Bookings()
		if err != nil {
			return err
		}
		candidates := eligibility.For(bookings, req.GamingSystem, req.MasterID)

		errs := models.ValidationErrors{}
		master, ok := find(candidates.Masters, req.MasterID)
		if !ok {
			errs.Add("masterId", i18n.T("%s is not available as game master for %s", describe(bookings, req.MasterID), req.GamingSystem.Label()))
		}
		players := make([]models.Booking, 0, len(req.PlayerIDs))
		for _, id := range req.PlayerIDs {
			p, ok := find(candidates.Players, id)
			if !ok {
				errs.Add("playerIds", i18n.T("%s is not available as player for %s", describe(bookings, id), req.GamingSystem.Label()))
				continue
			}
			players = append(players, p)
		}
		if err := errs.Err(); err != nil {
			return err
		}

		t, err := Build(req.Name, req.GamingSystem, &master, players, req.MaxPlayers, req.SessionDate)
		if err != nil {
			return err
		}
		t.ID = s.newID()
		t.CreatedAt = s.now()

		if err := tx.AppendTeam(t); err != nil {
			return err
		}
		if err := tx.SetBookingStatus(master.ID, models.BookingStatusAssigned); err != nil {
			return err
		}
		for _, p := range players {
			if err := tx.SetBookingStatus(p.ID, models.BookingStatusAssigned); err != nil {
				return err
			}
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get returns team id, or storage.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Team, error) {
	teams, err := s.store.Teams(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
}

// List returns the teams with status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status models.TeamStatus) ([]models.Team, error) {
	teams, err := s.store.Teams(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterTeams(teams, status), nil
}

// SetStatus moves team id to status following the transition table.
func (s *Service) SetStatus(ctx context.Context, id string, status models.TeamStatus) error {
	if !status.Valid() {
		return models.ValidationErrors{"status": i18n.T("Unknown status: %s", status)}
	}
	return s.store.Update(ctx, func(tx *storage.Tx) error {
		teams, err := tx.Teams()
		if err != nil {
			return err
		}
		i := slices.IndexFunc(teams, func(t models.Team) bool { return t.ID == id })
		if i < 0 {
			return fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
		}
		current := teams[i].Status
		if !current.CanTransitionTo(status) {
			return fmt.Errorf("team %s: %w", id, &models.TransitionError{From: string(current), To: string(status)})
		}
		if current == status {
			return nil
		}
		return tx.SetTeamStatus(id, status)
	})
}

// Delete removes team id. Its bookings stay assigned.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTeam(ctx, id)
}

func find(bookings []models.Booking, id string) (models.Booking, bool) {
	i := slices.IndexFunc(bookings, func(b models.Booking) bool { return b.ID == id })
	if i < 0 {
		return models.Booking{}, false
	}
	return bookings[i], true
}

// describe names a booking for error messages, falling back to its id.
func describe(bookings []models.Booking, id string) string {
	if b, ok := find(bookings, id); ok {
		return b.FullName()
	}
	return id
}
