package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/team"
)

// ListTeams returns all teams, or those with ?status=.
func ListTeams(svc *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		status := models.TeamStatus(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			handleError(w, r, models.ValidationErrors{"status": i18n.T("Unknown status: %s", status)})
			return
		}
		teams, err := svc.List(r.Context(), status)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

// GetTeam returns team :id.
func GetTeam(svc *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		t, err := svc.Get(r.Context(), ps.ByName("id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// CreateTeam assembles a team from the submitted master and players.
func CreateTeam(svc *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req team.Request
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if s, ok := models.ParseGamingSystem(string(req.GamingSystem)); ok {
			req.GamingSystem = s
		}
		t, err := svc.Create(r.Context(), req)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// SetTeamStatus applies {"status": ...} to team :id.
func SetTeamStatus(svc *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req statusRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := svc.SetStatus(r.Context(), ps.ByName("id"), models.TeamStatus(req.Status)); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteTeam removes team :id. Its bookings keep their status.
func DeleteTeam(svc *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := svc.Delete(r.Context(), ps.ByName("id")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
