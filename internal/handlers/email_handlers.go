package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Vadied/party-manager/internal/database"
	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/notify"
	"github.com/Vadied/party-manager/internal/team"
)

type templatesResponse struct {
	Templates []notify.Template `json:"templates"`
	Variables []notify.Variable `json:"variables"`
}

// EmailTemplates lists the built-in templates and the placeholders.
func EmailTemplates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, templatesResponse{
		Templates: notify.Templates(),
		Variables: notify.Variables(),
	})
}

type emailRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type previewResponse struct {
	Recipients []string       `json:"recipients"`
	Preview    notify.Message `json:"preview"`
}

// PreviewEmail renders the submitted subject and body for the first
// participant of team :id without sending anything.
func PreviewEmail(teams *team.Service, renderer notify.Renderer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req emailRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := teams.Get(r.Context(), ps.ByName("id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		msg, err := renderer.Preview(*t, req.Subject, req.Body)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, previewResponse{Recipients: recipients(*t), Preview: msg})
	}
}

type sendResponse struct {
	Message string             `json:"message"`
	Sent    int                `json:"sent"`
	Emails  []models.SentEmail `json:"emails"`
}

// SendEmail delivers the submitted subject and body to every participant
// of team :id, exactly as submitted.
func SendEmail(teams *team.Service, mailer *notify.Mailer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req emailRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := teams.Get(r.Context(), ps.ByName("id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		sent, err := mailer.Send(r.Context(), *t, req.Subject, req.Body)
		if err != nil {
			var verrs models.ValidationErrors
			if errors.As(err, &verrs) {
				handleError(w, r, err)
				return
			}
			log.Printf("SendEmail team %s: %v", t.ID, err)
			writeError(w, http.StatusInternalServerError, i18n.T("Error while sending emails. Please try again later."))
			return
		}
		if admin, ok := IdentityFrom(r.Context()); ok {
			log.Printf("%s sent %d emails for team %s", admin.Email, len(sent), t.ID)
		}
		writeJSON(w, http.StatusOK, sendResponse{
			Message: i18n.T("Emails sent successfully to all %d participants!", len(sent)),
			Sent:    len(sent),
			Emails:  sent,
		})
	}
}

// TeamEmails lists the outbox of team :id.
func TeamEmails(db *sql.DB, teams *team.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		t, err := teams.Get(r.Context(), ps.ByName("id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		emails, err := database.GetSentEmailsForTeam(r.Context(), db, t.ID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if emails == nil {
			emails = []*models.SentEmail{}
		}
		writeJSON(w, http.StatusOK, emails)
	}
}

func recipients(t models.Team) []string {
	var out []string
	for _, p := range t.Participants() {
		out = append(out, p.Email)
	}
	return out
}
