package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
)

// Renderer substitutes placeholders for one team and recipient. Session
// dates are shown in Location; nil means UTC.
type Renderer struct {
	Location *time.Location
}

// Render replaces every known placeholder in text. Unknown placeholders are
// left as written.
func (r Renderer) Render(text string, team models.Team, recipient models.Booking) string {
	return strings.NewReplacer(
		"{{firstName}}", recipient.FirstName,
		"{{lastName}}", recipient.LastName,
		"{{email}}", recipient.Email,
		"{{teamName}}", team.Name,
		"{{gameSystem}}", team.GamingSystem.Label(),
		"{{masterName}}", team.Master.FullName(),
		"{{masterEmail}}", team.Master.Email,
		"{{playersList}}", team.PlayerNames(),
		"{{sessionDateInfo}}", r.sessionDateInfo(team.SessionDate),
	).Replace(text)
}

func (r Renderer) sessionDateInfo(date *time.Time) string {
	if date == nil {
		return "\n- " + i18n.T("Date to be defined")
	}
	return fmt.Sprintf("\n- %s: %s", i18n.T("Session date"), FormatDate(*date, r.Location))
}

// FormatDate renders t in the long localized form, for example
// "sabato 14 giugno 2025 alle ore 20:30".
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%s %d %s %d %s %02d:%02d",
		i18n.T(t.Weekday().String()),
		t.Day(),
		i18n.T(t.Month().String()),
		t.Year(),
		i18n.T("at"),
		t.Hour(),
		t.Minute(),
	)
}
