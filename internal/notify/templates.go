// Package notify renders team emails and simulates their delivery.
package notify

import "github.com/Vadied/party-manager/internal/i18n"

// Template is a built-in starting point for a team email. Administrators may
// edit subject and body freely before sending.
type Template struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Built-in template ids.
const (
	TemplateInvitation = "invitation"
	TemplateReminder   = "reminder"
)

const invitationBody = `Ciao {{firstName}},

Siamo felici di confermarti che sei stato/a selezionato/a per partecipare al team "{{teamName}}" per una sessione di {{gameSystem}}!

**Dettagli del Team:**
- Nome Team: {{teamName}}
- Sistema di Gioco: {{gameSystem}}
- Game Master: {{masterName}} ({{masterEmail}})
- Partecipanti: {{playersList}}
{{sessionDateInfo}}

**Prossimi Passi:**
1. Conferma la tua partecipazione rispondendo a questa email
2. Il Game Master ti contatterà per organizzare i dettagli della sessione
3. Preparati per un'avventura fantastica!

Per qualsiasi domanda, non esitare a contattarci.

Buon gioco!
Il Team di Party Manager

---
Questa email è stata inviata automaticamente dal sistema Party Manager.`

const reminderBody = `Ciao {{firstName}},

Ti ricordiamo che la tua sessione di {{gameSystem}} con il team "{{teamName}}" si avvicina!

**Dettagli della Sessione:**
- Team: {{teamName}}
- Sistema: {{gameSystem}}
- Game Master: {{masterName}}
{{sessionDateInfo}}

**Ricorda di:**
- Preparare il tuo personaggio (se necessario)
- Avere a disposizione dadi e materiali
- Essere puntuale all'appuntamento

Ci vediamo al tavolo!
Il Team di Party Manager`

// Templates returns the built-in templates in display order.
func Templates() []Template {
	return []Template{
		{
			ID:      TemplateInvitation,
			Label:   i18n.T("Team invitation"),
			Subject: "Conferma della tua partecipazione - {{teamName}}",
			Body:    invitationBody,
		},
		{
			ID:      TemplateReminder,
			Label:   i18n.T("Session reminder"),
			Subject: "Promemoria Sessione - {{teamName}}",
			Body:    reminderBody,
		},
	}
}

// Lookup returns the built-in template with the given id.
func Lookup(id string) (Template, bool) {
	for _, t := range Templates() {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Variable documents one placeholder accepted by Render.
type Variable struct {
	Token       string `json:"token"`
	Description string `json:"description"`
}

// Variables lists every placeholder Render substitutes.
func Variables() []Variable {
	return []Variable{
		{"{{firstName}}", i18n.T("Recipient first name")},
		{"{{lastName}}", i18n.T("Recipient last name")},
		{"{{email}}", i18n.T("Recipient email")},
		{"{{teamName}}", i18n.T("Team name")},
		{"{{gameSystem}}", i18n.T("Gaming system")},
		{"{{masterName}}", i18n.T("Game master name")},
		{"{{masterEmail}}", i18n.T("Game master email")},
		{"{{playersList}}", i18n.T("Player list")},
		{"{{sessionDateInfo}}", i18n.T("Session date details")},
	}
}
