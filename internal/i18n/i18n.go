// Package i18n holds the bundled it-IT message catalog. Source strings are
// English and double as lookup keys, so an untranslated key prints as-is.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the single locale shipped with the application.
var Locale = language.Italian

var printer = message.NewPrinter(Locale)

var italian = []struct{ key, msg string }{
	// Enumerations.
	{"Game Master", "Game Master"},
	{"Player", "Giocatore"},
	{"Dungeons & Dragons", "Dungeons & Dragons"},
	{"Daggerheart", "Daggerheart"},
	{"Vampires: The Masquerade", "Vampiri: La Masquerade"},
	{"Call of Cthulhu", "Call of Cthulhu"},
	{"Pathfinder", "Pathfinder"},
	{"Pending", "In Attesa"},
	{"Assigned", "Assegnato"},
	{"Cancelled", "Cancellato"},
	{"Draft", "Bozza"},
	{"Confirmed", "Confermato"},
	{"Completed", "Completato"},

	// Booking validation.
	{"Email is required", "Email è obbligatoria"},
	{"Email is not valid", "Email non valida"},
	{"Phone number is required", "Numero di telefono è obbligatorio"},
	{"First name is required", "Nome è obbligatorio"},
	{"Last name is required", "Cognome è obbligatorio"},
	{"Pronouns are required", "Pronomi sono obbligatori"},
	{"Select at least one role", "Seleziona almeno un ruolo"},
	{"Select at least one gaming system", "Seleziona almeno un sistema di gioco"},
	{"Unknown role: %s", "Ruolo sconosciuto: %s"},
	{"Unknown gaming system: %s", "Sistema di gioco sconosciuto: %s"},
	{"Unknown status: %s", "Stato sconosciuto: %s"},
	{"Status change from %s to %s is not allowed", "Il passaggio di stato da %s a %s non è consentito"},

	// Team validation.
	{"Team name is required", "Il nome del team è obbligatorio"},
	{"Select a gaming system", "Seleziona un sistema di gioco"},
	{"Select a game master", "Seleziona un game master"},
	{"Maximum players must be at least %d", "Il numero massimo di giocatori deve essere almeno %d"},
	{"Maximum players cannot exceed %d", "Il numero massimo di giocatori non può superare %d"},
	{"Too many players: %d selected, maximum %d", "Troppi giocatori: %d selezionati, massimo %d"},
	{"The game master cannot also be a player", "Il game master non può essere anche un giocatore"},
	{"Player %s was selected more than once", "Il giocatore %s è stato selezionato più volte"},
	{"%s is not available as game master for %s", "%s non è disponibile come game master per %s"},
	{"%s is not available as player for %s", "%s non è disponibile come giocatore per %s"},

	// Email.
	{"Team invitation", "Invito Team"},
	{"Session reminder", "Promemoria Sessione"},
	{"Recipient first name", "Nome del destinatario"},
	{"Recipient last name", "Cognome del destinatario"},
	{"Recipient email", "Email del destinatario"},
	{"Team name", "Nome del team"},
	{"Gaming system", "Sistema di gioco"},
	{"Game master name", "Nome del Game Master"},
	{"Game master email", "Email del Game Master"},
	{"Player list", "Lista giocatori"},
	{"Session date details", "Informazioni data sessione"},
	{"Subject is required", "L'oggetto è obbligatorio"},
	{"Body is required", "Il contenuto è obbligatorio"},
	{"Session date", "Data Sessione"},
	{"Date to be defined", "Data da definire"},
	{"at", "alle ore"},
	{"Emails sent successfully to all %d participants!", "Email inviate con successo a tutti i %d partecipanti!"},
	{"Error while sending emails. Please try again later.", "Errore durante l'invio delle email. Riprova più tardi."},

	// Calendar names, keyed by time.Weekday and time.Month String().
	{"Monday", "lunedì"},
	{"Tuesday", "martedì"},
	{"Wednesday", "mercoledì"},
	{"Thursday", "giovedì"},
	{"Friday", "venerdì"},
	{"Saturday", "sabato"},
	{"Sunday", "domenica"},
	{"January", "gennaio"},
	{"February", "febbraio"},
	{"March", "marzo"},
	{"April", "aprile"},
	{"May", "maggio"},
	{"June", "giugno"},
	{"July", "luglio"},
	{"August", "agosto"},
	{"September", "settembre"},
	{"October", "ottobre"},
	{"November", "novembre"},
	{"December", "dicembre"},

	// Access.
	{"Sign in required", "Accesso richiesto"},
	{"Access denied: administrator privileges required", "Accesso negato: sono richiesti privilegi di amministratore"},
	{"Invalid email or password", "Email o password non validi"},
	{"Email and password are required", "Email e password sono obbligatorie"},
	{"Passwords do not match", "Le password non coincidono"},
	{"Email already registered", "Email già registrata"},
	{"Administrator accounts cannot be registered here", "Gli account amministratore non possono essere registrati qui"},
	{"Too many requests, please try again later", "Troppe richieste, riprova più tardi"},
	{"Not found", "Non trovato"},
	{"Internal server error", "Errore interno del server"},
}

var known = make(map[string]bool, len(italian))

func init() {
	for _, e := range italian {
		if err := message.SetString(Locale, e.key, e.msg); err != nil {
			panic(err)
		}
		known[e.key] = true
	}
}

// T formats key through the bundled catalog.
func T(key string, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Has reports whether key has a catalog entry.
func Has(key string) bool {
	return known[key]
}
