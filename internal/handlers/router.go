package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/Vadied/party-manager/internal/auth"
	"github.com/Vadied/party-manager/internal/booking"
	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/notify"
	"github.com/Vadied/party-manager/internal/ratelimit"
	"github.com/Vadied/party-manager/internal/team"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB       *sql.DB
	Bookings *booking.Service
	Teams    *team.Service
	Renderer notify.Renderer
	Mailer   *notify.Mailer
	Issuer   *auth.Issuer
	Limiter  *ratelimit.RateLimiter

	SubmitDelay    time.Duration
	AllowedOrigins []string
	StaticDir      string
}

// NewRouter registers every route.
func NewRouter(d Deps) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Health)

	router.POST("/register", Register(d.DB, d.Issuer))
	router.POST("/login", Login(d.DB, d.Issuer))
	router.POST("/logout", Logout)
	router.GET("/api/session", Session(d.Issuer))
	router.GET("/api/catalog", Catalog)

	submit := CreateBooking(d.Bookings, d.SubmitDelay)
	if d.Limiter != nil {
		d.Limiter.Reject = func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, i18n.T("Too many requests, please try again later"))
		}
		submit = d.Limiter.Limit(submit)
	}
	router.POST("/api/bookings", submit)

	admin := func(h httprouter.Handle) httprouter.Handle { return RequireAdmin(d.Issuer, h) }
	router.GET("/api/admin/bookings", admin(ListBookings(d.Bookings)))
	router.PUT("/api/admin/bookings/:id/status", admin(SetBookingStatus(d.Bookings)))
	router.DELETE("/api/admin/bookings/:id", admin(DeleteBooking(d.Bookings)))
	router.GET("/api/admin/stats", admin(Stats(d.Bookings, d.Teams)))
	router.GET("/api/admin/candidates", admin(Candidates(d.Bookings)))

	router.GET("/api/admin/teams", admin(ListTeams(d.Teams)))
	router.POST("/api/admin/teams", admin(CreateTeam(d.Teams)))
	router.GET("/api/admin/teams/:id", admin(GetTeam(d.Teams)))
	router.PUT("/api/admin/teams/:id/status", admin(SetTeamStatus(d.Teams)))
	router.DELETE("/api/admin/teams/:id", admin(DeleteTeam(d.Teams)))

	router.GET("/api/admin/email-templates", admin(EmailTemplates))
	router.POST("/api/admin/teams/:id/email/preview", admin(PreviewEmail(d.Teams, d.Renderer)))
	router.POST("/api/admin/teams/:id/email", admin(SendEmail(d.Teams, d.Mailer)))
	router.GET("/api/admin/teams/:id/emails", admin(TeamEmails(d.DB, d.Teams)))

	router.NotFound = StaticFallback(d.StaticDir)
	return router
}

// NewHandler wraps the router: CORS, then security headers, then logging.
func NewHandler(d Deps) http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(NewRouter(d))
	return LoggingMiddleware(SecurityHeaders(corsHandler))
}

// Health is a liveness probe.
func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "ok")
}
