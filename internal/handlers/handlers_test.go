package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Vadied/party-manager/internal/auth"
	"github.com/Vadied/party-manager/internal/booking"
	"github.com/Vadied/party-manager/internal/database"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/notify"
	"github.com/Vadied/party-manager/internal/ratelimit"
	"github.com/Vadied/party-manager/internal/storage"
	"github.com/Vadied/party-manager/internal/team"
)

const (
	adminEmail = "admin@example.com"
	password   = "password123"
)

// testServer holds a test server and its dependencies.
type testServer struct {
	server *httptest.Server
	db     *sql.DB
	client *http.Client
}

// setupTestServer wires the application the way main does, on an
// in-memory SQLite database.
func setupTestServer(t *testing.T, mutate func(*Deps)) *testServer {
	t.Helper()

	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash admin password: %v", err)
	}
	if _, err := database.ProvisionUser(context.Background(), db, "Ada Lovelace", adminEmail, string(hash)); err != nil {
		t.Fatalf("Failed to provision admin: %v", err)
	}
	repo := storage.New(database.NewKV(db))
	renderer := notify.Renderer{Location: time.UTC}
	deps := Deps{
		DB:       db,
		Bookings: booking.NewService(repo),
		Teams:    team.NewService(repo),
		Renderer: renderer,
		Mailer: notify.NewMailer(renderer, 0, func(ctx context.Context, emails []models.SentEmail) error {
			return database.RecordSentEmails(ctx, db, emails)
		}),
		Issuer:         auth.NewIssuer([]byte("test-secret"), time.Hour, auth.NewAllowList([]string{adminEmail})),
		Limiter:        ratelimit.New(600, 100),
		AllowedOrigins: []string{"*"},
	}
	if mutate != nil {
		mutate(&deps)
	}

	ts := &testServer{
		server: httptest.NewServer(NewHandler(deps)),
		db:     db,
	}
	ts.client = ts.newClient(t)
	return ts
}

// Teardown closes the test server and database connection.
func (ts *testServer) Teardown() {
	ts.server.Close()
	ts.db.Close()
}

func (ts *testServer) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// do sends body as JSON and returns the status and response body.
func (ts *testServer) do(t *testing.T, c *http.Client, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, r)
	if err != nil {
		t.Fatalf("NewRequest(%s %s): %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func (ts *testServer) signUp(t *testing.T, c *http.Client, name, email string) {
	t.Helper()
	creds := map[string]string{"name": name, "email": email, "password": password, "confirmPassword": password}
	if code, body := ts.do(t, c, http.MethodPost, "/register", creds); code != http.StatusCreated {
		t.Fatalf("POST /register status = %d; body %s", code, body)
	}
	if code, body := ts.do(t, c, http.MethodPost, "/login", creds); code != http.StatusOK {
		t.Fatalf("POST /login status = %d; body %s", code, body)
	}
}

func (ts *testServer) signIn(t *testing.T, c *http.Client, email string) {
	t.Helper()
	creds := map[string]string{"email": email, "password": password}
	if code, body := ts.do(t, c, http.MethodPost, "/login", creds); code != http.StatusOK {
		t.Fatalf("POST /login status = %d; body %s", code, body)
	}
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func bookingForm(first string, roles []models.Role, systems ...models.GamingSystem) booking.Fields {
	return booking.Fields{
		Email:         strings.ToLower(first) + "@example.com",
		Phone:         "555-0100",
		FirstName:     first,
		LastName:      "Tester",
		Pronouns:      "they/them",
		Roles:         roles,
		GamingSystems: systems,
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	ts := setupTestServer(t, nil)
	defer ts.Teardown()

	creds := map[string]string{"name": "Paola Player", "email": "paola@example.com", "password": password, "confirmPassword": password}

	t.Run("POST /register valid", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodPost, "/register", creds)
		if code != http.StatusCreated {
			t.Fatalf("POST /register status = %d; want %d. Body: %s", code, http.StatusCreated, body)
		}
		if id := decode[models.Identity](t, body); id.IsAdmin || id.Verified {
			t.Errorf("registered identity = %+v, want a plain account", id)
		}
		if _, err := database.GetUserByEmail(context.Background(), ts.db, "paola@example.com"); err != nil {
			t.Errorf("User not found in DB after registration: %v", err)
		}
	})

	t.Run("POST /register existing email", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodPost, "/register", creds)
		if code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d; want %d", code, http.StatusUnprocessableEntity)
		}
		if !strings.Contains(string(body), "Email già registrata") {
			t.Errorf("body %s does not contain the duplicate message", body)
		}
	})

	t.Run("POST /register password mismatch", func(t *testing.T) {
		bad := map[string]string{"email": "x@example.com", "password": "a", "confirmPassword": "b"}
		code, body := ts.do(t, ts.client, http.MethodPost, "/register", bad)
		if code != http.StatusUnprocessableEntity || !strings.Contains(string(body), "confirmPassword") {
			t.Errorf("status = %d body = %s", code, body)
		}
	})

	t.Run("GET /api/session unauthenticated", func(t *testing.T) {
		if code, _ := ts.do(t, ts.client, http.MethodGet, "/api/session", nil); code != http.StatusUnauthorized {
			t.Errorf("status = %d; want %d", code, http.StatusUnauthorized)
		}
	})

	t.Run("POST /login wrong password", func(t *testing.T) {
		wrong := map[string]string{"email": adminEmail, "password": "nope"}
		if code, _ := ts.do(t, ts.client, http.MethodPost, "/login", wrong); code != http.StatusUnauthorized {
			t.Errorf("status = %d; want %d", code, http.StatusUnauthorized)
		}
	})

	t.Run("POST /login valid", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodPost, "/login", map[string]string{"email": adminEmail, "password": password})
		if code != http.StatusOK {
			t.Fatalf("status = %d; body %s", code, body)
		}
		found := false
		for _, c := range ts.client.Jar.Cookies(mustParseURL(t, ts.server.URL)) {
			if c.Name == sessionCookieName && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Error("session cookie not set after login")
		}
	})

	t.Run("GET /api/session prefill", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodGet, "/api/session", nil)
		if code != http.StatusOK {
			t.Fatalf("status = %d; body %s", code, body)
		}
		s := decode[sessionResponse](t, body)
		if s.Prefill.FirstName != "Ada" || s.Prefill.LastName != "Lovelace" || s.Prefill.Email != adminEmail {
			t.Errorf("prefill = %+v", s.Prefill)
		}
		if !s.User.IsAdmin {
			t.Error("session user is not admin")
		}
	})

	t.Run("POST /logout", func(t *testing.T) {
		if code, _ := ts.do(t, ts.client, http.MethodPost, "/logout", nil); code != http.StatusNoContent {
			t.Errorf("status = %d; want %d", code, http.StatusNoContent)
		}
		if code, _ := ts.do(t, ts.client, http.MethodGet, "/api/session", nil); code != http.StatusUnauthorized {
			t.Errorf("session after logout status = %d; want %d", code, http.StatusUnauthorized)
		}
	})
}

func TestAllowListedEmailCannotSelfRegister(t *testing.T) {
	const gmEmail = "gm@example.com"
	ts := setupTestServer(t, func(d *Deps) {
		d.Issuer = auth.NewIssuer([]byte("test-secret"), time.Hour, auth.NewAllowList([]string{adminEmail, gmEmail}))
	})
	defer ts.Teardown()

	t.Run("provisioned admin address", func(t *testing.T) {
		attacker := ts.newClient(t)
		creds := map[string]string{"name": "Mallory", "email": adminEmail, "password": "mallory-pass", "confirmPassword": "mallory-pass"}
		if code, _ := ts.do(t, attacker, http.MethodPost, "/register", creds); code != http.StatusForbidden {
			t.Errorf("POST /register status = %d; want %d", code, http.StatusForbidden)
		}
		if code, _ := ts.do(t, attacker, http.MethodPost, "/login", creds); code != http.StatusUnauthorized {
			t.Errorf("POST /login with attacker password status = %d; want %d", code, http.StatusUnauthorized)
		}
		if code, _ := ts.do(t, attacker, http.MethodGet, "/api/admin/bookings", nil); code != http.StatusUnauthorized {
			t.Errorf("GET /api/admin/bookings status = %d; want %d", code, http.StatusUnauthorized)
		}
	})

	t.Run("allow-listed address without an account", func(t *testing.T) {
		attacker := ts.newClient(t)
		creds := map[string]string{"name": "Mallory", "email": gmEmail, "password": password, "confirmPassword": password}
		if code, _ := ts.do(t, attacker, http.MethodPost, "/register", creds); code != http.StatusForbidden {
			t.Errorf("POST /register status = %d; want %d", code, http.StatusForbidden)
		}
		if _, err := database.GetUserByEmail(context.Background(), ts.db, gmEmail); err != sql.ErrNoRows {
			t.Errorf("GetUserByEmail() error = %v, want sql.ErrNoRows", err)
		}
	})

	t.Run("account registered before the address was allow-listed", func(t *testing.T) {
		if _, err := database.CreateUser(context.Background(), ts.db, "Mallory", gmEmail, password); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		attacker := ts.newClient(t)
		ts.signIn(t, attacker, gmEmail)
		if code, _ := ts.do(t, attacker, http.MethodGet, "/api/admin/bookings", nil); code != http.StatusForbidden {
			t.Errorf("GET /api/admin/bookings status = %d; want %d", code, http.StatusForbidden)
		}
	})
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := setupTestServer(t, nil)
	defer ts.Teardown()

	if code, _ := ts.do(t, ts.client, http.MethodGet, "/api/admin/bookings", nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d; want %d", code, http.StatusUnauthorized)
	}

	ts.signUp(t, ts.client, "Paolo Player", "player@example.com")
	code, body := ts.do(t, ts.client, http.MethodGet, "/api/admin/bookings", nil)
	if code != http.StatusForbidden {
		t.Errorf("non-admin status = %d; want %d", code, http.StatusForbidden)
	}
	if !strings.Contains(string(body), "Accesso negato") {
		t.Errorf("body %s does not contain access denied message", body)
	}
}

func TestBookingTeamAndEmailFlow(t *testing.T) {
	ts := setupTestServer(t, nil)
	defer ts.Teardown()

	public := ts.newClient(t)
	both := []models.Role{models.RoleMaster, models.RolePlayer}
	player := []models.Role{models.RolePlayer}

	t.Run("POST /api/bookings invalid", func(t *testing.T) {
		f := bookingForm("Bad", nil, models.SystemDnD)
		f.Email = "not-an-email"
		code, body := ts.do(t, public, http.MethodPost, "/api/bookings", f)
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d; want %d", code, http.StatusUnprocessableEntity)
		}
		resp := decode[errorResponse](t, body)
		if resp.Errors["email"] != "Email non valida" || resp.Errors["roles"] == "" {
			t.Errorf("errors = %v", resp.Errors)
		}
	})

	code, body := ts.do(t, public, http.MethodPost, "/api/bookings", bookingForm("Alice", both, models.SystemDnD))
	if code != http.StatusCreated {
		t.Fatalf("create A status = %d; body %s", code, body)
	}
	a := decode[models.Booking](t, body)
	code, body = ts.do(t, public, http.MethodPost, "/api/bookings", bookingForm("Bruno", player, models.SystemDnD, models.SystemPathfinder))
	if code != http.StatusCreated {
		t.Fatalf("create B status = %d; body %s", code, body)
	}
	b := decode[models.Booking](t, body)
	if a.Status != models.BookingStatusPending || a.ID == "" {
		t.Errorf("created booking = %+v", a)
	}

	ts.signIn(t, ts.client, adminEmail)

	t.Run("GET /api/admin/candidates", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodGet, "/api/admin/candidates?system=DnD&master="+a.ID, nil)
		if code != http.StatusOK {
			t.Fatalf("status = %d; body %s", code, body)
		}
		c := decode[struct {
			Masters []models.Booking `json:"masters"`
			Players []models.Booking `json:"players"`
		}](t, body)
		if len(c.Masters) != 1 || c.Masters[0].ID != a.ID {
			t.Errorf("masters = %+v", c.Masters)
		}
		if len(c.Players) != 1 || c.Players[0].ID != b.ID {
			t.Errorf("players = %+v", c.Players)
		}

		if code, _ := ts.do(t, ts.client, http.MethodGet, "/api/admin/candidates?system=Chess", nil); code != http.StatusUnprocessableEntity {
			t.Errorf("unknown system status = %d", code)
		}

		for _, path := range []string{"/api/admin/candidates", "/api/admin/candidates?system="} {
			code, body := ts.do(t, ts.client, http.MethodGet, path, nil)
			if code != http.StatusOK {
				t.Fatalf("GET %s status = %d; body %s", path, code, body)
			}
			all := decode[struct {
				Masters []models.Booking `json:"masters"`
				Players []models.Booking `json:"players"`
			}](t, body)
			if len(all.Masters) != 1 || len(all.Players) != 2 {
				t.Errorf("GET %s masters = %d players = %d; want 1 and 2", path, len(all.Masters), len(all.Players))
			}
		}
	})

	var created models.Team
	t.Run("POST /api/admin/teams", func(t *testing.T) {
		req := map[string]any{
			"name":         "Dragons",
			"gamingSystem": "D&D",
			"masterId":     a.ID,
			"playerIds":    []string{b.ID},
			"maxPlayers":   4,
			"sessionDate":  "2025-06-14T18:30:00Z",
		}
		code, body := ts.do(t, ts.client, http.MethodPost, "/api/admin/teams", req)
		if code != http.StatusCreated {
			t.Fatalf("status = %d; body %s", code, body)
		}
		created = decode[models.Team](t, body)
		if created.GamingSystem != models.SystemDnD || len(created.Players) != 1 || created.Status != models.TeamStatusDraft {
			t.Errorf("team = %+v", created)
		}
	})
	if created.ID == "" {
		t.Fatal("team was not created")
	}

	t.Run("bookings are assigned", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodGet, "/api/admin/bookings?status=assigned", nil)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if got := decode[[]models.Booking](t, body); len(got) != 2 {
			t.Errorf("assigned bookings = %d; want 2", len(got))
		}
		code, body = ts.do(t, ts.client, http.MethodGet, "/api/admin/stats", nil)
		if code != http.StatusOK {
			t.Fatalf("stats status = %d", code)
		}
		stats := decode[statsResponse](t, body)
		if stats.AssignedBookings != 2 || stats.PendingBookings != 0 || stats.Teams != 1 || stats.TotalBookings != 2 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("GET /api/admin/teams", func(t *testing.T) {
		code, body := ts.do(t, ts.client, http.MethodGet, "/api/admin/teams/"+created.ID, nil)
		if code != http.StatusOK {
			t.Fatalf("get team status = %d; body %s", code, body)
		}
		if got := decode[models.Team](t, body); got.Name != "Dragons" || got.Master.ID != a.ID {
			t.Errorf("team = %+v", got)
		}
		if code, _ := ts.do(t, ts.client, http.MethodGet, "/api/admin/teams/missing", nil); code != http.StatusNotFound {
			t.Errorf("missing team status = %d; want %d", code, http.StatusNotFound)
		}
		_, body = ts.do(t, ts.client, http.MethodGet, "/api/admin/teams?status=draft", nil)
		if got := decode[[]models.Team](t, body); len(got) != 1 {
			t.Errorf("draft teams = %d; want 1", len(got))
		}
	})

	t.Run("team status transitions", func(t *testing.T) {
		path := "/api/admin/teams/" + created.ID + "/status"
		if code, body := ts.do(t, ts.client, http.MethodPut, path, statusRequest{Status: "completed"}); code != http.StatusConflict {
			t.Errorf("draft -> completed status = %d; body %s", code, body)
		}
		if code, _ := ts.do(t, ts.client, http.MethodPut, path, statusRequest{Status: "confirmed"}); code != http.StatusNoContent {
			t.Errorf("draft -> confirmed status = %d", code)
		}
		if code, _ := ts.do(t, ts.client, http.MethodPut, path, statusRequest{Status: "archived"}); code != http.StatusUnprocessableEntity {
			t.Errorf("unknown status code = %d", code)
		}
		if code, _ := ts.do(t, ts.client, http.MethodPut, "/api/admin/teams/missing/status", statusRequest{Status: "draft"}); code != http.StatusNotFound {
			t.Errorf("missing team status = %d", code)
		}
	})

	t.Run("booking status transitions", func(t *testing.T) {
		path := "/api/admin/bookings/" + b.ID + "/status"
		if code, _ := ts.do(t, ts.client, http.MethodPut, path, statusRequest{Status: "cancelled"}); code != http.StatusConflict {
			t.Errorf("assigned -> cancelled status = %d; want %d", code, http.StatusConflict)
		}
	})

	t.Run("email preview and send", func(t *testing.T) {
		tmpl, _ := notify.Lookup(notify.TemplateInvitation)
		req := emailRequest{Subject: tmpl.Subject, Body: tmpl.Body}

		code, body := ts.do(t, ts.client, http.MethodPost, "/api/admin/teams/"+created.ID+"/email/preview", req)
		if code != http.StatusOK {
			t.Fatalf("preview status = %d; body %s", code, body)
		}
		preview := decode[previewResponse](t, body)
		if preview.Preview.To != a.Email || len(preview.Recipients) != 2 {
			t.Errorf("preview = %+v", preview)
		}
		if !strings.Contains(preview.Preview.Body, "sabato 14 giugno 2025 alle ore 18:30") {
			t.Errorf("preview body missing session date:\n%s", preview.Preview.Body)
		}

		if code, _ := ts.do(t, ts.client, http.MethodPost, "/api/admin/teams/"+created.ID+"/email", emailRequest{Body: "x"}); code != http.StatusUnprocessableEntity {
			t.Errorf("send without subject status = %d", code)
		}

		code, body = ts.do(t, ts.client, http.MethodPost, "/api/admin/teams/"+created.ID+"/email", req)
		if code != http.StatusOK {
			t.Fatalf("send status = %d; body %s", code, body)
		}
		sent := decode[sendResponse](t, body)
		if sent.Sent != 2 || !strings.Contains(sent.Message, "2 partecipanti") {
			t.Errorf("send response = %+v", sent)
		}

		code, body = ts.do(t, ts.client, http.MethodGet, "/api/admin/teams/"+created.ID+"/emails", nil)
		if code != http.StatusOK {
			t.Fatalf("outbox status = %d", code)
		}
		if outbox := decode[[]models.SentEmail](t, body); len(outbox) != 2 || outbox[1].Recipient != b.Email {
			t.Errorf("outbox = %+v", outbox)
		}
	})

	t.Run("delete team keeps bookings assigned", func(t *testing.T) {
		if code, _ := ts.do(t, ts.client, http.MethodDelete, "/api/admin/teams/"+created.ID, nil); code != http.StatusNoContent {
			t.Errorf("delete status = %d", code)
		}
		if code, _ := ts.do(t, ts.client, http.MethodDelete, "/api/admin/teams/"+created.ID, nil); code != http.StatusNotFound {
			t.Errorf("second delete status = %d", code)
		}
		_, body := ts.do(t, ts.client, http.MethodGet, "/api/admin/bookings?status=assigned", nil)
		if got := decode[[]models.Booking](t, body); len(got) != 2 {
			t.Errorf("assigned bookings after team delete = %d; want 2", len(got))
		}
	})
}

func TestBookingSubmissionIsRateLimited(t *testing.T) {
	ts := setupTestServer(t, func(d *Deps) { d.Limiter = ratelimit.New(1, 1) })
	defer ts.Teardown()

	f := bookingForm("Rita", []models.Role{models.RolePlayer}, models.SystemVampire)
	if code, _ := ts.do(t, ts.client, http.MethodPost, "/api/bookings", f); code != http.StatusCreated {
		t.Fatalf("first submission status = %d", code)
	}
	code, body := ts.do(t, ts.client, http.MethodPost, "/api/bookings", f)
	if code != http.StatusTooManyRequests {
		t.Errorf("second submission status = %d; want %d", code, http.StatusTooManyRequests)
	}
	if !strings.Contains(string(body), "Troppe richieste") {
		t.Errorf("body %s", body)
	}
}

func TestHealthCatalogAndStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Party Manager</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	ts := setupTestServer(t, func(d *Deps) { d.StaticDir = dir })
	defer ts.Teardown()

	if code, body := ts.do(t, ts.client, http.MethodGet, "/health", nil); code != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /health = %d %q", code, body)
	}

	code, body := ts.do(t, ts.client, http.MethodGet, "/api/catalog", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /api/catalog status = %d", code)
	}
	cat := decode[catalogResponse](t, body)
	if len(cat.GamingSystems) != 5 || cat.GamingSystems[2].Label != "Vampiri: La Masquerade" || cat.DefaultMaxPlayers != 4 || cat.MaxMaxPlayers != 8 {
		t.Errorf("catalog = %+v", cat)
	}

	if code, body := ts.do(t, ts.client, http.MethodGet, "/admin", nil); code != http.StatusOK || !strings.Contains(string(body), "Party Manager") {
		t.Errorf("GET /admin = %d %q, want index.html", code, body)
	}
	if code, _ := ts.do(t, ts.client, http.MethodGet, "/api/nothing", nil); code != http.StatusNotFound {
		t.Errorf("GET /api/nothing status = %d; want 404", code)
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}
