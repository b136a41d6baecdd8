package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Vadied/party-manager/internal/auth"
	"github.com/Vadied/party-manager/internal/database"
	"github.com/Vadied/party-manager/internal/i18n"
	"github.com/Vadied/party-manager/internal/models"
)

const sessionCookieName = "session_token"

type identityKey struct{}

type credentials struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a local self-service account. Allow-listed addresses are
// refused; administrator accounts are provisioned from ADMIN_ACCOUNTS.
func Register(db *sql.DB, issuer *auth.Issuer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var c credentials
		if err := readJSON(w, r, &c); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		errs := models.ValidationErrors{}
		if strings.TrimSpace(c.Email) == "" || c.Password == "" {
			errs.Add("email", i18n.T("Email and password are required"))
		}
		if c.Password != c.ConfirmPassword {
			errs.Add("confirmPassword", i18n.T("Passwords do not match"))
		}
		if err := errs.Err(); err != nil {
			handleError(w, r, err)
			return
		}

		if issuer.Admins().IsAdmin(c.Email) {
			writeError(w, http.StatusForbidden, i18n.T("Administrator accounts cannot be registered here"))
			return
		}

		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = database.NormalizeEmail(c.Email)
		}
		user, err := database.CreateUser(r.Context(), db, name, c.Email, c.Password)
		if errors.Is(err, database.ErrUserExists) {
			handleError(w, r, models.ValidationErrors{"email": i18n.T("Email already registered")})
			return
		}
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, issuer.Identity(user.Name, user.Email, "", user.Provisioned))
	}
}

// Login verifies the credentials and sets the session cookie.
func Login(db *sql.DB, issuer *auth.Issuer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var c credentials
		if err := readJSON(w, r, &c); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(c.Email) == "" || c.Password == "" {
			handleError(w, r, models.ValidationErrors{"email": i18n.T("Email and password are required")})
			return
		}

		user, err := database.GetUserByEmail(r.Context(), db, c.Email)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, i18n.T("Invalid email or password"))
			return
		}
		if err != nil {
			handleError(w, r, err)
			return
		}
		if err := database.VerifyPassword(user.PasswordHash, c.Password); err != nil {
			writeError(w, http.StatusUnauthorized, i18n.T("Invalid email or password"))
			return
		}

		id := issuer.Identity(user.Name, user.Email, "", user.Provisioned)
		token, expires, err := issuer.Issue(id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, id)
	}
}

// Logout expires the session cookie.
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

type prefill struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type sessionResponse struct {
	User    models.Identity `json:"user"`
	Prefill prefill         `json:"prefill"`
}

// Session returns the signed-in identity and the booking form prefill.
func Session(issuer *auth.Issuer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id, err := CurrentIdentity(r, issuer)
		if err != nil {
			writeError(w, http.StatusUnauthorized, i18n.T("Sign in required"))
			return
		}
		first, last := id.SplitName()
		writeJSON(w, http.StatusOK, sessionResponse{
			User:    id,
			Prefill: prefill{Email: id.Email, FirstName: first, LastName: last},
		})
	}
}

// RequireAdmin lets the request through only for an administrator session.
func RequireAdmin(issuer *auth.Issuer, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := CurrentIdentity(r, issuer)
		if err != nil {
			writeError(w, http.StatusUnauthorized, i18n.T("Sign in required"))
			return
		}
		if !id.IsAdmin {
			writeError(w, http.StatusForbidden, i18n.T("Access denied: administrator privileges required"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)), ps)
	}
}

// CurrentIdentity reads the session from the cookie or a bearer token.
func CurrentIdentity(r *http.Request, issuer *auth.Issuer) (models.Identity, error) {
	token := ""
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		token = cookie.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return models.Identity{}, auth.ErrInvalidToken
	}
	return issuer.Parse(token)
}

// IdentityFrom returns the identity stored by RequireAdmin.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}
