// Package auth decides who may administer the application and carries the
// signed-in identity between requests in a signed session token.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Vadied/party-manager/internal/models"
)

// ErrInvalidToken is returned for a session token that is malformed, expired
// or signed with another key.
var ErrInvalidToken = errors.New("invalid session token")

// AllowList is the fixed set of administrator email addresses.
type AllowList struct {
	emails map[string]bool
}

// NewAllowList builds an AllowList. Addresses are compared case-insensitively.
func NewAllowList(emails []string) AllowList {
	a := AllowList{emails: make(map[string]bool, len(emails))}
	for _, e := range emails {
		if e = normalize(e); e != "" {
			a.emails[e] = true
		}
	}
	return a
}

// IsAdmin reports whether email is on the list.
func (a AllowList) IsAdmin(email string) bool {
	return a.emails[normalize(email)]
}

// Len is the number of administrators.
func (a AllowList) Len() int { return len(a.emails) }

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Claims is the session token payload. Verified records that the address
// was proven to belong to the holder when the token was issued; admin rights
// additionally require the address to still be on the allow-list when the
// token is read.
type Claims struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
	Verified  bool   `json:"verified,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with HS256.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	admins AllowList
	now    func() time.Time
}

// NewIssuer returns an Issuer whose tokens expire after ttl.
func NewIssuer(secret []byte, ttl time.Duration, admins AllowList) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, admins: admins, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Admins is the allow-list the issuer checks against.
func (i *Issuer) Admins() AllowList { return i.admins }

// Identity builds the identity for a signed-in user. Only a verified address
// on the allow-list is an administrator.
func (i *Issuer) Identity(name, email, avatarURL string, verified bool) models.Identity {
	return models.Identity{
		Name:      name,
		Email:     normalize(email),
		AvatarURL: avatarURL,
		Verified:  verified,
		IsAdmin:   verified && i.admins.IsAdmin(email),
	}
}

// Issue signs a token for id and returns it with its expiry.
func (i *Issuer) Issue(id models.Identity) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Name:      id.Name,
		Email:     normalize(id.Email),
		AvatarURL: id.AvatarURL,
		Verified:  id.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   normalize(id.Email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// Parse verifies token and returns the identity it carries.
func (i *Issuer) Parse(token string) (models.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Email == "" {
		return models.Identity{}, ErrInvalidToken
	}
	return i.Identity(claims.Name, claims.Email, claims.AvatarURL, claims.Verified), nil
}
