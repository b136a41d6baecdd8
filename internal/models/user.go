package models

import (
	"strings"
	"time"
)

// User is a local sign-in account. Admin rights are not stored here; they
// come from the allow-list at request time. Provisioned accounts were created
// by the server operator, so their address is trusted; self-registered ones
// are not.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Provisioned  bool
	CreatedAt    time.Time
}

// Identity is the authenticated caller as seen by the application.
type Identity struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Verified  bool   `json:"verified"`
	IsAdmin   bool   `json:"isAdmin"`
}

// SplitName returns the first word of the display name and the rest, used to
// prefill the booking form.
func (i Identity) SplitName() (first, last string) {
	parts := strings.Fields(i.Name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
