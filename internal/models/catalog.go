package models

import (
	"strings"

	"github.com/Vadied/party-manager/internal/i18n"
)

// GamingSystem is the ruleset a session is played with. Values match the
// identifiers stored by earlier versions of the application.
type GamingSystem string

const (
	SystemDnD           GamingSystem = "DnD"
	SystemDaggerheart   GamingSystem = "Daggerheart"
	SystemVampire       GamingSystem = "Vampiri"
	SystemCallOfCthulhu GamingSystem = "Call of Cthulhu"
	SystemPathfinder    GamingSystem = "Pathfinder"
)

// GamingSystems lists every supported system in display order.
var GamingSystems = []GamingSystem{
	SystemDnD,
	SystemDaggerheart,
	SystemVampire,
	SystemCallOfCthulhu,
	SystemPathfinder,
}

var systemLabels = map[GamingSystem]string{
	SystemDnD:           "Dungeons & Dragons",
	SystemDaggerheart:   "Daggerheart",
	SystemVampire:       "Vampires: The Masquerade",
	SystemCallOfCthulhu: "Call of Cthulhu",
	SystemPathfinder:    "Pathfinder",
}

// Valid reports whether s is one of the supported systems.
func (s GamingSystem) Valid() bool {
	_, ok := systemLabels[s]
	return ok
}

// Label returns the localized display name, or the raw value for unknown systems.
func (s GamingSystem) Label() string {
	label, ok := systemLabels[s]
	if !ok {
		return string(s)
	}
	return i18n.T(label)
}

// ParseGamingSystem accepts a stored identifier, an English or localized
// label, or the "D&D" abbreviation. Matching ignores case and surrounding space.
func ParseGamingSystem(v string) (GamingSystem, bool) {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "D&D") {
		return SystemDnD, true
	}
	for _, s := range GamingSystems {
		if strings.EqualFold(v, string(s)) ||
			strings.EqualFold(v, systemLabels[s]) ||
			strings.EqualFold(v, s.Label()) {
			return s, true
		}
	}
	return "", false
}

// Role is what a booking is willing to do at the table.
type Role string

const (
	RoleMaster Role = "master"
	RolePlayer Role = "player"
)

// Roles lists the roles in display order.
var Roles = []Role{RoleMaster, RolePlayer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMaster || r == RolePlayer
}

// Label returns the localized display name.
func (r Role) Label() string {
	switch r {
	case RoleMaster:
		return i18n.T("Game Master")
	case RolePlayer:
		return i18n.T("Player")
	}
	return string(r)
}
