package models

import (
	"fmt"
	"strings"
)

// Role ist der Status eines Scholars. Die Integer-Werte entsprechen der Spalte
// scholars.role und dürfen nicht umsortiert werden.
type Role int

const (
	RoleSecondary     Role = 0
	RolePrimary       Role = 1
	RoleNotInterested Role = 2
)

// Roles listet alle gültigen Rollen.
var Roles = []Role{RoleSecondary, RolePrimary, RoleNotInterested}

func (r Role) String() string {
	switch r {
	case RoleSecondary:
		return "secondary"
	case RolePrimary:
		return "primary"
	case RoleNotInterested:
		return "not-interested"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Valid meldet, ob r eine der drei bekannten Rollen ist.
func (r Role) Valid() bool {
	switch r {
	case RoleSecondary, RolePrimary, RoleNotInterested:
		return true
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole akzeptiert die Namen sowie die alten Statuscodes 0/1/2.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "secondary", "0":
		return RoleSecondary, nil
	case "primary", "main", "1":
		return RolePrimary, nil
	case "not-interested", "not_interested", "notinterested", "hidden", "2":
		return RoleNotInterested, nil
	}
	return RoleSecondary, fmt.Errorf("unknown role %q", s)
}
