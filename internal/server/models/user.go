// Package models defines the persistent domain records of the account core.
package models

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. The string values match what the
// store holds, so existing rows parse without translation.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole converts a stored string into a Role, rejecting anything outside
// the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the identity and credential record.
//
// PasswordHash and Salt are base64 strings and are always set together.
// EmailConfirmationToken is non-nil only while a confirmation is outstanding;
// it is cleared once the address is confirmed. Deleted users keep their row
// (IsDeleted) so audit references stay intact, and their username/email still
// count against uniqueness.
type User struct {
	ID                     string
	Username               string
	Email                  string
	PasswordHash           string
	Salt                   string
	Role                   Role
	IsEmailConfirmed       bool
	EmailConfirmationToken *string
	IsAdminRequested       bool
	IsDeleted              bool
	CreatedAt              time.Time
}

// AdminState reports where the user sits in the elevation state machine.
type AdminState int

const (
	AdminStateNormal AdminState = iota
	AdminStatePending
	AdminStateAdmin
)

// ElevationState derives the admin state machine position from the role and
// request flag.
func (u *User) ElevationState() AdminState {
	if u.Role == RoleAdmin {
		return AdminStateAdmin
	}
	if u.IsAdminRequested {
		return AdminStatePending
	}
	return AdminStateNormal
}
