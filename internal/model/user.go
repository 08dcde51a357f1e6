package model

import (
	"fmt"
	"time"
)

// User represents an authentication user. Managers carry zero or more store
// attachments that scope what they may do with transfers.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	StoreIDs     []string   `json:"store_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RolePartner  = "partner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RolePartner || role == RoleManager || role == RoleEmployee
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RolePartner:  3,
		RoleManager:  2,
		RoleEmployee: 1,
	}
	return levels[role] >= levels[minimum]
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Actor returns the user as an operation actor.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role, StoreIDs: u.StoreIDs}
}
