package model

import (
	"fmt"
	"time"
)

// User represents an account that can report items and submit claims.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. Staff and admin run the Lost & Found desk; faculty and students
// report and claim items.
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:   4,
		RoleStaff:   3,
		RoleFaculty: 2,
		RoleStudent: 1,
	}
	lr, ok := levels[role]
	if !ok {
		return false
	}
	lm, ok := levels[minimum]
	if !ok {
		return false
	}
	return lr >= lm
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleFaculty, RoleStudent:
		return true
	}
	return false
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
