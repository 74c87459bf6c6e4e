package domain

import (
	"strings"
	"time"
)

// User is a registered account. Most traffic is anonymous; accounts exist
// so usage can be attributed across sessions.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
	IsActive     bool
}

// ValidateUser checks the fields required before insert.
func ValidateUser(u *User) error {
	if u == nil {
		return NewDomainError(ErrCodeValidation, "user cannot be nil")
	}
	if u.Email == "" || u.PasswordHash == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(u.Email, "@") {
		return NewDomainError(ErrCodeValidation, "invalid email address")
	}
	return nil
}
