package models

import (
	"time"
)

type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string // never included in any outward-facing representation
	Role          Role
	Bio           string
	Phone         string
	IsActive      bool
	EmailVerified bool
	LoginAttempts int        // consecutive failed logins since the last success
	LockUntil     *time.Time // brute-force lock expiry, nil when not locked
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLocked reports whether the account is locked as of now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}
