// Package models contains the persisted entities of the CipherSafe server.
package models

import "time"

// User is a registered account. Email is unique and immutable after
// creation; PasswordHash is a bcrypt hash, the raw password is never stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
	IsActive     bool
}
