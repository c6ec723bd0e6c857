package models

import "time"

// Vault is the single client-encrypted blob owned by one user. The server
// never interprets EncryptedData; all cryptography happens in the client.
// An absent vault reads as version 1; every successful save bumps the
// version, so the first stored row carries version 2.
type Vault struct {
	ID            string
	UserID        string
	EncryptedData string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
