package models

import "time"

const (
	DefaultTheme    = "dark"
	DefaultAutoLock = 30 // minutes
)

// Settings holds per-user UI preferences. A row with defaults is created
// together with the user at registration.
type Settings struct {
	ID        string
	UserID    string
	Theme     string
	AutoLock  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
