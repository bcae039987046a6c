package model

import "time"

// Account is a login account stored in DataService's durable store.
type Account struct {
	AccountID    int64
	Username     string
	Email        string
	PasswordHash string // opaque bcrypt verifier
	Banned       bool
	CreatedAt    time.Time
	LastLoginAt  time.Time
}
