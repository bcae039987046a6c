package model

import "time"

// CharacterRecord is a character as stored by DataService: the durable
// fields that outlive any single WorldService session.
type CharacterRecord struct {
	CharacterID int64
	AccountID   int64
	Name        string
	Class       string
	Level       int32
	Experience  int64
	MaxHP       int32
	CurrentHP   int32
	Attack      int32
	Defense     int32
	Dex         int32
	Gold        int64
	ZoneID      int
	X, Y, Z     int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot returns a plain value copy suitable for JSON caching in the
// shared store (store.Client.SaveCharacterSnapshot).
func (c CharacterRecord) Snapshot() CharacterRecord {
	return c
}
