package store

import "errors"

// ErrNotFound is wrapped by lookups that miss the store.
var ErrNotFound = errors.New("store: not found")
