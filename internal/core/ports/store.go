// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/stale/internal/core/domain"

// EntryStore is the persistent key/value store backing cache entries, keyed
// by the exec path of an action's primary output. Get, Put and Remove must
// each be atomic and safe under concurrent use; no cross-action transaction
// is required.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type EntryStore interface {
	// Get retrieves the entry stored under key.
	// Returns nil, nil if not found.
	Get(key string) (*domain.Entry, error)

	// Put stores the entry under key.
	Put(key string, entry *domain.Entry) error

	// Remove drops the entry stored under key, if any.
	Remove(key string) error

	// CountHit increments the cache hit counter.
	CountHit()

	// CountMiss increments the miss counter for the given reason.
	CountMiss(reason domain.MissReason)
}
