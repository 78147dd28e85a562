package domain

import "go.trai.ch/zerr"

var (
	// ErrCacheDisabled is returned when a cache write is attempted while
	// caching is administratively disabled.
	ErrCacheDisabled = zerr.New("action cache is disabled")

	// ErrNilToken is returned when a cache update is attempted without a
	// token from a prior validation.
	ErrNilToken = zerr.New("cache update requires a token")

	// ErrTokenReused is returned when a token is presented to the update
	// protocol more than once.
	ErrTokenReused = zerr.New("token already consumed")

	// ErrNoOutputs is returned for actions that declare no outputs; the
	// primary output's exec path is the cache key, so at least one is
	// required.
	ErrNoOutputs = zerr.New("action declares no outputs")

	// ErrMissingOutputMetadata is returned when a non-omitted output has no
	// metadata after execution. Execution must have produced it, so this is
	// a build invariant violation.
	ErrMissingOutputMetadata = zerr.New("output has no metadata after execution")

	// ErrInputsNotDiscoverable is returned when an action that does not know
	// its inputs is not capable of discovering them.
	ErrInputsNotDiscoverable = zerr.New("action with unknown inputs must discover them")

	// ErrCorruptedEntry marks a cache entry that failed deserialization or
	// logical validation.
	ErrCorruptedEntry = zerr.New("corrupted cache entry")
)
