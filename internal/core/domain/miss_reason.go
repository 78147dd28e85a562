package domain

// MissReason explains why a cache lookup did not produce a hit. The first
// matching condition of the miss-detection ladder wins and becomes the
// recorded reason.
type MissReason string

const (
	// MissUnconditional marks volatile actions that always re-execute.
	MissUnconditional MissReason = "UNCONDITIONAL"
	// MissNotCached marks actions with no entry in the store.
	MissNotCached MissReason = "NOT_CACHED"
	// MissCorrupted marks entries that failed deserialization or validation.
	MissCorrupted MissReason = "CORRUPTED"
	// MissDifferentFiles marks a combined-digest mismatch over inputs and
	// outputs.
	MissDifferentFiles MissReason = "DIFFERENT_FILES"
	// MissDifferentActionKey marks a command/configuration fingerprint
	// change.
	MissDifferentActionKey MissReason = "DIFFERENT_ACTION_KEY"
	// MissDifferentEnvironment marks a used-environment snapshot change.
	MissDifferentEnvironment MissReason = "DIFFERENT_ENVIRONMENT"
	// MissDifferentDeps marks a middleman whose dependency set changed or
	// was never recorded.
	MissDifferentDeps MissReason = "DIFFERENT_DEPS"
)

func (r MissReason) String() string {
	return string(r)
}
