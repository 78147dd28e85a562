package ports

import "go.trai.ch/stale/internal/core/domain"

// EventSink receives human-readable rebuild-reason diagnostics. Diagnostics
// are advisory only: a nil sink suppresses them without changing any verdict.
//
//go:generate go run go.uber.org/mock/mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks
type EventSink interface {
	// Explain reports why an action is being re-executed.
	Explain(action *domain.Action, message string)
}
