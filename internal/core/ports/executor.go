package ports

import (
	"context"

	"go.trai.ch/stale/internal/core/domain"
)

// Executor runs actions whose cached outputs could not be reused.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the given action with the specified environment.
	//
	// The env parameter contains environment variables in "KEY=VALUE"
	// format. It returns an error if the action execution fails.
	Execute(ctx context.Context, action *domain.Action, env []string) error
}
