// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/stale/internal/adapters/fs"
	_ "go.trai.ch/stale/internal/adapters/logger"
	_ "go.trai.ch/stale/internal/adapters/shell"
	_ "go.trai.ch/stale/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/stale/internal/app"
)
