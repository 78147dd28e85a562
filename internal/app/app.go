// Package app implements the application layer for stale.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"go.trai.ch/stale/internal/adapters/cachestore"
	"go.trai.ch/stale/internal/adapters/config"
	"go.trai.ch/stale/internal/adapters/logger"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/stale/internal/engine/checker"
	"go.trai.ch/stale/internal/engine/runner"
	"go.trai.ch/zerr"
)

// ErrUnknownTarget is returned when a requested action name is not defined.
var ErrUnknownTarget = zerr.New("unknown target")

// App wires the checker, the runner and their collaborators for one
// invocation.
type App struct {
	log       ports.Logger
	telemetry ports.Telemetry
	metadata  ports.MetadataProvider
	executor  ports.Executor
	resolver  ports.SourceResolver
}

// New creates a new App instance.
func New(
	log ports.Logger,
	telemetry ports.Telemetry,
	metadata ports.MetadataProvider,
	executor ports.Executor,
	resolver ports.SourceResolver,
) *App {
	return &App{
		log:       log,
		telemetry: telemetry,
		metadata:  metadata,
		executor:  executor,
		resolver:  resolver,
	}
}

// RunOptions configures one build run.
type RunOptions struct {
	ConfigPath  string
	Targets     []string
	Force       bool
	Parallelism int
}

// Run validates and executes the configured actions.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ws, store, err := a.open(opts.ConfigPath)
	if err != nil {
		return err
	}

	actions, err := selectActions(ws.Actions, opts.Targets)
	if err != nil {
		return err
	}

	clientEnv, err := config.LoadClientEnv(".")
	if err != nil {
		return err
	}

	chk := checker.New(
		store,
		a.resolver,
		a.log,
		logger.NewExplainSink(a.log),
		ws.KeyCtx,
		nil,
		checker.Config{
			Enabled:             ws.CacheEnabled,
			VerboseExplanations: ws.VerboseExplanations,
			StoreOutputMetadata: ws.StoreOutputMetadata,
		},
	)
	run := runner.New(chk, a.executor, a.metadata, a.telemetry, a.log)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	res, err := run.Run(ctx, actions, clientEnv, nil, parallelism, opts.Force)
	if err != nil {
		return zerr.Wrap(err, "build execution failed")
	}

	a.log.Info(fmt.Sprintf("done: %d executed, %d cached", res.Executed, res.Cached))
	return nil
}

// Stats prints the entry store contents summary.
func (a *App) Stats(configPath string) error {
	_, store, err := a.open(configPath)
	if err != nil {
		return err
	}
	snapshot := store.Snapshot()
	a.log.Info(fmt.Sprintf("entries: %d", store.Len()))
	a.log.Info(fmt.Sprintf("hits: %d", snapshot.Hits))

	reasons := make([]string, 0, len(snapshot.Misses))
	for reason := range snapshot.Misses {
		reasons = append(reasons, reason.String())
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		a.log.Info(fmt.Sprintf("misses[%s]: %d", reason, snapshot.Misses[domain.MissReason(reason)]))
	}
	return nil
}

// Clean drops every cache entry.
func (a *App) Clean(configPath string) error {
	_, store, err := a.open(configPath)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	a.log.Info("cache cleared")
	return nil
}

func (a *App) open(configPath string) (*config.Workspace, *cachestore.Store, error) {
	ws, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	store, err := cachestore.NewStore(ws.CachePath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to open entry store")
	}
	return ws, store, nil
}

func selectActions(all []*domain.Action, targets []string) ([]*domain.Action, error) {
	if len(targets) == 0 {
		return all, nil
	}
	byName := make(map[string]*domain.Action, len(all))
	for _, action := range all {
		byName[action.Name.String()] = action
	}
	selected := make([]*domain.Action, 0, len(targets))
	for _, target := range targets {
		action, ok := byName[target]
		if !ok {
			return nil, zerr.With(ErrUnknownTarget, "target", target)
		}
		selected = append(selected, action)
	}
	return selected, nil
}
