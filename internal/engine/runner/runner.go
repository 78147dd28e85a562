// Package runner drives actions through the validate, execute, commit cycle.
package runner

import (
	"context"
	"sort"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/stale/internal/engine/checker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Runner validates each action against the cache, executes the ones that
// need it and commits their entries under the token protocol. Actions are
// independent here; ordering between them is the scheduler's concern, not
// ours, so they run with bounded parallelism and no cross-action order.
type Runner struct {
	checker   *checker.Checker
	executor  ports.Executor
	metadata  ports.MetadataProvider
	telemetry ports.Telemetry
	log       ports.Logger
}

// New creates a Runner.
func New(
	chk *checker.Checker,
	executor ports.Executor,
	metadata ports.MetadataProvider,
	telemetry ports.Telemetry,
	log ports.Logger,
) *Runner {
	return &Runner{
		checker:   chk,
		executor:  executor,
		metadata:  metadata,
		telemetry: telemetry,
		log:       log,
	}
}

// Result summarizes one run.
type Result struct {
	Executed int
	Cached   int
}

// Run processes the given actions with the specified parallelism.
func (r *Runner) Run(
	ctx context.Context,
	actions []*domain.Action,
	clientEnv map[string]string,
	execPropsDefaults map[string]string,
	parallelism int,
	force bool,
) (*Result, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]bool, len(actions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, action := range actions {
		g.Go(func() error {
			executed, err := r.runOne(ctx, action, clientEnv, execPropsDefaults, force)
			if err != nil {
				return err
			}
			results[i] = executed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, executed := range results {
		if executed {
			res.Executed++
		} else {
			res.Cached++
		}
	}
	return res, nil
}

// runOne reports whether the action was executed (as opposed to satisfied
// from the cache).
func (r *Runner) runOne(
	ctx context.Context,
	action *domain.Action,
	clientEnv map[string]string,
	execPropsDefaults map[string]string,
	force bool,
) (bool, error) {
	_, vertex := r.telemetry.Record(ctx, action.Name.String())

	if r.checker.ExecutionProhibited(action) {
		vertex.Complete(nil)
		return false, nil
	}

	var token *checker.Token
	var err error
	if force {
		token, err = r.checker.ForceExecution(action, nil, r.metadata, clientEnv, execPropsDefaults, true)
	} else {
		token, err = r.checker.NeedsExecution(action, nil, r.metadata, clientEnv, execPropsDefaults, true)
	}
	if err != nil {
		vertex.Complete(err)
		return false, zerr.With(zerr.Wrap(err, "cache validation failed"), "action", action.Name.String())
	}

	if token == nil {
		// Hit, or a middleman: outputs are current, skip execution.
		vertex.Cached()
		vertex.Complete(nil)
		return false, nil
	}

	if err := r.executor.Execute(ctx, action, formatEnv(clientEnv, action)); err != nil {
		vertex.Complete(err)
		return false, err
	}

	if r.checker.Enabled() {
		if err := r.checker.UpdateCache(action, token, r.metadata, clientEnv, execPropsDefaults); err != nil {
			vertex.Complete(err)
			return false, zerr.With(zerr.Wrap(err, "cache update failed"), "action", action.Name.String())
		}
	}

	vertex.Complete(nil)
	return true, nil
}

// formatEnv renders the action's declared client environment as KEY=VALUE
// entries for the executor.
func formatEnv(clientEnv map[string]string, action *domain.Action) []string {
	env := make([]string, 0, len(action.ClientEnvVars))
	for _, name := range action.ClientEnvVars {
		if value, ok := clientEnv[name]; ok {
			env = append(env, name+"="+value)
		}
	}
	sort.Strings(env)
	return env
}
