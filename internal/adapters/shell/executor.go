// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	root   string
	logger ports.Logger
}

// NewExecutor creates a shell executor running commands under root.
func NewExecutor(root string, logger ports.Logger) *Executor {
	return &Executor{root: filepath.Clean(root), logger: logger}
}

// Execute runs the action's command with the specified environment. The env
// parameter overrides the system environment; entries are "KEY=VALUE".
func (e *Executor) Execute(ctx context.Context, action *domain.Action, env []string) error {
	if len(action.Command) == 0 {
		return nil
	}

	name := action.Command[0]
	args := action.Command[1:]

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // user provided command
	cmd.Dir = e.root
	cmd.Env = mergeEnv(os.Environ(), env)
	cmd.Stdout = &logWriter{logger: e.logger, stderr: false}
	cmd.Stderr = &logWriter{logger: e.logger, stderr: true}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"),
			"action", action.Name.String()), "exit_code", exitCode)
	}
	return nil
}

type logWriter struct {
	logger ports.Logger
	stderr bool
}

func (w *logWriter) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.stderr {
			w.logger.Warn(line)
		} else {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}

// mergeEnv overlays env onto base, later entries winning per key.
func mergeEnv(base, env []string) []string {
	merged := make(map[string]string, len(base)+len(env))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for _, entry := range env {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	result := make([]string, 0, len(merged))
	for k, v := range merged {
		result = append(result, k+"="+v)
	}
	return result
}
