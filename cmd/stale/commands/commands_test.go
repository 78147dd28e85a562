package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/cmd/stale/commands"
	"go.trai.ch/stale/internal/adapters/fs"
	"go.trai.ch/stale/internal/adapters/logger"
	"go.trai.ch/stale/internal/adapters/telemetry"
	"go.trai.ch/stale/internal/app"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type cliHarness struct {
	dir      string
	cfg      string
	executor *mocks.MockExecutor
	logs     *bytes.Buffer
	cli      *commands.CLI
}

// setupCLI builds a CLI over a real workspace in a temp dir, with only the
// executor mocked so tests can count executions.
func setupCLI(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.c"), []byte("int main() {}"), 0o644))

	cfg := filepath.Join(dir, "stale.yaml")
	manifest := fmt.Sprintf(`version: "1"
cache:
  path: %s
actions:
  build:
    cmd: ["cc", "-c", "src/a.c", "-o", "out/a.o"]
    inputs: ["src/a.c"]
    outputs: ["out/a.o"]
`, filepath.Join(dir, ".stale", "cache.json"))
	require.NoError(t, os.WriteFile(cfg, []byte(manifest), 0o644))

	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	logs := &bytes.Buffer{}
	log := logger.New()
	log.SetOutput(logs)

	a := app.New(
		log,
		telemetry.NewNoOp(),
		fs.NewMetadataProvider(dir),
		executor,
		fs.NewSourceResolver(dir),
	)

	return &cliHarness{
		dir:      dir,
		cfg:      cfg,
		executor: executor,
		logs:     logs,
		cli:      commands.New(a),
	}
}

func (h *cliHarness) exec(args ...string) error {
	h.cli.SetArgs(append(args, "--config", h.cfg))
	return h.cli.Execute(context.Background())
}

// expectBuild arms the mocked executor to produce the build action's output.
func (h *cliHarness) expectBuild(t *testing.T, times int) {
	t.Helper()
	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.Action, _ []string) error {
			if err := os.MkdirAll(filepath.Join(h.dir, "out"), 0o755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(h.dir, "out", "a.o"), []byte("object code"), 0o644)
		},
	).Times(times)
}

func TestRun_ExecutesThenHitsCache(t *testing.T) {
	h := setupCLI(t)
	h.expectBuild(t, 1)

	require.NoError(t, h.exec("run", "build"))
	require.Contains(t, h.logs.String(), "1 executed, 0 cached")

	h.logs.Reset()
	require.NoError(t, h.exec("run", "build"))
	require.Contains(t, h.logs.String(), "0 executed, 1 cached")
}

func TestRun_InputChangeInvalidates(t *testing.T) {
	h := setupCLI(t)
	h.expectBuild(t, 2)

	require.NoError(t, h.exec("run", "build"))
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "src", "a.c"), []byte("int main() { return 1; }"), 0o644))
	require.NoError(t, h.exec("run", "build"))
}

func TestRun_Force(t *testing.T) {
	h := setupCLI(t)
	h.expectBuild(t, 2)

	require.NoError(t, h.exec("run", "build"))
	require.NoError(t, h.exec("run", "build", "--force"))
}

func TestRun_UnknownTarget(t *testing.T) {
	h := setupCLI(t)

	err := h.exec("run", "nonexistent")
	require.ErrorIs(t, err, app.ErrUnknownTarget)
}

func TestRun_MissingConfig(t *testing.T) {
	h := setupCLI(t)
	h.cfg = filepath.Join(h.dir, "absent.yaml")

	require.Error(t, h.exec("run", "build"))
}

func TestStats(t *testing.T) {
	h := setupCLI(t)
	h.expectBuild(t, 1)
	require.NoError(t, h.exec("run", "build"))

	h.logs.Reset()
	require.NoError(t, h.exec("stats"))
	require.Contains(t, h.logs.String(), "entries: 1")
}

func TestClean(t *testing.T) {
	h := setupCLI(t)
	h.expectBuild(t, 2)
	require.NoError(t, h.exec("run", "build"))

	require.NoError(t, h.exec("clean"))

	h.logs.Reset()
	require.NoError(t, h.exec("run", "build"))
	require.Contains(t, h.logs.String(), "1 executed, 0 cached")
}

func TestVersion(t *testing.T) {
	h := setupCLI(t)

	require.NoError(t, h.exec("version"))
}
