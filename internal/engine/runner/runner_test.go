package runner_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/stale/internal/core/ports/mocks"
	"go.trai.ch/stale/internal/engine/checker"
	"go.trai.ch/stale/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

var testKeyCtx = &domain.KeyContext{Salt: "ws"}

type runnerMocks struct {
	store    *mocks.MockEntryStore
	metadata *mocks.MockMetadataProvider
	executor *mocks.MockExecutor
	vertex   *mocks.MockVertex
}

// setupRunner creates a runner over a real checker and mocked collaborators.
func setupRunner(t *testing.T, filter checker.ExecutionFilter) (*runner.Runner, runnerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := runnerMocks{
		store:    mocks.NewMockEntryStore(ctrl),
		metadata: mocks.NewMockMetadataProvider(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		vertex:   mocks.NewMockVertex(ctrl),
	}

	telemetry := mocks.NewMockTelemetry(ctrl)
	telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, m.vertex
		},
	).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	chk := checker.New(
		m.store,
		mocks.NewMockSourceResolver(ctrl),
		logger,
		nil,
		testKeyCtx,
		filter,
		checker.Config{Enabled: true},
	)
	return runner.New(chk, m.executor, m.metadata, telemetry, logger), m
}

// stubMetadata answers metadata lookups from a fixed path map; everything
// else is reported missing.
func stubMetadata(m *mocks.MockMetadataProvider, values map[string]*domain.FileMetadata) {
	m.EXPECT().Metadata(gomock.Any()).DoAndReturn(
		func(a *domain.Artifact) (*domain.FileMetadata, error) {
			if md, ok := values[a.ExecPath()]; ok {
				return md, nil
			}
			return nil, fmt.Errorf("%s: %w", a.ExecPath(), fs.ErrNotExist)
		},
	).AnyTimes()
	m.EXPECT().OutputOmitted(gomock.Any()).Return(false).AnyTimes()
}

func compileAction() *domain.Action {
	return &domain.Action{
		Name:          domain.NewInternedString("compile"),
		Command:       []string{"cc", "-c", "src/a.c", "-o", "out/a.o"},
		Outputs:       []*domain.Artifact{domain.NewArtifact("out/a.o")},
		Inputs:        []*domain.Artifact{domain.NewSourceArtifact("src/a.c")},
		ClientEnvVars: []string{"CC"},
	}
}

func compileMetadata() map[string]*domain.FileMetadata {
	return map[string]*domain.FileMetadata{
		"src/a.c": {Digest: "c1", Size: 10, ModTimeNanos: 1},
		"out/a.o": {Digest: "o1", Size: 5, ModTimeNanos: 2},
	}
}

func TestRun_ExecutesAndCommits(t *testing.T) {
	r, m := setupRunner(t, nil)
	action := compileAction()
	stubMetadata(m.metadata, compileMetadata())

	// One probe during validation, one before the commit.
	m.store.EXPECT().Get("out/a.o").Return(nil, nil).Times(2)
	m.store.EXPECT().CountMiss(domain.MissNotCached).Times(1)
	m.store.EXPECT().Put("out/a.o", gomock.Any()).Return(nil).Times(1)

	m.executor.EXPECT().
		Execute(gomock.Any(), action, []string{"CC=clang"}).
		Return(nil).Times(1)
	m.vertex.EXPECT().Complete(nil).Times(1)

	res, err := r.Run(context.Background(), []*domain.Action{action},
		map[string]string{"CC": "clang", "UNRELATED": "x"}, nil, 2, false)
	require.NoError(t, err)
	require.Equal(t, &runner.Result{Executed: 1}, res)
}

func TestRun_CacheHitSkipsExecution(t *testing.T) {
	r, m := setupRunner(t, nil)
	action := compileAction()
	values := compileMetadata()
	stubMetadata(m.metadata, values)

	entry := domain.NewEntry(action.Key(testKeyCtx), map[string]string{"CC": "clang"}, false)
	entry.AddOutputFile("out/a.o", values["out/a.o"], false)
	entry.AddInputFile("src/a.c", values["src/a.c"], true)
	entry.Digest()

	m.store.EXPECT().Get("out/a.o").Return(entry, nil).Times(1)
	m.store.EXPECT().CountHit().Times(1)
	m.vertex.EXPECT().Cached().Times(1)
	m.vertex.EXPECT().Complete(nil).Times(1)

	res, err := r.Run(context.Background(), []*domain.Action{action},
		map[string]string{"CC": "clang"}, nil, 1, false)
	require.NoError(t, err)
	require.Equal(t, &runner.Result{Cached: 1}, res)
}

func TestRun_ExecutionFailure(t *testing.T) {
	r, m := setupRunner(t, nil)
	action := compileAction()
	stubMetadata(m.metadata, compileMetadata())

	execErr := errors.New("compiler exploded")
	m.store.EXPECT().Get("out/a.o").Return(nil, nil).Times(1)
	m.store.EXPECT().CountMiss(domain.MissNotCached).Times(1)
	m.executor.EXPECT().Execute(gomock.Any(), action, gomock.Any()).Return(execErr).Times(1)
	m.vertex.EXPECT().Complete(execErr).Times(1)

	_, err := r.Run(context.Background(), []*domain.Action{action}, nil, nil, 1, false)
	require.ErrorIs(t, err, execErr)
}

func TestRun_ForceDropsEntry(t *testing.T) {
	r, m := setupRunner(t, nil)
	action := compileAction()
	stubMetadata(m.metadata, compileMetadata())

	m.store.EXPECT().Remove("out/a.o").Return(nil).Times(1)
	m.store.EXPECT().Get("out/a.o").Return(nil, nil).Times(2)
	m.store.EXPECT().CountMiss(domain.MissNotCached).Times(1)
	m.store.EXPECT().Put("out/a.o", gomock.Any()).Return(nil).Times(1)
	m.executor.EXPECT().Execute(gomock.Any(), action, gomock.Any()).Return(nil).Times(1)
	m.vertex.EXPECT().Complete(nil).Times(1)

	res, err := r.Run(context.Background(), []*domain.Action{action}, nil, nil, 1, true)
	require.NoError(t, err)
	require.Equal(t, 1, res.Executed)
}

func TestRun_ProhibitedActionSkipped(t *testing.T) {
	filter := func(*domain.Action) bool { return false }
	r, m := setupRunner(t, filter)

	m.vertex.EXPECT().Complete(nil).Times(1)

	res, err := r.Run(context.Background(), []*domain.Action{compileAction()}, nil, nil, 1, false)
	require.NoError(t, err)
	require.Equal(t, &runner.Result{Cached: 1}, res)
}

func TestRun_ParallelActions(t *testing.T) {
	r, m := setupRunner(t, nil)

	actions := make([]*domain.Action, 4)
	values := make(map[string]*domain.FileMetadata)
	for i := range actions {
		out := fmt.Sprintf("out/%d.o", i)
		in := fmt.Sprintf("src/%d.c", i)
		actions[i] = &domain.Action{
			Name:    domain.NewInternedString(fmt.Sprintf("compile-%d", i)),
			Command: []string{"cc", "-c", in},
			Outputs: []*domain.Artifact{domain.NewArtifact(out)},
			Inputs:  []*domain.Artifact{domain.NewSourceArtifact(in)},
		}
		values[out] = &domain.FileMetadata{Digest: fmt.Sprintf("o%d", i), Size: 1, ModTimeNanos: 1}
		values[in] = &domain.FileMetadata{Digest: fmt.Sprintf("c%d", i), Size: 2, ModTimeNanos: 1}
	}
	stubMetadata(m.metadata, values)

	m.store.EXPECT().Get(gomock.Any()).Return(nil, nil).Times(8)
	m.store.EXPECT().CountMiss(domain.MissNotCached).Times(4)
	m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(4)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(4)
	m.vertex.EXPECT().Complete(nil).Times(4)

	res, err := r.Run(context.Background(), actions, nil, nil, 3, false)
	require.NoError(t, err)
	require.Equal(t, &runner.Result{Executed: 4}, res)
}
