package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/engine/checker"
)

func middlemanAction() *domain.Action {
	return &domain.Action{
		Name: domain.NewInternedString("runfiles"),
		Type: domain.MiddlemanAction,
		Outputs: []*domain.Artifact{
			{Path: domain.NewInternedString("virtual/runfiles"), Kind: domain.VirtualArtifact},
		},
		Inputs: []*domain.Artifact{
			domain.NewSourceArtifact("data/a.txt"),
			domain.NewSourceArtifact("data/b.txt"),
		},
	}
}

func (e *testEnv) seedMiddleman() {
	e.md.files["data/a.txt"] = fileMD("a1", 10, 1)
	e.md.files["data/b.txt"] = fileMD("b1", 20, 2)
}

func TestMiddleman_FirstRunRecordsDeps(t *testing.T) {
	e := enabledEnv()
	e.seedMiddleman()
	action := middlemanAction()

	token, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	require.Nil(t, token)
	require.Equal(t, domain.MissDifferentDeps, e.store.lastMiss())

	// The aggregated digest is published for downstream consumers.
	digest := e.md.virtual["virtual/runfiles"]
	require.NotEmpty(t, digest)

	entry, err := e.store.Get("virtual/runfiles")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Empty(t, entry.ActionKey)
	require.Equal(t, digest, entry.Digest())
}

func TestMiddleman_SecondRunHits(t *testing.T) {
	e := enabledEnv()
	e.seedMiddleman()
	action := middlemanAction()

	_, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	first := e.md.virtual["virtual/runfiles"]

	token, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	require.Nil(t, token)
	require.Equal(t, first, e.md.virtual["virtual/runfiles"])

	hits, misses := e.store.counters()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)
}

func TestMiddleman_InputChanged(t *testing.T) {
	e := enabledEnv()
	e.seedMiddleman()
	action := middlemanAction()

	_, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	first := e.md.virtual["virtual/runfiles"]

	e.md.files["data/a.txt"] = fileMD("a2", 11, 5)

	token, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	require.Nil(t, token)
	require.Equal(t, domain.MissDifferentFiles, e.store.lastMiss())
	require.NotEqual(t, first, e.md.virtual["virtual/runfiles"])
}

func TestMiddleman_CorruptedEntry(t *testing.T) {
	e := enabledEnv()
	e.seedMiddleman()
	action := middlemanAction()
	require.NoError(t, e.store.Put("virtual/runfiles", domain.CorruptedEntry()))

	token, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	require.Nil(t, token)
	require.Equal(t, domain.MissCorrupted, e.store.lastMiss())

	entry, err := e.store.Get("virtual/runfiles")
	require.NoError(t, err)
	require.False(t, entry.IsCorrupted())
	require.NotEmpty(t, e.md.virtual["virtual/runfiles"])
}

func TestMiddleman_Disabled(t *testing.T) {
	e := newTestEnv(checker.Config{Enabled: false})
	e.seedMiddleman()
	action := middlemanAction()

	token, err := e.chk.NeedsExecution(action, nil, e.md, nil, nil, true)
	require.NoError(t, err)
	require.Nil(t, token)

	// No digest generation while the cache is off.
	require.Empty(t, e.md.virtual)
	hits, misses := e.store.counters()
	require.Zero(t, hits)
	require.Zero(t, misses)
}

func TestMiddleman_NeverExplained(t *testing.T) {
	e := enabledEnv()
	e.seedMiddleman()

	_, err := e.chk.NeedsExecution(middlemanAction(), nil, e.md, nil, nil, true)
	require.NoError(t, err)
	require.Empty(t, e.sink.messages)
}
