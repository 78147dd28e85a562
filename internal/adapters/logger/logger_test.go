package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/adapters/logger"
	"go.trai.ch/stale/internal/core/domain"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New()
	log.SetOutput(&buf)

	log.Info("build started")
	log.Warn("cache entry dropped")
	log.Error(errors.New("boom"))

	out := buf.String()
	require.Contains(t, out, "build started")
	require.Contains(t, out, "cache entry dropped")
	require.Contains(t, out, "boom")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "level=ERROR")
}

func TestExplainSink(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New()
	log.SetOutput(&buf)

	sink := logger.NewExplainSink(log)
	action := &domain.Action{
		Name:    domain.NewInternedString("compile"),
		Outputs: []*domain.Artifact{domain.NewArtifact("out/a.o")},
	}
	sink.Explain(action, "one of the files has changed")

	out := buf.String()
	require.Contains(t, out, "compile -> out/a.o")
	require.Contains(t, out, "one of the files has changed")
}
