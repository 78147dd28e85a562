package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
)

func md(digest string, size, mtime int64) *domain.FileMetadata {
	return &domain.FileMetadata{Digest: digest, Size: size, ModTimeNanos: mtime}
}

func TestCombineDigests_Deterministic(t *testing.T) {
	mdMap := map[string]*domain.FileMetadata{
		"out/a.o":   md("aa", 10, 1),
		"src/a.c":   md("bb", 20, 2),
		"src/a.h":   md("cc", 30, 3),
		"src/gone":  nil,
		"out/a.log": md("dd", 0, 4),
	}

	first := domain.CombineDigests(mdMap)
	second := domain.CombineDigests(mdMap)

	require.NotEmpty(t, first)
	require.Equal(t, first, second)
}

func TestCombineDigests_SensitiveToValue(t *testing.T) {
	base := map[string]*domain.FileMetadata{"src/a.c": md("aa", 10, 1)}
	baseline := domain.CombineDigests(base)

	changedDigest := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": md("ab", 10, 1),
	})
	changedSize := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": md("aa", 11, 1),
	})
	changedMtime := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": md("aa", 10, 2),
	})

	require.NotEqual(t, baseline, changedDigest)
	require.NotEqual(t, baseline, changedSize)
	require.NotEqual(t, baseline, changedMtime)
}

func TestCombineDigests_SensitiveToKeySet(t *testing.T) {
	one := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": md("aa", 10, 1),
	})
	two := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": md("aa", 10, 1),
		"src/b.c": md("bb", 20, 2),
	})
	renamed := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/c.c": md("aa", 10, 1),
	})

	require.NotEqual(t, one, two)
	require.NotEqual(t, one, renamed)
}

func TestCombineDigests_AbsentDiffersFromPresent(t *testing.T) {
	absent := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": nil,
	})
	zeroValue := domain.CombineDigests(map[string]*domain.FileMetadata{
		"src/a.c": {},
	})
	missing := domain.CombineDigests(map[string]*domain.FileMetadata{})

	require.NotEqual(t, absent, zeroValue)
	require.NotEqual(t, absent, missing)
}
