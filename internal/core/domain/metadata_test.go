package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
)

func TestConstantMetadataValue(t *testing.T) {
	m := domain.ConstantMetadataValue()

	require.NotEmpty(t, m.Digest)
	require.Equal(t, int64(0), m.Size)
	require.Equal(t, int64(-1), m.ModTimeNanos)
	require.True(t, m.Constant)

	// Two sentinels are always interchangeable.
	require.True(t, m.Equal(domain.ConstantMetadataValue()))
}

func TestWasModifiedSince_PanicsOnConstant(t *testing.T) {
	m := domain.ConstantMetadataValue()
	require.Panics(t, func() {
		m.WasModifiedSince(md("aa", 1, 1))
	})
}

func TestWasModifiedSince(t *testing.T) {
	m := md("aa", 10, 1)

	require.True(t, m.WasModifiedSince(nil))
	require.False(t, m.WasModifiedSince(md("aa", 10, 1)))
	require.True(t, m.WasModifiedSince(md("ab", 10, 1)))
	require.True(t, m.WasModifiedSince(md("aa", 11, 1)))
	require.True(t, m.WasModifiedSince(md("aa", 10, 2)))
}

func TestTreeMetadata_Metadata(t *testing.T) {
	tree := &domain.TreeMetadata{
		Children: map[string]*domain.FileMetadata{
			"bin/a": md("aa", 10, 1),
			"bin/b": md("bb", 20, 2),
		},
	}

	folded := tree.Metadata()
	require.NotEmpty(t, folded.Digest)
	require.Equal(t, int64(30), folded.Size)
	require.Equal(t, folded.Digest, tree.Metadata().Digest)

	changed := &domain.TreeMetadata{
		Children: map[string]*domain.FileMetadata{
			"bin/a": md("aa", 10, 1),
			"bin/b": md("bc", 20, 2),
		},
	}
	require.NotEqual(t, folded.Digest, changed.Metadata().Digest)

	archived := &domain.TreeMetadata{
		Children: tree.Children,
		Archived: md("zip", 5, 3),
	}
	require.NotEqual(t, folded.Digest, archived.Metadata().Digest)
}
