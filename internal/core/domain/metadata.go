package domain

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// constantDigest is the sentinel digest recorded for constant-metadata
// outputs. It must be non-empty so it stays distinguishable from a missing
// digest when folded into a combined digest.
const constantDigest = "00"

// FileMetadata is the cached view of a single file: content digest, size and
// modification evidence. A nil *FileMetadata means "metadata absent", which
// is a distinct state from any present value.
type FileMetadata struct {
	Digest       string `json:"digest,omitzero"`
	Size         int64  `json:"size,omitzero"`
	ModTimeNanos int64  `json:"mtime_nanos,omitzero"`

	// Remote marks metadata observed from a remote execution result that may
	// not be materialized locally yet.
	Remote bool `json:"remote,omitzero"`

	// Constant marks the sentinel value substituted for constant-metadata
	// outputs.
	Constant bool `json:"constant,omitzero"`
}

// ConstantMetadataValue returns the sentinel metadata recorded for
// constant-metadata outputs: a fixed non-empty digest, zero size and an
// out-of-range modification time.
func ConstantMetadataValue() *FileMetadata {
	return &FileMetadata{
		Digest:       constantDigest,
		Size:         0,
		ModTimeNanos: -1,
		Constant:     true,
	}
}

// WasModifiedSince reports whether the file at path changed since this
// metadata was captured. Asking this of the constant-metadata sentinel is a
// programming error: the sentinel exists precisely so that changes are never
// observed.
func (m *FileMetadata) WasModifiedSince(other *FileMetadata) bool {
	if m.Constant {
		panic("constant metadata does not support modification queries")
	}
	if other == nil {
		return true
	}
	return m.Digest != other.Digest || m.Size != other.Size || m.ModTimeNanos != other.ModTimeNanos
}

// Equal reports whether two metadata values are indistinguishable.
func (m *FileMetadata) Equal(other *FileMetadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return *m == *other
}

// TreeMetadata is the cached view of a tree artifact: per-child file metadata
// keyed by the child path relative to the tree root, plus an optional
// archived representation of the whole tree.
type TreeMetadata struct {
	Children map[string]*FileMetadata `json:"children,omitzero"`
	Archived *FileMetadata            `json:"archived,omitzero"`
}

// Metadata folds the tree view into a single FileMetadata so that tree
// outputs can participate in combined digests the same way flat files do.
func (t *TreeMetadata) Metadata() *FileMetadata {
	h := xxhash.New()

	paths := make([]string, 0, len(t.Children))
	for p := range t.Children {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var size int64
	for _, p := range paths {
		writeMetadataTo(h, p, t.Children[p])
		if t.Children[p] != nil {
			size += t.Children[p].Size
		}
	}
	writeMetadataTo(h, "archived", t.Archived)

	return &FileMetadata{
		Digest: fmt.Sprintf("%016x", h.Sum64()),
		Size:   size,
	}
}
