package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*SourceResolver)(nil)

// SourceResolver resolves exec paths back to source artifacts by checking
// the workspace. Paths that no longer exist are left out of the result;
// digest validation catches any input set change they would have signalled.
type SourceResolver struct {
	root string
}

// NewSourceResolver creates a SourceResolver rooted at the execution root.
func NewSourceResolver(root string) *SourceResolver {
	return &SourceResolver{root: filepath.Clean(root)}
}

// ResolveSources maps each path to a source artifact when the file exists.
func (r *SourceResolver) ResolveSources(paths []string) (map[string]*domain.Artifact, error) {
	resolved := make(map[string]*domain.Artifact, len(paths))
	for _, path := range paths {
		_, err := os.Stat(filepath.Join(r.root, path))
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve source path"), "path", path)
		}
		resolved[path] = domain.NewSourceArtifact(path)
	}
	return resolved, nil
}
