// Package fs implements filesystem-backed collaborators: the metadata
// provider and the source resolver.
package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MetadataProvider = (*MetadataProvider)(nil)

// MetadataProvider supplies live file metadata from disk and overlays
// metadata injected from cache hits. Digests are xxhash over file content.
type MetadataProvider struct {
	root string

	mu            sync.RWMutex
	injected      map[string]*domain.FileMetadata
	injectedTrees map[string]*domain.TreeMetadata
	omitted       map[string]bool
}

// NewMetadataProvider creates a MetadataProvider rooted at the execution
// root.
func NewMetadataProvider(root string) *MetadataProvider {
	return &MetadataProvider{
		root:          filepath.Clean(root),
		injected:      make(map[string]*domain.FileMetadata),
		injectedTrees: make(map[string]*domain.TreeMetadata),
		omitted:       make(map[string]bool),
	}
}

// Metadata returns live metadata for an artifact. Injected metadata wins
// over a fresh stat; tree artifacts fold into their composite metadata. A
// missing file is reported as an error wrapping fs.ErrNotExist.
func (p *MetadataProvider) Metadata(artifact *domain.Artifact) (*domain.FileMetadata, error) {
	execPath := artifact.ExecPath()

	p.mu.RLock()
	if md, ok := p.injected[execPath]; ok {
		p.mu.RUnlock()
		return md, nil
	}
	p.mu.RUnlock()

	if artifact.IsTree() {
		tree, err := p.TreeMetadata(artifact)
		if err != nil {
			return nil, err
		}
		if tree == nil {
			return nil, zerr.With(zerr.Wrap(iofs.ErrNotExist, "tree artifact missing"), "path", execPath)
		}
		return tree.Metadata(), nil
	}

	return p.statFile(filepath.Join(p.root, execPath))
}

// TreeMetadata returns the live per-child view of a tree artifact. Returns
// nil, nil when the directory does not exist yet.
func (p *MetadataProvider) TreeMetadata(artifact *domain.Artifact) (*domain.TreeMetadata, error) {
	execPath := artifact.ExecPath()

	p.mu.RLock()
	if tree, ok := p.injectedTrees[execPath]; ok {
		p.mu.RUnlock()
		return tree, nil
	}
	p.mu.RUnlock()

	dir := filepath.Join(p.root, execPath)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat tree artifact"), "path", execPath)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.New("tree artifact is not a directory"), "path", execPath)
	}

	tree := &domain.TreeMetadata{Children: make(map[string]*domain.FileMetadata)}
	err = filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		child, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		md, mdErr := p.statFile(path)
		if mdErr != nil {
			return mdErr
		}
		tree.Children[filepath.ToSlash(child)] = md
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to walk tree artifact"), "path", execPath)
	}
	return tree, nil
}

// Inject records cached metadata as the authoritative view of an output.
func (p *MetadataProvider) Inject(artifact *domain.Artifact, md *domain.FileMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.injected[artifact.ExecPath()] = md
}

// InjectTree records a merged tree view as the authoritative view of a tree
// output.
func (p *MetadataProvider) InjectTree(artifact *domain.Artifact, tree *domain.TreeMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.injectedTrees[artifact.ExecPath()] = tree
}

// SetDigestForVirtualArtifact attaches an aggregated digest to a middleman's
// virtual output. Virtual artifacts never exist on disk, so the digest is the
// entire metadata.
func (p *MetadataProvider) SetDigestForVirtualArtifact(artifact *domain.Artifact, digest string) {
	p.Inject(artifact, &domain.FileMetadata{Digest: digest})
}

// MarkOmitted records that the executor deliberately did not produce the
// given output.
func (p *MetadataProvider) MarkOmitted(artifact *domain.Artifact) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitted[artifact.ExecPath()] = true
}

// OutputOmitted reports whether the output was deliberately not produced.
func (p *MetadataProvider) OutputOmitted(artifact *domain.Artifact) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.omitted[artifact.ExecPath()]
}

func (p *MetadataProvider) statFile(path string) (*domain.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(iofs.ErrNotExist, "file missing"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	if info.IsDir() {
		return nil, zerr.With(zerr.New("expected a file, found a directory"), "path", path)
	}

	digest, err := hashFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.FileMetadata{
		Digest:       digest,
		Size:         info.Size(),
		ModTimeNanos: info.ModTime().UnixNano(),
	}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
