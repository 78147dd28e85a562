package ports

import "go.trai.ch/stale/internal/core/domain"

// MetadataProvider supplies live file metadata for artifacts and accepts
// injected metadata for outputs satisfied from the cache.
//
// Metadata and TreeMetadata must report a missing file as an error wrapping
// io/fs.ErrNotExist, distinct from other I/O failures.
//
//go:generate go run go.uber.org/mock/mockgen -source=metadata.go -destination=mocks/mock_metadata.go -package=mocks
type MetadataProvider interface {
	// Metadata returns live metadata for a file artifact. For tree artifacts
	// it returns the folded composite metadata of the tree.
	Metadata(artifact *domain.Artifact) (*domain.FileMetadata, error)

	// TreeMetadata returns the live per-child view of a tree artifact.
	// Returns nil, nil when no local tree exists yet; that is a valid state,
	// not an error.
	TreeMetadata(artifact *domain.Artifact) (*domain.TreeMetadata, error)

	// Inject records cached metadata as the authoritative view of a flat
	// output for the remainder of the build.
	Inject(artifact *domain.Artifact, md *domain.FileMetadata)

	// InjectTree records a merged tree view as the authoritative view of a
	// tree output for the remainder of the build.
	InjectTree(artifact *domain.Artifact, tree *domain.TreeMetadata)

	// SetDigestForVirtualArtifact attaches an aggregated digest to a
	// middleman's virtual output.
	SetDigestForVirtualArtifact(artifact *domain.Artifact, digest string)

	// OutputOmitted reports whether the executor deliberately did not
	// produce the given output.
	OutputOmitted(artifact *domain.Artifact) bool
}
