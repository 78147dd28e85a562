package domain

// ArtifactKind classifies how an artifact materializes on disk.
type ArtifactKind int

const (
	// FileArtifact is a plain output or intermediate file.
	FileArtifact ArtifactKind = iota
	// TreeArtifact is a directory whose contents are tracked as a set of
	// child files plus an optional archived representation.
	TreeArtifact
	// SourceArtifact is a checked-in input file, never produced by an action.
	SourceArtifact
	// VirtualArtifact never materializes; it only carries a digest so that
	// middleman actions can participate in the dependency graph.
	VirtualArtifact
)

// Artifact identifies a file, directory or virtual node by its
// execution-root-relative path. Artifacts are created by the build graph and
// are immutable for the lifetime of one build; the cache only records
// metadata about them.
type Artifact struct {
	Path InternedString
	Kind ArtifactKind

	// ConstantMetadata marks outputs whose content may change between builds
	// without invalidating dependents (e.g. volatile status files). Both
	// validation and commit substitute a fixed sentinel digest for them.
	ConstantMetadata bool
}

// NewArtifact creates a plain file artifact for the given exec path.
func NewArtifact(execPath string) *Artifact {
	return &Artifact{Path: NewInternedString(execPath), Kind: FileArtifact}
}

// NewTreeArtifact creates a tree artifact for the given exec path.
func NewTreeArtifact(execPath string) *Artifact {
	return &Artifact{Path: NewInternedString(execPath), Kind: TreeArtifact}
}

// NewSourceArtifact creates a source artifact for the given exec path.
func NewSourceArtifact(execPath string) *Artifact {
	return &Artifact{Path: NewInternedString(execPath), Kind: SourceArtifact}
}

// ExecPath returns the execution-root-relative path of the artifact.
func (a *Artifact) ExecPath() string {
	return a.Path.String()
}

// IsTree reports whether the artifact is a tree artifact.
func (a *Artifact) IsTree() bool {
	return a.Kind == TreeArtifact
}

// IsSource reports whether the artifact is a source artifact.
func (a *Artifact) IsSource() bool {
	return a.Kind == SourceArtifact
}
