package domain

import "maps"

// Entry is the persisted record for one cached action. It is only ever
// written by the update protocol, at most once per build per cache key, and
// its presence never implies correctness: every read is re-validated against
// current state before being trusted.
//
// While an entry is being built it accumulates a scratch metadata map; Digest
// finalizes that map into the combined file digest and drops it. Entries read
// back from a store carry only the finalized digest.
type Entry struct {
	ActionKey       string            `json:"action_key,omitzero"`
	FileDigest      string            `json:"file_digest,omitzero"`
	UsedClientEnv   map[string]string `json:"used_client_env,omitzero"`
	DiscoversInputs bool              `json:"discovers_inputs,omitzero"`

	// InputPaths is the recorded input path list. Mandatory inputs of
	// discovering actions may be omitted to bound entry size; they are
	// reconstructible from the action itself.
	InputPaths []string `json:"input_paths,omitzero"`

	// OutputFiles holds remote metadata for flat file outputs, keyed by exec
	// path. Only populated when output-metadata storage is enabled.
	OutputFiles map[string]*FileMetadata `json:"output_files,omitzero"`

	// OutputTrees holds serialized tree views for tree outputs, keyed by the
	// tree's exec path.
	OutputTrees map[string]*TreeMetadata `json:"output_trees,omitzero"`

	corrupted bool
	scratch   map[string]*FileMetadata
}

// NewEntry creates a fresh entry under construction.
func NewEntry(actionKey string, usedClientEnv map[string]string, discoversInputs bool) *Entry {
	return &Entry{
		ActionKey:       actionKey,
		UsedClientEnv:   usedClientEnv,
		DiscoversInputs: discoversInputs,
		scratch:         make(map[string]*FileMetadata),
	}
}

// CorruptedEntry returns an entry that records a failed deserialization. It
// must never be treated as a hit.
func CorruptedEntry() *Entry {
	return &Entry{corrupted: true}
}

// IsCorrupted reports whether the entry failed deserialization or logical
// validation.
func (e *Entry) IsCorrupted() bool {
	return e.corrupted
}

// AddInputFile folds an input's metadata into the pending digest. The path is
// recorded in the persisted path list only when savePath is set.
func (e *Entry) AddInputFile(execPath string, md *FileMetadata, savePath bool) {
	e.scratch[execPath] = md
	if savePath {
		e.InputPaths = append(e.InputPaths, execPath)
	}
}

// AddOutputFile folds a flat output's metadata into the pending digest.
// Remote metadata is additionally persisted per output when saveMetadata is
// set, so later builds can validate outputs that were never materialized
// locally.
func (e *Entry) AddOutputFile(execPath string, md *FileMetadata, saveMetadata bool) {
	e.scratch[execPath] = md
	if saveMetadata && md != nil && md.Remote {
		if e.OutputFiles == nil {
			e.OutputFiles = make(map[string]*FileMetadata)
		}
		e.OutputFiles[execPath] = md
	}
}

// AddOutputTree folds a tree output into the pending digest and, when
// saveMetadata is set, persists the serialized child view.
func (e *Entry) AddOutputTree(execPath string, tree *TreeMetadata, saveMetadata bool) {
	if tree == nil {
		e.scratch[execPath] = nil
		return
	}
	e.scratch[execPath] = tree.Metadata()
	if saveMetadata {
		if e.OutputTrees == nil {
			e.OutputTrees = make(map[string]*TreeMetadata)
		}
		e.OutputTrees[execPath] = tree
	}
}

// OutputFile returns persisted remote metadata for a flat output, or nil.
func (e *Entry) OutputFile(execPath string) *FileMetadata {
	return e.OutputFiles[execPath]
}

// OutputTree returns the persisted tree view for a tree output, or nil.
func (e *Entry) OutputTree(execPath string) *TreeMetadata {
	return e.OutputTrees[execPath]
}

// Digest finalizes and returns the combined file digest. The scratch metadata
// map is folded exactly once; subsequent calls return the cached digest.
func (e *Entry) Digest() string {
	if e.FileDigest == "" && e.scratch != nil {
		e.FileDigest = CombineDigests(e.scratch)
		e.scratch = nil
	}
	return e.FileDigest
}

// SameUsedEnv reports whether the recorded used-environment snapshot matches
// the given one.
func (e *Entry) SameUsedEnv(usedEnv map[string]string) bool {
	if len(e.UsedClientEnv) == 0 && len(usedEnv) == 0 {
		return true
	}
	return maps.Equal(e.UsedClientEnv, usedEnv)
}

// Validate performs the logical checks applied after deserialization. An
// entry without a digest cannot be compared against anything and is treated
// as corrupted.
func (e *Entry) Validate() error {
	if e.FileDigest == "" {
		e.corrupted = true
		return ErrCorruptedEntry
	}
	return nil
}
