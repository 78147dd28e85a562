package checker

import (
	"fmt"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
)

// cachedOutputMetadata is the transient, per-validation view of output
// metadata that may be satisfied from the persisted entry instead of a fresh
// stat. It is discarded at the end of the check and never persisted.
type cachedOutputMetadata struct {
	// files holds remote metadata for flat outputs that have no local file.
	files map[string]*domain.FileMetadata
	// trees holds tree views merged from cached child records and live
	// on-disk state, keyed by the tree's exec path.
	trees map[string]*domain.TreeMetadata
}

// metadataFor returns the cached view of an output for digest validation, or
// nil when only live metadata applies.
func (c *cachedOutputMetadata) metadataFor(artifact *domain.Artifact) *domain.FileMetadata {
	if c == nil {
		return nil
	}
	if artifact.IsTree() {
		if tree := c.trees[artifact.ExecPath()]; tree != nil {
			return tree.Metadata()
		}
		return nil
	}
	return c.files[artifact.ExecPath()]
}

// inject publishes the cached views into the metadata provider after a hit,
// so downstream consumers observe one canonical source.
func (c *cachedOutputMetadata) inject(md ports.MetadataProvider) {
	for path, m := range c.files {
		md.Inject(domain.NewArtifact(path), m)
	}
	for path, tree := range c.trees {
		md.InjectTree(domain.NewTreeArtifact(path), tree)
	}
}

// loadCachedOutputMetadata reconciles the entry's per-output records with
// live on-disk state.
//
// Flat files: cached remote metadata is recorded only when no local metadata
// exists; a present local file always wins. Trees: a merged view is built
// from the cached child records overlaid with live children (live wins on
// conflict), and is produced whenever any cached data exists so there is one
// canonical view. Any I/O failure while reading live state drops the cached
// record for that one output - failing open toward re-validation, never
// toward trusting stale data.
func (c *Checker) loadCachedOutputMetadata(
	action *domain.Action,
	entry *domain.Entry,
	md ports.MetadataProvider,
) *cachedOutputMetadata {
	cached := &cachedOutputMetadata{
		files: make(map[string]*domain.FileMetadata),
		trees: make(map[string]*domain.TreeMetadata),
	}

	for _, output := range action.Outputs {
		execPath := output.ExecPath()
		if output.IsTree() {
			cachedTree := entry.OutputTree(execPath)
			if cachedTree == nil {
				continue
			}

			liveTree, err := md.TreeMetadata(output)
			if err != nil {
				c.log.Warn(fmt.Sprintf("dropping cached tree metadata for %s: %v", execPath, err))
				continue
			}

			merged := &domain.TreeMetadata{
				Children: make(map[string]*domain.FileMetadata, len(cachedTree.Children)),
			}
			for child, m := range cachedTree.Children {
				merged.Children[child] = m
			}
			if liveTree != nil {
				for child, m := range liveTree.Children {
					merged.Children[child] = m
				}
			}

			if liveTree != nil && liveTree.Archived != nil {
				merged.Archived = liveTree.Archived
			} else {
				merged.Archived = cachedTree.Archived
			}

			cached.trees[execPath] = merged
		} else {
			cachedMD := entry.OutputFile(execPath)
			if cachedMD == nil {
				continue
			}

			localMD, err := md.Metadata(output)
			switch {
			case err != nil && isNotExist(err):
				localMD = nil
			case err != nil:
				c.log.Warn(fmt.Sprintf("dropping cached metadata for %s: %v", execPath, err))
				continue
			case localMD != nil && output.ConstantMetadata:
				localMD = domain.ConstantMetadataValue()
			}

			// Only record the remote metadata when the local file is absent.
			if localMD == nil {
				cached.files[execPath] = cachedMD
			}
		}
	}

	return cached
}
