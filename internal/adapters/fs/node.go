package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stale/internal/core/ports"
)

const (
	MetadataNodeID graft.ID = "adapter.fs.metadata"
	ResolverNodeID graft.ID = "adapter.fs.resolver"
)

func init() {
	// Metadata provider rooted at the current working directory.
	graft.Register(graft.Node[ports.MetadataProvider]{
		ID:        MetadataNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.MetadataProvider, error) {
			return NewMetadataProvider("."), nil
		},
	})

	// Source resolver rooted at the current working directory.
	graft.Register(graft.Node[ports.SourceResolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.SourceResolver, error) {
			return NewSourceResolver("."), nil
		},
	})
}
