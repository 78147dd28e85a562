package ports

import "go.trai.ch/stale/internal/core/domain"

// SourceResolver resolves exec paths recorded in a cache entry back to source
// artifacts.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type SourceResolver interface {
	// ResolveSources maps each path to its source artifact. Paths that no
	// longer resolve are simply absent from the result; that is safe because
	// digest validation catches the changed input set. A nil map with a nil
	// error means dependency information is missing and the caller should
	// retry later.
	ResolveSources(paths []string) (map[string]*domain.Artifact, error)
}
