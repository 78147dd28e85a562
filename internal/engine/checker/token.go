package checker

import "sync/atomic"

// Token is the single-use permit authorizing exactly one cache-entry commit
// for a given action check. It is created only by the checker when it decides
// execution is required, and consumed exactly once by UpdateCache.
type Token struct {
	cacheKey string
	consumed atomic.Bool
}

func newToken(cacheKey string) *Token {
	return &Token{cacheKey: cacheKey}
}

// consume marks the token used. It reports false if the token was already
// consumed.
func (t *Token) consume() bool {
	return !t.consumed.Swap(true)
}
