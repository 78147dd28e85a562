package checker

import (
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

// checkMiddleman validates a middleman action. Middleman outputs are purely
// fictional - they exist so actions can depend on aggregated edges - so only
// the inputs are digested, never the outputs. The action key is not compared
// either: the cache key is scoped to the middleman's inputs and already
// carries equivalent information, so entries store an empty key.
//
// Regardless of hit or miss, the computed digest is attached to the virtual
// primary output; that digest is what downstream actions observe.
func (c *Checker) checkMiddleman(action *domain.Action, md ports.MetadataProvider) error {
	if !c.cfg.Enabled {
		// Cache disabled: don't generate digests.
		return nil
	}

	middleman := action.PrimaryOutput()
	key := middleman.ExecPath()

	entry, err := c.store.Get(key)
	if err != nil {
		return zerr.Wrap(err, "failed to read middleman cache entry")
	}

	changed := false
	switch {
	case entry == nil:
		// No prior entry means "new dependency set", not "new artifact".
		c.reportChangedDeps(action)
		c.store.CountMiss(domain.MissDifferentDeps)
		changed = true
	case entry.IsCorrupted():
		c.reportCorrupted(action)
		c.store.CountMiss(domain.MissCorrupted)
		changed = true
	case validateArtifacts(entry, action, action.Inputs, md, false, nil):
		c.reportChanged(action)
		c.store.CountMiss(domain.MissDifferentFiles)
		changed = true
	}

	if changed {
		entry = domain.NewEntry("", nil, false)
		for _, input := range action.Inputs {
			entry.AddInputFile(input.ExecPath(), metadataMaybe(md, input), true)
		}
	}

	md.SetDigestForVirtualArtifact(middleman, entry.Digest())

	if changed {
		if err := c.store.Put(key, entry); err != nil {
			return zerr.Wrap(err, "failed to write middleman cache entry")
		}
	} else {
		c.store.CountHit()
	}
	return nil
}
