// Package checker decides whether previously computed action outputs may be
// reused or whether the action must re-execute. A false "reuse" verdict
// silently corrupts build outputs; a false "re-execute" verdict only wastes
// work. Every decision here is therefore conservative: anything that cannot
// be proven unchanged counts as changed.
package checker

import (
	"errors"
	"io/fs"
	"maps"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

// Config carries the administrative cache settings for one build.
type Config struct {
	// Enabled gates all cache reads and writes. When false every action
	// receives a fresh token unconditionally.
	Enabled bool

	// VerboseExplanations expands rebuild-reason diagnostics with the
	// action's key description, platform and environment diff.
	VerboseExplanations bool

	// StoreOutputMetadata persists per-output metadata in cache entries so
	// outputs produced remotely can be validated without local files.
	StoreOutputMetadata bool
}

// ExecutionFilter decides whether an action is administratively allowed to
// execute at all.
type ExecutionFilter func(action *domain.Action) bool

// Checker validates actions against the entry store. Instances are
// lightweight and safe for concurrent use from many worker goroutines; the
// store and metadata provider carry all shared state.
type Checker struct {
	store    ports.EntryStore
	resolver ports.SourceResolver
	log      ports.Logger
	sink     ports.EventSink
	keyCtx   *domain.KeyContext
	filter   ExecutionFilter
	cfg      Config
}

// New creates a Checker. The sink may be nil; diagnostics are then
// suppressed without changing any verdict.
func New(
	store ports.EntryStore,
	resolver ports.SourceResolver,
	log ports.Logger,
	sink ports.EventSink,
	keyCtx *domain.KeyContext,
	filter ExecutionFilter,
	cfg Config,
) *Checker {
	if filter == nil {
		filter = func(*domain.Action) bool { return true }
	}
	return &Checker{
		store:    store,
		resolver: resolver,
		log:      log,
		sink:     sink,
		keyCtx:   keyCtx,
		filter:   filter,
		cfg:      cfg,
	}
}

// Enabled reports whether the action cache is administratively enabled.
func (c *Checker) Enabled() bool {
	return c.cfg.Enabled
}

// ExecutionProhibited reports whether the action is administratively
// forbidden to execute.
func (c *Checker) ExecutionProhibited(action *domain.Action) bool {
	return !c.filter(action)
}

func (c *Checker) unconditionalExecution(action *domain.Action) bool {
	return !c.ExecutionProhibited(action) && action.ExecuteUnconditionally()
}

// NeedsExecution checks whether action must be executed and returns a
// non-nil Token if so. On a hit it returns nil: cached metadata has been
// injected into the metadata provider and execution must be skipped.
//
// resolvedInputs is the caller's reconstruction of previously cached inputs
// for actions that do not yet know their own; it may be nil.
func (c *Checker) NeedsExecution(
	action *domain.Action,
	resolvedInputs []*domain.Artifact,
	md ports.MetadataProvider,
	clientEnv map[string]string,
	execPropsDefaults map[string]string,
	loadCachedOutputs bool,
) (*Token, error) {
	if action.Type.IsMiddleman() {
		// Scheduling middlemen only order execution; validating them would
		// propagate invalidation they must not carry.
		if action.Type != domain.SchedulingMiddlemanAction {
			if err := c.checkMiddleman(action, md); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	if !c.cfg.Enabled {
		key, err := cacheKey(action)
		if err != nil {
			return nil, err
		}
		return newToken(key), nil
	}

	actionInputs := action.Inputs
	inputsKnown := action.InputsKnown()
	if !inputsKnown && resolvedInputs != nil {
		// The action doesn't know its inputs, but the caller has a good idea
		// of what they are.
		if !action.DiscoversInputs {
			return nil, zerr.With(domain.ErrInputsNotDiscoverable, "action", action.Name.String())
		}
		if action.StoreInputsInCache {
			actionInputs = resolvedInputs
		} else {
			actionInputs = mergeInputs(action.MandatoryInputs, resolvedInputs)
		}
	}

	entry, err := c.getEntry(action)
	if err != nil {
		return nil, err
	}

	var cached *cachedOutputMetadata
	if entry != nil && !entry.IsCorrupted() && c.cfg.StoreOutputMetadata && loadCachedOutputs {
		// Validation of outputs must account for metadata that exists only
		// in the cache, e.g. remote execution results never materialized
		// locally.
		cached = c.loadCachedOutputMetadata(action, entry, md)
	}

	must, err := c.mustExecute(action, entry, md, actionInputs, clientEnv, execPropsDefaults, cached)
	if err != nil {
		return nil, err
	}
	if must {
		if entry != nil {
			if err := c.removeEntries(action); err != nil {
				return nil, err
			}
		}
		key, err := cacheKey(action)
		if err != nil {
			return nil, err
		}
		return newToken(key), nil
	}

	if !inputsKnown {
		action.UpdateInputs(actionInputs)
	}

	if cached != nil {
		cached.inject(md)
	}

	return nil, nil
}

// mustExecute runs the miss-detection ladder in fixed order; the first
// matching condition wins and becomes the recorded miss reason. Exactly one
// counter is incremented per call.
func (c *Checker) mustExecute(
	action *domain.Action,
	entry *domain.Entry,
	md ports.MetadataProvider,
	actionInputs []*domain.Artifact,
	clientEnv map[string]string,
	execPropsDefaults map[string]string,
	cached *cachedOutputMetadata,
) (bool, error) {
	if c.unconditionalExecution(action) {
		c.reportUnconditional(action)
		c.store.CountMiss(domain.MissUnconditional)
		return true, nil
	}
	if entry == nil {
		c.reportNew(action)
		c.store.CountMiss(domain.MissNotCached)
		return true, nil
	}
	if entry.IsCorrupted() {
		c.reportCorrupted(action)
		c.store.CountMiss(domain.MissCorrupted)
		return true, nil
	}
	if validateArtifacts(entry, action, actionInputs, md, true, cached) {
		c.reportChanged(action)
		c.store.CountMiss(domain.MissDifferentFiles)
		return true, nil
	}
	if entry.ActionKey != action.Key(c.keyCtx) {
		c.reportCommand(action)
		c.store.CountMiss(domain.MissDifferentActionKey)
		return true, nil
	}
	usedEnv := computeUsedEnv(action, clientEnv, execPropsDefaults)
	if !entry.SameUsedEnv(usedEnv) {
		c.reportClientEnv(action, entry.UsedClientEnv, usedEnv)
		c.store.CountMiss(domain.MissDifferentEnvironment)
		return true, nil
	}

	c.store.CountHit()
	return false, nil
}

// UpdateCache commits a new entry after execution. It is the second half of
// the token protocol: at most one cache write happens per logical output key
// per build, even when two shared actions race to commit.
func (c *Checker) UpdateCache(
	action *domain.Action,
	token *Token,
	md ports.MetadataProvider,
	clientEnv map[string]string,
	execPropsDefaults map[string]string,
) error {
	if !c.cfg.Enabled {
		return zerr.With(domain.ErrCacheDisabled, "action", action.Name.String())
	}
	if token == nil {
		return zerr.With(domain.ErrNilToken, "action", action.Name.String())
	}
	if !token.consume() {
		return zerr.With(domain.ErrTokenReused, "action", action.Name.String())
	}

	key := token.cacheKey
	existing, err := c.store.Get(key)
	if err != nil {
		return zerr.Wrap(err, "failed to probe cache entry before update")
	}
	if existing != nil {
		// A concurrently-running shared action already committed under this
		// key; writing again would be redundant and racy.
		return nil
	}

	usedEnv := computeUsedEnv(action, clientEnv, execPropsDefaults)
	entry := domain.NewEntry(action.Key(c.keyCtx), usedEnv, action.DiscoversInputs)

	for _, output := range action.Outputs {
		execPath := output.ExecPath()
		// Remove old records stored under a different key.
		if execPath != key {
			if err := c.store.Remove(execPath); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to drop stale cache entry"), "path", execPath)
			}
		}
		if md.OutputOmitted(output) {
			continue
		}
		if output.IsTree() {
			tree, err := md.TreeMetadata(output)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to read tree output metadata"), "path", execPath)
			}
			// Tree outputs must exist after successful execution; an absent
			// directory reads back as nil metadata.
			if tree == nil {
				return zerr.With(domain.ErrMissingOutputMetadata, "path", execPath)
			}
			entry.AddOutputTree(execPath, tree, c.cfg.StoreOutputMetadata)
		} else {
			// Outputs must exist and be accessible after successful
			// execution; a missing one is a build invariant violation.
			outMD := metadataOrConstant(md, output)
			if outMD == nil {
				return zerr.With(domain.ErrMissingOutputMetadata, "path", execPath)
			}
			entry.AddOutputFile(execPath, outMD, c.cfg.StoreOutputMetadata)
		}
	}

	// Mandatory input paths of discovering actions are reconstructible from
	// the action itself, so they are omitted from the persisted path list to
	// bound entry size - unless the action requires exact-path replay.
	excluded := make(map[string]bool)
	if !action.StoreInputsInCache && action.DiscoversInputs {
		for _, in := range action.MandatoryInputs {
			excluded[in.ExecPath()] = true
		}
	}
	for _, input := range action.Inputs {
		execPath := input.ExecPath()
		entry.AddInputFile(execPath, metadataMaybe(md, input), !excluded[execPath])
	}

	entry.Digest()
	if err := c.store.Put(key, entry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache entry"), "key", key)
	}
	return nil
}

// ForceExecution drops any recorded entry for the action and returns a fresh
// token. Only call it when execution is required despite a prior hit, e.g.
// after a failure to record the hit's outputs.
func (c *Checker) ForceExecution(
	action *domain.Action,
	resolvedInputs []*domain.Artifact,
	md ports.MetadataProvider,
	clientEnv map[string]string,
	execPropsDefaults map[string]string,
	loadCachedOutputs bool,
) (*Token, error) {
	if action != nil && c.cfg.Enabled {
		if err := c.removeEntries(action); err != nil {
			return nil, err
		}
	}
	return c.NeedsExecution(action, resolvedInputs, md, clientEnv, execPropsDefaults, loadCachedOutputs)
}

// CachedInputs reconstructs the input artifact list recorded in the action's
// cache entry. It returns an empty list when no usable entry exists, and
// (nil, nil) when dependency information is missing and the caller should
// retry later.
func (c *Checker) CachedInputs(action *domain.Action) ([]*domain.Artifact, error) {
	entry, err := c.getEntry(action)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.IsCorrupted() {
		return []*domain.Artifact{}, nil
	}

	outputs := make(map[string]bool, len(action.Outputs))
	for _, out := range action.Outputs {
		outputs[out.ExecPath()] = true
	}

	derived := make(map[string]*domain.Artifact, len(action.AllowedDerivedInputs))
	for _, in := range action.AllowedDerivedInputs {
		if !in.IsSource() {
			derived[in.ExecPath()] = in
		}
	}

	inputs := make([]*domain.Artifact, 0, len(entry.InputPaths))
	var unresolved []string
	for _, path := range entry.InputPaths {
		if outputs[path] {
			continue
		}
		if artifact, ok := derived[path]; ok {
			inputs = append(inputs, artifact)
		} else {
			unresolved = append(unresolved, path)
		}
	}

	resolved, err := c.resolver.ResolveSources(unresolved)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve cached input paths")
	}
	if resolved == nil {
		// Missing dependency information; the caller must retry later.
		return nil, nil
	}
	for _, path := range unresolved {
		// Paths that no longer resolve are ignored: if the old input set
		// mattered, digest validation forces re-execution anyway.
		if artifact, ok := resolved[path]; ok && artifact != nil {
			inputs = append(inputs, artifact)
		}
	}
	return inputs, nil
}

// getEntry probes the store under every output path and returns the first
// hit. Cache keys are shared across a multi-output action: whichever output
// path was used as key at write time must be found at read time.
func (c *Checker) getEntry(action *domain.Action) (*domain.Entry, error) {
	if !c.cfg.Enabled {
		return nil, nil
	}
	for _, output := range action.Outputs {
		entry, err := c.store.Get(output.ExecPath())
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read cache entry")
		}
		if entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

func (c *Checker) removeEntries(action *domain.Action) error {
	for _, output := range action.Outputs {
		if err := c.store.Remove(output.ExecPath()); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove cache entry"), "path", output.ExecPath())
		}
	}
	return nil
}

// validateArtifacts recomputes the combined digest over the action's current
// outputs (when checkOutputs is set, preferring cached metadata) and inputs,
// and compares it against the entry's stored digest. Any difference is a
// miss.
func validateArtifacts(
	entry *domain.Entry,
	action *domain.Action,
	actionInputs []*domain.Artifact,
	md ports.MetadataProvider,
	checkOutputs bool,
	cached *cachedOutputMetadata,
) bool {
	mdMap := make(map[string]*domain.FileMetadata)
	if checkOutputs {
		for _, output := range action.Outputs {
			m := cached.metadataFor(output)
			if m == nil {
				m = metadataMaybe(md, output)
			}
			mdMap[output.ExecPath()] = m
		}
	}
	for _, input := range actionInputs {
		mdMap[input.ExecPath()] = metadataMaybe(md, input)
	}
	return domain.CombineDigests(mdMap) != entry.Digest()
}

// metadataOrConstant returns live metadata, substituting the constant
// sentinel for declared constant-metadata outputs. Not-found is reported as
// nil; other I/O errors propagate as nil too at the metadataMaybe level.
func metadataOrConstant(md ports.MetadataProvider, artifact *domain.Artifact) *domain.FileMetadata {
	m, err := md.Metadata(artifact)
	if err != nil || m == nil {
		return nil
	}
	if artifact.ConstantMetadata {
		return domain.ConstantMetadataValue()
	}
	return m
}

// metadataMaybe treats every metadata failure as "metadata absent", which
// deterministically produces a digest mismatch and therefore a conservative
// miss - never a crash, never a false hit.
func metadataMaybe(md ports.MetadataProvider, artifact *domain.Artifact) *domain.FileMetadata {
	return metadataOrConstant(md, artifact)
}

// computeUsedEnv builds the used-environment snapshot: declared client
// environment variables that are present in clientEnv, overlaid with the
// action's exec properties (defaulting to the remote default platform
// properties when the action declares none).
func computeUsedEnv(action *domain.Action, clientEnv, execPropsDefaults map[string]string) map[string]string {
	used := make(map[string]string)
	for _, name := range action.ClientEnvVars {
		if value, ok := clientEnv[name]; ok {
			used[name] = value
		}
	}
	execProps := action.ExecProperties
	if len(execProps) == 0 {
		execProps = execPropsDefaults
	}
	maps.Copy(used, execProps)
	return used
}

// cacheKey returns the cache key for an action: the exec path of its primary
// output.
func cacheKey(action *domain.Action) (string, error) {
	if len(action.Outputs) == 0 {
		return "", zerr.With(domain.ErrNoOutputs, "action", action.Name.String())
	}
	return action.PrimaryOutput().ExecPath(), nil
}

func mergeInputs(mandatory, resolved []*domain.Artifact) []*domain.Artifact {
	merged := make([]*domain.Artifact, 0, len(mandatory)+len(resolved))
	seen := make(map[string]bool, len(mandatory)+len(resolved))
	for _, a := range mandatory {
		if !seen[a.ExecPath()] {
			seen[a.ExecPath()] = true
			merged = append(merged, a)
		}
	}
	for _, a := range resolved {
		if !seen[a.ExecPath()] {
			seen[a.ExecPath()] = true
			merged = append(merged, a)
		}
	}
	return merged
}

// isNotExist reports whether err indicates a missing file rather than a
// broader I/O failure.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
