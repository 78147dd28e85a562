package domain

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ActionType classifies an action. It is a closed set: normal actions
// produce real files, middlemen aggregate dependency edges behind a virtual
// output, and scheduling middlemen only order execution and must never
// propagate invalidation.
type ActionType int

const (
	NormalAction ActionType = iota
	MiddlemanAction
	SchedulingMiddlemanAction
)

// IsMiddleman reports whether the type is one of the middleman variants.
func (t ActionType) IsMiddleman() bool {
	return t == MiddlemanAction || t == SchedulingMiddlemanAction
}

// KeyContext salts action key computation with state that is global to one
// build (for example the workspace fingerprint), so keys from different
// workspaces never collide.
type KeyContext struct {
	Salt string
}

// Action is a unit of build work: declared inputs, declared outputs and a
// command fingerprint. Actions are immutable per build step except for input
// discovery, which may canonicalize the input list exactly once.
type Action struct {
	Name InternedString
	Type ActionType

	// Outputs is ordered; the first output is the primary output, whose exec
	// path is the cache key by convention.
	Outputs []*Artifact

	Inputs          []*Artifact
	MandatoryInputs []*Artifact

	// AllowedDerivedInputs is the superset of non-source inputs this action
	// may legally depend on. Used when reconstructing inputs from a cache
	// entry.
	AllowedDerivedInputs []*Artifact

	Command           []string
	ExecutionPlatform string

	// ClientEnvVars names the environment variables the action is sensitive
	// to. Only their observed values participate in cache validation.
	ClientEnvVars []string

	// ExecProperties are execution-platform properties baked into the used
	// environment snapshot. When empty, remote default platform properties
	// apply instead.
	ExecProperties map[string]string

	// Volatile actions are non-hermetic and request unconditional execution.
	Volatile bool

	// DiscoversInputs marks actions that determine their true input set
	// during execution. Their declared Inputs list is a hint until
	// InputsDiscovered is set.
	DiscoversInputs  bool
	InputsDiscovered bool

	// StoreInputsInCache forces the full input path list into the cache
	// entry even for mandatory inputs, trading entry size for exact replay.
	StoreInputsInCache bool
}

// PrimaryOutput returns the first declared output.
func (a *Action) PrimaryOutput() *Artifact {
	return a.Outputs[0]
}

// InputsKnown reports whether the action's input list is authoritative.
func (a *Action) InputsKnown() bool {
	return !a.DiscoversInputs || a.InputsDiscovered
}

// UpdateInputs records the canonical input set resolved for this build.
func (a *Action) UpdateInputs(inputs []*Artifact) {
	a.Inputs = inputs
	a.InputsDiscovered = true
}

// ExecuteUnconditionally reports whether the action declares itself
// always-dirty.
func (a *Action) ExecuteUnconditionally() bool {
	return a.Volatile
}

// Key returns the action's fingerprint over command line, declared outputs,
// platform and environment sensitivity. It is independent of file contents;
// file state is covered by the combined digest instead.
func (a *Action) Key(kc *KeyContext) string {
	h := xxhash.New()

	if kc != nil {
		_, _ = h.WriteString(kc.Salt)
	}
	_, _ = h.Write([]byte{0})

	for _, arg := range a.Command {
		_, _ = h.WriteString(arg)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0})

	for _, out := range a.Outputs {
		_, _ = h.WriteString(out.ExecPath())
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0})

	_, _ = h.WriteString(a.ExecutionPlatform)
	_, _ = h.Write([]byte{0})

	vars := make([]string, len(a.ClientEnvVars))
	copy(vars, a.ClientEnvVars)
	sort.Strings(vars)
	for _, v := range vars {
		_, _ = h.WriteString(v)
		_, _ = h.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

// Describe renders the action for diagnostics as its name plus the primary
// output path, when one is declared.
func (a *Action) Describe() string {
	if len(a.Outputs) == 0 {
		return a.Name.String()
	}
	return a.Name.String() + " -> " + a.PrimaryOutput().ExecPath()
}

// DescribeKey returns a human-readable rendering of the key inputs for
// verbose rebuild explanations.
func (a *Action) DescribeKey() string {
	return fmt.Sprintf("command: %q\noutputs: %d\nplatform: %s\n",
		a.Command, len(a.Outputs), a.ExecutionPlatform)
}
