package checker

import (
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"
	"go.trai.ch/stale/internal/core/domain"
)

// report emits a rebuild-reason diagnostic. Diagnostics are advisory only:
// the verdict is already decided when they fire, and a nil sink suppresses
// them entirely. Middleman rebuilds are never reported.
func (c *Checker) report(action *domain.Action, message string) {
	if c.sink == nil || action.Type.IsMiddleman() {
		return
	}
	c.sink.Explain(action, message)
}

func (c *Checker) reportUnconditional(action *domain.Action) {
	c.report(action, "unconditional execution is requested")
}

func (c *Checker) reportNew(action *domain.Action) {
	c.report(action, "no entry in the cache (action is new)")
}

func (c *Checker) reportCorrupted(action *domain.Action) {
	c.report(action, "cache entry is corrupted")
}

func (c *Checker) reportChanged(action *domain.Action) {
	c.report(action, "one of the files has changed")
}

func (c *Checker) reportChangedDeps(action *domain.Action) {
	c.report(action, "the set of files on which this action depends has changed")
}

func (c *Checker) reportCommand(action *domain.Action) {
	if !c.cfg.VerboseExplanations {
		c.report(action, "action command has changed (enable verbose explanations for more info)")
		return
	}
	c.report(action, fmt.Sprintf(
		"action command has changed.\nNew action: %s    Exec properties: %v",
		action.DescribeKey(), action.ExecProperties))
}

func (c *Checker) reportClientEnv(action *domain.Action, recorded, current map[string]string) {
	if !c.cfg.VerboseExplanations {
		c.report(action, "effective client environment has changed (enable verbose explanations for more info)")
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        formatEnv(recorded),
		B:        formatEnv(current),
		FromFile: "recorded environment",
		ToFile:   "current environment",
		Context:  1,
	})
	if err != nil {
		diff = fmt.Sprintf("(diff unavailable: %v)", err)
	}
	c.report(action, "effective client environment has changed:\n"+diff)
}

func formatEnv(env map[string]string) []string {
	lines := make([]string, 0, len(env))
	for k, v := range env {
		lines = append(lines, k+"="+v+"\n")
	}
	sort.Strings(lines)
	return lines
}
