// Package config provides the configuration loader for stale.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultCachePath is used when the manifest does not name a store file.
const DefaultCachePath = ".stale/cache.json"

// Workspace is the loaded build configuration: the actions to consider and
// the cache settings guiding their validation.
type Workspace struct {
	Actions   []*domain.Action
	KeyCtx    *domain.KeyContext
	CachePath string

	CacheEnabled        bool
	VerboseExplanations bool
	StoreOutputMetadata bool
}

// Load reads a configuration file from the given path.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	ws := &Workspace{
		KeyCtx:              &domain.KeyContext{Salt: manifest.KeySalt},
		CachePath:           manifest.Cache.Path,
		CacheEnabled:        !manifest.Cache.Disabled,
		VerboseExplanations: manifest.Cache.Verbose,
		StoreOutputMetadata: manifest.Cache.StoreOutputMetadata,
	}
	if ws.CachePath == "" {
		ws.CachePath = DefaultCachePath
	}

	names := make([]string, 0, len(manifest.Actions))
	for name := range manifest.Actions {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		action, err := buildAction(name, manifest.Actions[name])
		if err != nil {
			return nil, err
		}
		ws.Actions = append(ws.Actions, action)
	}
	return ws, nil
}

func buildAction(name string, dto ActionDTO) (*domain.Action, error) {
	if len(dto.Outputs) == 0 && len(dto.TreeOutputs) == 0 {
		return nil, zerr.With(domain.ErrNoOutputs, "action", name)
	}

	constant := make(map[string]bool, len(dto.ConstantMetadata))
	for _, p := range dto.ConstantMetadata {
		constant[p] = true
	}

	outputs := make([]*domain.Artifact, 0, len(dto.Outputs)+len(dto.TreeOutputs))
	for _, p := range canonicalize(dto.Outputs) {
		out := domain.NewArtifact(p)
		out.ConstantMetadata = constant[p]
		outputs = append(outputs, out)
	}
	for _, p := range canonicalize(dto.TreeOutputs) {
		outputs = append(outputs, domain.NewTreeArtifact(p))
	}

	inputs := make([]*domain.Artifact, 0, len(dto.Inputs))
	for _, p := range canonicalize(dto.Inputs) {
		inputs = append(inputs, domain.NewSourceArtifact(p))
	}

	return &domain.Action{
		Name:              domain.NewInternedString(name),
		Type:              domain.NormalAction,
		Command:           dto.Cmd,
		Outputs:           outputs,
		Inputs:            inputs,
		MandatoryInputs:   inputs,
		ClientEnvVars:     canonicalize(dto.Env),
		ExecProperties:    dto.ExecProperties,
		ExecutionPlatform: dto.Platform,
		Volatile:          dto.Volatile,
	}, nil
}

// canonicalize sorts and deduplicates a path list.
func canonicalize(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := make([]string, len(strs))
	copy(sorted, strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// LoadClientEnv returns the process environment overlaid with the workspace
// .env file, when one exists.
func LoadClientEnv(dir string) (map[string]string, error) {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			env[k] = v
		}
	}

	dotenvPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotenvPath); err == nil {
		overlay, err := godotenv.Read(dotenvPath)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read .env file")
		}
		for k, v := range overlay {
			env[k] = v
		}
	}
	return env, nil
}
