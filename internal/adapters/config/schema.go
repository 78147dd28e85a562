package config

// Manifest is the parsed stale.yaml configuration.
type Manifest struct {
	Version string               `yaml:"version"`
	KeySalt string               `yaml:"keySalt"`
	Cache   CacheDTO             `yaml:"cache"`
	Actions map[string]ActionDTO `yaml:"actions"`
}

// CacheDTO configures the entry store and checker behavior.
type CacheDTO struct {
	Path                string `yaml:"path"`
	Disabled            bool   `yaml:"disabled"`
	Verbose             bool   `yaml:"verbose"`
	StoreOutputMetadata bool   `yaml:"storeOutputMetadata"`
}

// ActionDTO represents an action definition in the configuration.
type ActionDTO struct {
	Cmd              []string          `yaml:"cmd"`
	Inputs           []string          `yaml:"inputs"`
	Outputs          []string          `yaml:"outputs"`
	TreeOutputs      []string          `yaml:"treeOutputs"`
	Env              []string          `yaml:"env"`
	ExecProperties   map[string]string `yaml:"execProperties"`
	Platform         string            `yaml:"platform"`
	Volatile         bool              `yaml:"volatile"`
	ConstantMetadata []string          `yaml:"constantMetadata"`
}
