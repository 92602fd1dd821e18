package lsm

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EngineConfig configures an LSMTree. The zero value resolves (via
// withDefaults) to exactly the reference implementation's compile-time
// constants; overriding a field only changes that one knob.
type EngineConfig struct {
	// DataDir is the directory SSTable files are created in. Required.
	DataDir string `yaml:"data_dir" validate:"required"`

	// MaxMemtableSize is the entry count that triggers a flush.
	MaxMemtableSize int `yaml:"max_memtable_size" validate:"omitempty,min=1"`

	// MaxLevel is the number of levels maintained.
	MaxLevel int `yaml:"max_level" validate:"omitempty,min=2,max=64"`

	// LevelSizeMultiplier bounds per-level growth before compaction.
	LevelSizeMultiplier int `yaml:"level_size_multiplier" validate:"omitempty,min=2"`

	// L0CompactionTrigger is the level-0 entry count that forces a merge.
	L0CompactionTrigger int `yaml:"l0_compaction_trigger" validate:"omitempty,min=1"`

	// MemtableSeed seeds the MemTable's skip-list RNG. Zero means "derive
	// a fixed, reproducible seed" rather than "use Go's zero seed
	// literally", so the zero-value config is still deterministic.
	MemtableSeed int64 `yaml:"-" validate:"-"`

	// Metrics, if non-nil, receives observations for every Put/Get/flush/
	// compaction. Nil (the default) costs nothing, matching §1's "metrics
	// are an external collaborator, interface only."
	Metrics *Metrics `yaml:"-" validate:"-"`
}

// defaultMemtableSeed is used whenever a config does not set one
// explicitly, making the skip list's shape reproducible by default.
const defaultMemtableSeed = 0x5A17_5EED

func (c EngineConfig) memtableSeed() int64 {
	if c.MemtableSeed != 0 {
		return c.MemtableSeed
	}
	return defaultMemtableSeed
}

// withDefaults fills zero-valued tunables with the package's reference constants.
func (c EngineConfig) withDefaults() EngineConfig {
	if c.MaxMemtableSize == 0 {
		c.MaxMemtableSize = MaxMemtableSize
	}
	if c.MaxLevel == 0 {
		c.MaxLevel = MaxLevel
	}
	if c.LevelSizeMultiplier == 0 {
		c.LevelSizeMultiplier = LevelSizeMultiplier
	}
	if c.L0CompactionTrigger == 0 {
		c.L0CompactionTrigger = L0CompactionTrigger
	}
	return c
}

var configValidator = validator.New()

// Validate checks structural constraints on the config (required fields,
// bounds on tunables). It does not touch the filesystem; Open separately
// surfaces directory-creation failures.
func (c EngineConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("lsm: config validation: %w", err)
	}
	return nil
}

// LoadConfig reads an EngineConfig from a YAML file and validates it.
func LoadConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("lsm: read config %s: %w", path, err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("lsm: parse config %s: %w", path, err)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
