package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/shatterblade/internal/blade"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 1.0 / 60
	DefaultDuration   = 10.0
	DefaultSubsteps   = 4
	DefaultGravity    = 9.81
	DefaultSpawnDelay = 0.2
	DefaultScenario   = "assemble"
	DefaultIntegrator = "euler"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Scenario   string       `yaml:"scenario"`
	Integrator string       `yaml:"integrator"`
	Dt         float64      `yaml:"dt"`
	Duration   float64      `yaml:"duration"`
	Seed       int64        `yaml:"seed"`
	World      WorldConfig  `yaml:"world"`
	Weapon     WeaponConfig `yaml:"weapon"`
	// Exclude leaves modes out of the catalog by name.
	Exclude []string `yaml:"exclude"`
}

type WorldConfig struct {
	Substeps   int      `yaml:"substeps"`
	Gravity    float64  `yaml:"gravity"`
	Floor      *float64 `yaml:"floor,omitempty"`
	SpawnDelay float64  `yaml:"spawn_delay"`
}

type WeaponConfig struct {
	Tutorial       bool    `yaml:"tutorial"`
	AssembledFlash bool    `yaml:"assembled_flash"`
	SpawnOnGrab    bool    `yaml:"spawn_on_grab"`
	TapThreshold   float64 `yaml:"tap_threshold"`
	HapticInterval float64 `yaml:"haptic_interval"`
}

func DefaultConfig() *Config {
	b := blade.DefaultConfig()
	return &Config{
		Scenario:   DefaultScenario,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		World: WorldConfig{
			Substeps:   DefaultSubsteps,
			Gravity:    DefaultGravity,
			SpawnDelay: DefaultSpawnDelay,
		},
		Weapon: WeaponConfig{
			TapThreshold:   b.TapThreshold,
			HapticInterval: b.HapticInterval,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	case c.World.Substeps < 1:
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.World.Substeps)
	case c.World.SpawnDelay < 0:
		return fmt.Errorf("%w: spawn delay must not be negative", ErrInvalidConfig)
	case c.Weapon.TapThreshold <= 0:
		return fmt.Errorf("%w: tap threshold must be positive", ErrInvalidConfig)
	case c.Scenario == "":
		return fmt.Errorf("%w: scenario is required", ErrInvalidConfig)
	}
	for _, name := range c.Exclude {
		if name == "sword" {
			return fmt.Errorf("%w: the sword mode cannot be excluded", ErrInvalidConfig)
		}
	}
	return nil
}

// Blade maps the weapon section onto a weapon configuration.
func (c *Config) Blade() blade.Config {
	return blade.Config{
		Tutorial:       c.Weapon.Tutorial,
		AssembledFlash: c.Weapon.AssembledFlash,
		SpawnOnGrab:    c.Weapon.SpawnOnGrab,
		TapThreshold:   c.Weapon.TapThreshold,
		HapticInterval: c.Weapon.HapticInterval,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.World.Floor != nil {
		f := *c.World.Floor
		out.World.Floor = &f
	}
	out.Exclude = append([]string(nil), c.Exclude...)
	return &out
}
