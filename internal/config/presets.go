package config

import "sort"

func floor(y float64) *float64 { return &y }

func preset(scenario string, duration float64, edit func(*Config)) *Config {
	c := DefaultConfig()
	c.Scenario = scenario
	c.Duration = duration
	if edit != nil {
		edit(c)
	}
	return c
}

// Presets are keyed by scenario, then by preset name.
var Presets = map[string]map[string]*Config{
	"assemble": {
		"quick": preset("assemble", 5, nil),
		"slow-spawn": preset("assemble", 10, func(c *Config) {
			c.World.SpawnDelay = 1.5
		}),
		"flash": preset("assemble", 5, func(c *Config) {
			c.Weapon.AssembledFlash = true
		}),
		"on-grab": preset("assemble", 8, func(c *Config) {
			c.Weapon.SpawnOnGrab = true
		}),
	},
	"tap-throw": {
		"default": preset("tap-throw", 6, nil),
		"floor": preset("tap-throw", 6, func(c *Config) {
			c.World.Floor = floor(0)
		}),
	},
	"tutorial": {
		"default": preset("tutorial", 8, func(c *Config) {
			c.Weapon.Tutorial = true
		}),
	},
	"cannon": {
		"default": preset("cannon", 8, nil),
		"verlet": preset("cannon", 8, func(c *Config) {
			c.Integrator = "verlet"
		}),
	},
	"saw": {
		"default": preset("saw", 6, nil),
	},
	"swarm": {
		"default": preset("swarm", 8, nil),
		"zero-g": preset("swarm", 8, func(c *Config) {
			c.World.Gravity = 0
		}),
	},
	"spells": {
		"default": preset("spells", 12, nil),
		"no-gravity-gun": preset("spells", 12, func(c *Config) {
			c.Exclude = []string{"gravity"}
		}),
	},
	"shield": {
		"default": preset("shield", 5, nil),
	},
	"holster": {
		"default": preset("holster", 6, nil),
	},
	"respawn": {
		"default": preset("respawn", 8, nil),
	},
}

// GetPreset returns a copy of a preset, or nil when it does not exist.
func GetPreset(scenario, name string) *Config {
	byName, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := byName[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scenario string) []string {
	byName, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
