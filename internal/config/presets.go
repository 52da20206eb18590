package config

import "sort"

// Profiles are named run settings layered over the defaults.
var Profiles = map[string]func(*Config){
	"quick": func(c *Config) {
		c.Dt = 1.0 / 30
		c.Duration = 2
		c.Physics.Substeps = 2
	},
	"standard": func(c *Config) {},
	"precise": func(c *Config) {
		c.Dt = 1.0 / 120
		c.Duration = 10
		c.Physics.Substeps = 8
		c.Physics.Iterations = 60
	},
	"moon": func(c *Config) {
		c.Physics.Gravity = 162
		c.Duration = 10
	},
	"strict-slack": func(c *Config) {
		c.Slack.ToleranceRatio = 0.001
	},
}

// GetProfile returns the defaults with the named profile applied, or nil.
func GetProfile(name string) *Config {
	apply, ok := Profiles[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListProfiles() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
