package config

import "fmt"

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// OutputDefaultApplier handles OutputConfig defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.TargetRoot == "" {
		cfg.Output.TargetRoot = "./build"
	}
	return nil
}

// BuildDefaultApplier handles BuildConfig defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.WorkerLimit <= 0 {
		cfg.Build.WorkerLimit = 4
	}
	if len(cfg.Build.DefaultTargets) == 0 {
		cfg.Build.DefaultTargets = []string{"html"}
	}
	return nil
}

// CompositeDefaultApplier runs every domain's DefaultApplier in turn.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns a CompositeDefaultApplier covering every
// known configuration domain.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		OutputDefaultApplier{},
		BuildDefaultApplier{},
	}}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}
