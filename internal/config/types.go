package config

// Config is the project-level configuration for a disseminate build: the
// settings that apply across every document in a project rather than
// being declared per-document in a document's own header.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Build  BuildConfig  `yaml:"build"`
}

// OutputConfig controls where built artifacts land.
type OutputConfig struct {
	// TargetRoot is the directory target builders publish into. Must be
	// disjoint from the project root (docpath.ValidateRootsDisjoint).
	TargetRoot string `yaml:"target_root"`
	// Clean is read from the config file, but no build step consults
	// it: TargetRoot's contents are not removed before a build.
	Clean bool `yaml:"clean"`
}

// BuildConfig controls how the engine drives the build.
type BuildConfig struct {
	// WorkerLimit is loaded and defaulted, but the build does not read
	// it: an environment drives its target builders with its own fixed
	// limit.
	WorkerLimit int `yaml:"worker_limit"`
	// DefaultTargets is loaded and defaulted, but the build does not
	// read it: a document whose header declares no targets gets no
	// target builders.
	DefaultTargets []string `yaml:"default_targets"`
	// MetricsEnabled activates a PrometheusRecorder instead of the
	// no-op default.
	MetricsEnabled bool `yaml:"metrics_enabled"`
}
