package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/config"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/environment"
	"github.com/dissemia/disseminate/internal/eventbus"
	"github.com/dissemia/disseminate/internal/logging"
	"github.com/dissemia/disseminate/internal/metrics"
	"github.com/dissemia/disseminate/internal/registry"
	"github.com/dissemia/disseminate/internal/templaterender"
)

// RenderCmd builds every target declared in a source document's header.
type RenderCmd struct {
	Input  string `short:"i" required:"" help:"Source document to build."`
	Output string `short:"o" help:"Target root (overrides the project config)." default:""`
}

func (r *RenderCmd) Run(g *Global, root *Root) error {
	absInput, err := filepath.Abs(r.Input)
	if err != nil {
		return fmt.Errorf("render: resolve input: %w", err)
	}
	if _, err := os.Stat(absInput); err != nil {
		return fmt.Errorf("render: %s: %w", absInput, err)
	}

	projectRoot := filepath.Dir(absInput)
	cfg := loadOrDefaultConfig(root.Config)
	targetRoot := r.Output
	if targetRoot == "" {
		targetRoot = cfg.Output.TargetRoot
	}
	absTargetRoot, err := filepath.Abs(targetRoot)
	if err != nil {
		return fmt.Errorf("render: resolve output: %w", err)
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Build.MetricsEnabled {
		rec = metrics.NewPrometheusRecorder(nil)
	}

	envs, err := environment.CreateEnvironments(
		projectRoot,
		absTargetRoot,
		registry.NewDefault(nil),
		templaterender.Renderer{},
		sqliteStoreFactory,
		eventbus.NewBus(),
	)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var target *environment.Environment
	for _, e := range envs {
		if e.RootDocument.Abs() == absInput {
			target = e
			break
		}
	}
	if target == nil {
		return fmt.Errorf("render: %s is not a buildable document under %s", absInput, projectRoot)
	}

	target.SetLogger(logging.ForStage(g.Logger, "render"))
	target.SetRecorder(rec)
	target.Subscribe(ConsoleProgress{})

	ctx := context.Background()
	status, err := target.Build(ctx, true)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if status != builder.StatusDone {
		return fmt.Errorf("render: build finished with status %s", status)
	}
	return nil
}

func loadOrDefaultConfig(path string) *config.Config {
	if cfg, err := config.Load(path); err == nil {
		return cfg
	}
	cfg := &config.Config{}
	_ = config.NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// sqliteStoreFactory opens (creating if necessary) the SQLite-backed
// decider store under an environment's own cache root, the CLI's
// default decider.Store.
func sqliteStoreFactory(cacheRoot string) (decider.Store, error) {
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return nil, fmt.Errorf("cli: create cache root %s: %w", cacheRoot, err)
	}
	return decider.OpenSQLiteStore(filepath.Join(cacheRoot, ".decisions"))
}
