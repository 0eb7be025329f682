package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dissemia/disseminate/internal/environment"
	"github.com/dissemia/disseminate/internal/eventbus"
	"github.com/dissemia/disseminate/internal/logging"
	"github.com/dissemia/disseminate/internal/registry"
	"github.com/dissemia/disseminate/internal/templaterender"
)

// PreviewCmd serves a project's target root over HTTP and rebuilds
// whenever a source document changes, a scoped-down stand-in for the
// teacher's full preview daemon: no live-reload websocket, just a
// rebuild-on-change loop plus a plain file server.
type PreviewCmd struct {
	Project string `arg:"" optional:"" help:"Project directory to preview." default:"."`
	Output  string `short:"o" help:"Target root to build and serve." default:""`
	Port    int    `short:"p" help:"Port to serve the target root on." default:"8000"`
}

func (p *PreviewCmd) Run(g *Global, root *Root) error {
	projectRoot, err := filepath.Abs(p.Project)
	if err != nil {
		return fmt.Errorf("preview: resolve project: %w", err)
	}
	cfg := loadOrDefaultConfig(filepath.Join(projectRoot, root.Config))
	targetRoot := p.Output
	if targetRoot == "" {
		targetRoot = cfg.Output.TargetRoot
	}
	absTargetRoot, err := filepath.Abs(targetRoot)
	if err != nil {
		return fmt.Errorf("preview: resolve output: %w", err)
	}

	bus := eventbus.NewBus()
	envs, err := environment.CreateEnvironments(
		projectRoot,
		absTargetRoot,
		registry.NewDefault(nil),
		templaterender.Renderer{},
		sqliteStoreFactory,
		bus,
	)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if len(envs) == 0 {
		return fmt.Errorf("preview: no documents found under %s", projectRoot)
	}

	logger := logging.ForStage(g.Logger, "preview")

	rebuild := &rebuilder{envs: envs, logger: logger}
	rebuild.buildAll(context.Background())

	bus.Subscribe(eventbus.DocumentCreated, rebuild.onChange)
	bus.Subscribe(eventbus.DocumentDeleted, rebuild.onChange)

	for _, e := range envs {
		if err := e.Watch(); err != nil {
			return fmt.Errorf("preview: watch: %w", err)
		}
	}
	defer func() {
		for _, e := range envs {
			_ = e.Close()
		}
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", p.Port),
		Handler: http.FileServer(http.Dir(absTargetRoot)),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview server listening", "addr", srv.Addr, "root", absTargetRoot)
		fmt.Printf("serving %s on http://localhost:%d\n", absTargetRoot, p.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down preview server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("preview: serve: %w", err)
	}
}

// rebuilder debounces document-change events from the bus into a
// single serialized rebuild pass over every environment, mirroring the
// teacher's local preview rebuild worker (run/pending flags guarded by
// a mutex) without the channel-based debounce timer, since this
// engine's builds are already fast atomic-builder steps rather than a
// full multi-repo clone-and-render pipeline.
type rebuilder struct {
	mu      sync.Mutex
	envs    []*environment.Environment
	logger  *slog.Logger
	running bool
	pending bool
}

func (r *rebuilder) onChange(eventbus.Event) {
	r.mu.Lock()
	if r.running {
		r.pending = true
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.drain()
}

func (r *rebuilder) drain() {
	for {
		r.buildAll(context.Background())

		r.mu.Lock()
		if !r.pending {
			r.running = false
			r.mu.Unlock()
			return
		}
		r.pending = false
		r.mu.Unlock()
	}
}

func (r *rebuilder) buildAll(ctx context.Context) {
	for _, e := range r.envs {
		if _, err := e.Build(ctx, true); err != nil {
			r.logger.Warn("rebuild failed", "target", e.RootDocument.String(), "error", err)
		}
	}
}
