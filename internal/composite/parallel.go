package composite

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
	"github.com/dissemia/disseminate/internal/registry"
)

// Parallel holds an unordered set of independent sub-builders advanced
// concurrently, bounded by limit (0 means unbounded — errgroup.SetLimit
// is simply not called). There is no ordering guarantee between
// siblings; the composite's status is the worst of its children.
type Parallel struct {
	mu    sync.Mutex
	name  string
	limit int
	sub   []builder.Builder

	status builder.Status
}

// NewParallel returns a Parallel builder named name with an initial set
// of sub-builders and a concurrency limit (0 = unbounded).
func NewParallel(name string, limit int, sub ...builder.Builder) *Parallel {
	return &Parallel{name: name, limit: limit, sub: append([]builder.Builder{}, sub...)}
}

// Status implements builder.Builder.
func (p *Parallel) Status() builder.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// OutFilePath implements builder.Builder. A Parallel composite has no
// single output of its own; it returns a zero-value path.
func (p *Parallel) OutFilePath() docpath.Path { return docpath.TargetPath{} }

// Prepare implements builder.Builder, preparing every sub-builder
// concurrently.
func (p *Parallel) Prepare(ctx context.Context) error {
	p.mu.Lock()
	sub := append([]builder.Builder{}, p.sub...)
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	for _, c := range sub {
		c := c
		g.Go(func() error { return c.Prepare(gctx) })
	}
	if err := g.Wait(); err != nil {
		p.mu.Lock()
		p.status = builder.StatusFailed
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.status = aggregateStatus(p.sub)
	p.mu.Unlock()
	return nil
}

// Step implements builder.Builder. Each sub-builder is driven to its own
// terminal state in its own goroutine; Step itself therefore behaves
// like build(complete=true) rather than a single unit of work, because a
// set of independent builders has no natural shared "one step" to
// interleave against.
func (p *Parallel) Step(ctx context.Context) (builder.Status, error) {
	p.mu.Lock()
	if p.status.Done() {
		defer p.mu.Unlock()
		return p.status, nil
	}
	sub := append([]builder.Builder{}, p.sub...)
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	for _, c := range sub {
		c := c
		g.Go(func() error {
			for {
				status, err := c.Step(gctx)
				if err != nil {
					return err
				}
				if status.Done() {
					return nil
				}
			}
		})
	}

	runErr := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = aggregateStatus(p.sub)
	if runErr != nil && p.status != builder.StatusFailed {
		p.status = builder.StatusFailed
	}
	if p.status == builder.StatusFailed && runErr == nil {
		runErr = fmt.Errorf("%s: a sub-builder failed", p.name)
	}
	return p.status, runErr
}

// AddBuild resolves a builder class for infilepath via reg, using
// documentTarget and outfilepath's extension (when outfilepath is the
// zero value, the registry falls back on documentTarget-compatible
// wildcard rules), instantiates it, attaches it as a new sub-builder,
// and returns it as a handle for status polling. It refuses to register
// a second builder writing the same output path.
func (p *Parallel) AddBuild(ctx context.Context, documentTarget string, infilepath docpath.SourcePath, outfilepath docpath.TargetPath, cacheDir docpath.TargetPath, reg *registry.Registry, d decider.Decider) (builder.Builder, error) {
	ctor, err := reg.Resolve(documentTarget, infilepath.Ext(), outfilepath.Ext())
	if err != nil {
		return nil, err
	}

	built, err := ctor(infilepath, outfilepath, cacheDir, d)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := duplicateOutput(p.sub, built.OutFilePath()); err != nil {
		return nil, err
	}
	p.sub = append(p.sub, built)
	p.status = builder.StatusCreated
	return built, nil
}

// FindBuilderCls returns the constructor Resolve would pick for
// infilepath under documentTarget, without instantiating or attaching
// anything. A zero-value outfilepath asks for the documentTarget's
// default producing extension.
func (p *Parallel) FindBuilderCls(reg *registry.Registry, documentTarget string, infilepath docpath.SourcePath, outfilepath docpath.TargetPath) (registry.Ctor, error) {
	return reg.Resolve(documentTarget, infilepath.Ext(), outfilepath.Ext())
}
