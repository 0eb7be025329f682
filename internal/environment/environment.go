// Package environment binds a document tree to the caches, roots, and
// builder registry it needs to build itself: the per-project lifecycle
// object the rest of the build engine is driven through.
package environment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/composite"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docfile"
	"github.com/dissemia/disseminate/internal/docpath"
	"github.com/dissemia/disseminate/internal/eventbus"
	ferrors "github.com/dissemia/disseminate/internal/ferrors"
	"github.com/dissemia/disseminate/internal/logging"
	"github.com/dissemia/disseminate/internal/metrics"
	"github.com/dissemia/disseminate/internal/registry"
	"github.com/dissemia/disseminate/internal/scanner"
	"github.com/dissemia/disseminate/internal/targetbuilder"
	"github.com/dissemia/disseminate/internal/util/sets"
)

// cacheDirName is the fixed subdirectory, under a project root, where an
// environment's cache root lives. Deriving it this way keeps cache root
// resolution a pure function of the project root rather than requiring a
// side table of previously seen projects.
const cacheDirName = ".disseminate-cache"

// defaultWorkerLimit bounds how many target builders an environment
// drives concurrently, mirroring the small worker pool the concurrency
// model calls for.
const defaultWorkerLimit = 4

// ProgressObserver receives notifications as an environment drives its
// target builders through a Build call. The CLI's progress display is
// the canonical subscriber; the core has no opinion on how (or whether)
// progress is rendered.
type ProgressObserver interface {
	OnBuilderStart(target string)
	OnBuilderStatusChange(target string, status builder.Status)
	OnBuildComplete(status builder.Status)
}

// Context carries the per-document state a target builder's collaborators
// (the template renderer, an embedded tag handler reaching back in to add
// a dependency) read: the set of requested targets, the template data,
// and the target builders published by kind.
type Context struct {
	mu sync.RWMutex

	// Targets is the set of target kinds this document's header
	// requested, normalized (no leading dot, lowercase).
	Targets map[string]bool
	// Data is the template context passed to every target's render.
	Data map[string]any
	// Builders holds each requested target's TargetBuilder, keyed by
	// kind, so a markup tag handler encountered mid-render can reach
	// back in via Builders[target].AddBuild to register a dependency it
	// just discovered.
	Builders map[string]builder.Builder
}

func newContext(targets []string, data map[string]any) *Context {
	c := &Context{
		Targets:  make(map[string]bool, len(targets)),
		Data:     data,
		Builders: make(map[string]builder.Builder, len(targets)),
	}
	for _, t := range targets {
		c.Targets[t] = true
	}
	return c
}

// Publish installs b as the target builder responsible for target. It is
// the Go-idiomatic stand-in for "the target builder publishes itself
// under context.builders[target]": the constructor that builds b calls
// this rather than writing the map directly, so every write goes
// through the same lock.
func (c *Context) Publish(target string, b builder.Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Builders[target] = b
}

// Builder returns the target builder published for target, if any.
func (c *Context) Builder(target string) (builder.Builder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.Builders[target]
	return b, ok
}

// Environment is the per-project lifecycle object: it owns a document
// tree's caches, its target roots, and the decider and registry views
// its target builders are constructed against. It is the sole writer to
// its CacheRoot.
type Environment struct {
	ProjectRoot  string
	TargetRoot   string
	CacheRoot    string
	RootDocument docpath.SourcePath
	Context      *Context
	Deciders     decider.Decider

	registry *registry.Registry
	bus      *eventbus.Bus

	logger   *slog.Logger
	recorder metrics.Recorder

	observers []ProgressObserver
	obsMu     sync.Mutex

	root *composite.Parallel

	watcher *fsWatcher
	watchMu sync.Mutex
}

// CreateEnvironments scans rootPath for document entry files (extension
// docfile.Ext) and returns one Environment per root document: a document
// that is not named in another document's "include" header. Each
// environment gets its own decider store rooted under a cache directory
// derived from rootPath, and shares reg, renderer, and bus.
func CreateEnvironments(rootPath, targetRoot string, reg *registry.Registry, renderer builder.TemplateRenderer, newStore func(cacheRoot string) (decider.Store, error), bus *eventbus.Bus) ([]*Environment, error) {
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("environment: resolve project root: %w", err)
	}
	targetRoot, err = filepath.Abs(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("environment: resolve target root: %w", err)
	}
	if err := docpath.ValidateRootsDisjoint(rootPath, targetRoot); err != nil {
		return nil, err
	}

	docs, err := discoverDocuments(rootPath)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]docfile.Header, len(docs))
	included := sets.New[string]()
	for _, doc := range docs {
		data, err := os.ReadFile(doc.Abs())
		if err != nil {
			return nil, fmt.Errorf("environment: read %s: %w", doc, err)
		}
		h, _, err := docfile.ParseHeader(data)
		if err != nil {
			return nil, fmt.Errorf("environment: %s: %w", doc, err)
		}
		headers[doc.Abs()] = h

		for _, inc := range h.Include {
			incPath, err := doc.Dir().Join(inc)
			if err != nil {
				return nil, fmt.Errorf("environment: %s: include %q: %w", doc, inc, err)
			}
			included.Add(incPath.Abs())
		}
	}

	cacheRoot := filepath.Join(rootPath, cacheDirName)

	var envs []*Environment
	for _, doc := range docs {
		if included.Has(doc.Abs()) {
			continue
		}

		store, err := newStore(cacheRoot)
		if err != nil {
			return nil, fmt.Errorf("environment: open decider store for %s: %w", doc, err)
		}
		d := decider.NewHashDecider(store)

		env, err := newEnvironment(rootPath, targetRoot, cacheRoot, doc, headers[doc.Abs()], reg, renderer, d, bus)
		if err != nil {
			return nil, fmt.Errorf("environment: %s: %w", doc, err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// discoverDocuments walks root for files with docfile.Ext, skipping the
// environment's own cache directory.
func discoverDocuments(root string) ([]docpath.SourcePath, error) {
	var docs []docpath.SourcePath
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == cacheDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != docfile.Ext {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sp, err := docpath.NewSourcePath(root, rel)
		if err != nil {
			return err
		}
		docs = append(docs, sp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("environment: scan %s: %w", root, err)
	}
	return docs, nil
}

func newEnvironment(projectRoot, targetRoot, cacheRoot string, doc docpath.SourcePath, h docfile.Header, reg *registry.Registry, renderer builder.TemplateRenderer, d decider.Decider, bus *eventbus.Bus) (*Environment, error) {
	data := make(map[string]any, len(h.Extra))
	for k, v := range h.Extra {
		data[k] = v
	}

	ctx := newContext(h.Targets, data)

	env := &Environment{
		ProjectRoot:  projectRoot,
		TargetRoot:   targetRoot,
		CacheRoot:    cacheRoot,
		RootDocument: doc,
		Context:      ctx,
		Deciders:     d,
		registry:     reg,
		bus:          bus,
		recorder:     metrics.NoopRecorder{},
	}

	mediaSrcs, err := discoverMedia(doc)
	if err != nil {
		return nil, err
	}

	var subBuilders []builder.Builder
	for _, kind := range h.Targets {
		tb, err := env.buildTarget(kind, h.Template, data, renderer, mediaSrcs, d)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", kind, err)
		}
		ctx.Publish(kind, tb)
		subBuilders = append(subBuilders, tb)
	}

	env.root = composite.NewParallel("environment_build", defaultWorkerLimit, subBuilders...)
	return env, nil
}

// SetLogger attaches a logger Build uses for per-build start/finish lines.
// A nil Environment logger (the default) means Build logs nothing.
func (e *Environment) SetLogger(l *slog.Logger) { e.logger = l }

// SetRecorder attaches a metrics.Recorder Build reports outcomes to. The
// default is metrics.NoopRecorder.
func (e *Environment) SetRecorder(r metrics.Recorder) { e.recorder = r }

// Subscribe registers o to be notified as Build drives target builders.
func (e *Environment) Subscribe(o ProgressObserver) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

func (e *Environment) notifyStart(target string) {
	e.obsMu.Lock()
	obs := append([]ProgressObserver{}, e.observers...)
	e.obsMu.Unlock()
	for _, o := range obs {
		o.OnBuilderStart(target)
	}
}

func (e *Environment) notifyStatus(target string, status builder.Status) {
	e.obsMu.Lock()
	obs := append([]ProgressObserver{}, e.observers...)
	e.obsMu.Unlock()
	for _, o := range obs {
		o.OnBuilderStatusChange(target, status)
	}
}

func (e *Environment) notifyComplete(status builder.Status) {
	e.obsMu.Lock()
	obs := append([]ProgressObserver{}, e.observers...)
	e.obsMu.Unlock()
	for _, o := range obs {
		o.OnBuildComplete(status)
	}
}

// Build drives every target builder published in e.Context to
// completion (complete=true) or by a single unit of work
// (complete=false), and returns the aggregated status across targets.
func (e *Environment) Build(ctx context.Context, complete bool) (builder.Status, error) {
	buildID := logging.NewBuildID()
	started := time.Now()

	for target := range e.Context.Targets {
		e.notifyStart(target)
		e.logf(buildID, target, "build started")
	}
	e.recorder.SetActiveBuilds(len(e.Context.Targets))

	if err := e.root.Prepare(ctx); err != nil {
		return builder.StatusFailed, fmt.Errorf("environment: prepare: %w", err)
	}

	status := e.root.Status()
	if complete {
		for !status.Done() {
			var err error
			status, err = e.root.Step(ctx)
			if err != nil {
				return status, fmt.Errorf("environment: build: %w", err)
			}
		}
	} else if !status.Done() {
		var err error
		status, err = e.root.Step(ctx)
		if err != nil {
			return status, fmt.Errorf("environment: build: %w", err)
		}
	}

	e.recorder.SetActiveBuilds(0)
	for target := range e.Context.Targets {
		if b, ok := e.Context.Builder(target); ok {
			e.notifyStatus(target, b.Status())
			e.recorder.IncBuildOutcome(target, outcomeLabel(b.Status()))
			e.recorder.ObserveBuildDuration(target, time.Since(started))
			e.logf(buildID, target, "build finished: "+b.Status().String())
		}
	}
	e.notifyComplete(status)

	return status, nil
}

func (e *Environment) logf(buildID, target, msg string) {
	if e.logger == nil {
		return
	}
	logging.ForTarget(e.logger, buildID, target).Info(msg)
}

func outcomeLabel(s builder.Status) metrics.ResultLabel {
	switch s {
	case builder.StatusDone:
		return metrics.ResultDone
	case builder.StatusMissing:
		return metrics.ResultMissing
	case builder.StatusCancelled:
		return metrics.ResultCancelled
	default:
		return metrics.ResultFailed
	}
}

// BuildNeeded reports whether any target builder in the tree requires
// work, without performing any of it.
func (e *Environment) BuildNeeded(ctx context.Context) (bool, error) {
	if err := e.root.Prepare(ctx); err != nil {
		return false, fmt.Errorf("environment: prepare: %w", err)
	}
	return e.root.Status() != builder.StatusDone, nil
}

// discoverMedia finds the media files a document references, combining a
// Markdown-style scan (images, links) with a generic "@include"/"#include"
// line scan, so both a document written in a Markdown-like dialect and
// one using plain include directives are covered. Producing the markup
// layer's own AST is out of scope; this is a best-effort approximation
// good enough to seed a target's media builders.
func discoverMedia(doc docpath.SourcePath) ([]docpath.SourcePath, error) {
	ctx := context.Background()
	seen := map[string]bool{}
	var deps []docpath.SourcePath

	for _, s := range []scanner.Scanner{scanner.NewMarkdownScanner(), scanner.NewGenericScanner()} {
		found, err := s.Scan(ctx, doc)
		if err != nil {
			if errors.Is(err, scanner.ErrMissingDependency) {
				continue
			}
			return nil, err
		}
		for _, f := range found {
			if !seen[f.Abs()] {
				seen[f.Abs()] = true
				deps = append(deps, f)
			}
		}
	}
	return deps, nil
}

func stemOf(doc docpath.SourcePath) string {
	base := filepath.Base(doc.SubPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// templatePathFor resolves a document header's dotted template name
// (e.g. "default/template") to the template file backing a given target
// kind, under <projectRoot>/templates.
func templatePathFor(projectRoot, dotted, kind string) (docpath.SourcePath, error) {
	rel := strings.ReplaceAll(dotted, ".", "/")
	sub := filepath.Join("templates", filepath.FromSlash(rel)+"."+kind+".tmpl")
	return docpath.NewSourcePath(projectRoot, sub)
}

func (e *Environment) cacheDir(kind string) (docpath.TargetPath, error) {
	return docpath.NewTargetPath(e.CacheRoot, kind, "")
}

// buildTarget constructs the TargetBuilder for kind, wires its media
// dependencies, and returns it published-ready (the caller still calls
// Context.Publish).
func (e *Environment) buildTarget(kind, template string, data map[string]any, renderer builder.TemplateRenderer, mediaSrcs []docpath.SourcePath, d decider.Decider) (*targetbuilder.TargetBuilder, error) {
	tmplPath, err := templatePathFor(e.ProjectRoot, template, kind)
	if err != nil {
		return nil, err
	}
	stem := stemOf(e.RootDocument)
	cacheDir, err := e.cacheDir(kind)
	if err != nil {
		return nil, err
	}

	var tb *targetbuilder.TargetBuilder
	switch kind {
	case "html":
		out, err := docpath.NewTargetPath(e.TargetRoot, "html", stem+".html")
		if err != nil {
			return nil, err
		}
		tb = targetbuilder.NewHTML(tmplPath, data, out, renderer, e.registry, cacheDir, d)

	case "xhtml":
		out, err := docpath.NewTargetPath(e.TargetRoot, "xhtml", stem+".xhtml")
		if err != nil {
			return nil, err
		}
		tb = targetbuilder.NewXHTML(tmplPath, data, out, renderer, e.registry, cacheDir, d)

	case "tex":
		out, err := docpath.NewTargetPath(e.TargetRoot, "tex", stem+".tex")
		if err != nil {
			return nil, err
		}
		tb = targetbuilder.NewTex(tmplPath, data, out, renderer, e.registry, cacheDir, d)

	case "pdf":
		texIntermediate, err := docpath.NewTargetPath(e.CacheRoot, "pdf", stem+".tex")
		if err != nil {
			return nil, err
		}
		pdfOut, err := docpath.NewTargetPath(e.TargetRoot, "pdf", stem+".pdf")
		if err != nil {
			return nil, err
		}
		tb, err = targetbuilder.NewPDF(tmplPath, data, texIntermediate, pdfOut, renderer, e.registry, cacheDir, d)
		if err != nil {
			return nil, err
		}

	case "epub":
		xhtmlIntermediate, err := docpath.NewTargetPath(e.CacheRoot, "epub", stem+".xhtml")
		if err != nil {
			return nil, err
		}
		epubOut, err := docpath.NewTargetPath(e.TargetRoot, "epub", stem+".epub")
		if err != nil {
			return nil, err
		}
		title := fmt.Sprint(data["title"])
		if title == "<nil>" || title == "" {
			title = stem
		}
		media, err := e.mediaOutputs(kind, mediaSrcs, cacheDir)
		if err != nil {
			return nil, err
		}
		tb = targetbuilder.NewEPUB(tmplPath, data, xhtmlIntermediate, epubOut, title, media, renderer, e.registry, cacheDir, d)

	default:
		return nil, fmt.Errorf("unrecognized target kind %q", kind)
	}

	if err := e.attachMedia(context.Background(), tb, mediaSrcs, cacheDir); err != nil {
		return nil, err
	}
	return tb, nil
}

// mediaOutputs computes the published output path for each of srcs,
// preserving the original extension, always under cacheDir (the
// UseCache policy of the epub target, its only caller). It is used where a
// composite assembly stage (epub's packager) needs the final media
// paths before any conversion builder has actually run.
func (e *Environment) mediaOutputs(kind string, srcs []docpath.SourcePath, cacheDir docpath.TargetPath) ([]docpath.Path, error) {
	out := make([]docpath.Path, 0, len(srcs))
	for _, src := range srcs {
		mediaOut, err := mediaOutputPath(src, kind, true, e.TargetRoot, cacheDir)
		if err != nil {
			return nil, err
		}
		out = append(out, mediaOut)
	}
	return out, nil
}

func mediaOutputPath(src docpath.SourcePath, kind string, useCache bool, targetRoot string, cacheDir docpath.TargetPath) (docpath.TargetPath, error) {
	sub := filepath.Join("media", filepath.Base(src.SubPath))
	if useCache {
		return cacheDir.Join(sub)
	}
	return docpath.NewTargetPath(targetRoot, kind, sub)
}

// attachMedia registers a conversion builder for every discovered media
// source against tb, via AddBuild, using the same output path policy
// mediaOutputs used so a target's assembly stage and its actual built
// files agree on where media lives.
func (e *Environment) attachMedia(ctx context.Context, tb *targetbuilder.TargetBuilder, srcs []docpath.SourcePath, cacheDir docpath.TargetPath) error {
	if !tb.UseMedia() {
		return nil
	}
	for _, src := range srcs {
		out, err := mediaOutputPath(src, string(tb.Kind()), tb.UseCache(), e.TargetRoot, cacheDir)
		if err != nil {
			return err
		}
		if _, err := tb.AddBuild(ctx, src, out); err != nil {
			var ce *ferrors.ClassifiedError
			if errors.As(err, &ce) && ce.Category() == ferrors.CategoryNoBuilder {
				e.recorder.IncNoBuilder(filepath.Ext(src.SubPath), filepath.Ext(out.SubPath))
				continue
			}
			return err
		}
	}
	return nil
}
