// Package targetbuilder composes the atomic and composite builders into
// one builder per document target kind (html, xhtml, tex, pdf, epub). A
// TargetBuilder always carries a media Parallel and a JinjaRender
// template stage; compiled targets (pdf, epub) add a final-assembly
// stage that turns the rendered intermediate into the published format.
package targetbuilder

import (
	"context"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/composite"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
	"github.com/dissemia/disseminate/internal/registry"
)

// Kind names a document target.
type Kind string

const (
	KindHTML  Kind = "html"
	KindXHTML Kind = "xhtml"
	KindTex   Kind = "tex"
	KindPDF   Kind = "pdf"
	KindEPUB  Kind = "epub"
)

// TargetBuilder drives a target's media conversions and template
// render (and, for compiled targets, final assembly) as a single
// composite.Sequential: media first, then render, then assembly. Its
// own top-level decider gates the re-entry shortcut — calling Prepare
// when the target's published output still matches its last committed
// fingerprint skips every sub-builder, including newly attached media.
// AddBuild must therefore be called, for any media discovered while
// scanning the document, before Prepare runs.
type TargetBuilder struct {
	*composite.Sequential

	kind     Kind
	useCache bool
	useMedia bool

	media    *composite.Parallel
	render   *builder.JinjaRender
	assembly builder.Builder

	reg      *registry.Registry
	cacheDir docpath.TargetPath
	decider  decider.Decider
}

func newTargetBuilder(kind Kind, template docpath.SourcePath, data map[string]any, renderOut docpath.TargetPath, renderer builder.TemplateRenderer, reg *registry.Registry, cacheDir docpath.TargetPath, useCache, useMedia bool, d decider.Decider, assembly builder.Builder) *TargetBuilder {
	media := composite.NewParallel(string(kind)+"_media", 0)
	render := builder.NewJinjaRender(template, data, renderOut, renderer, d)

	sub := []builder.Builder{media, render}
	finalOut := docpath.Path(renderOut)
	if assembly != nil {
		sub = append(sub, assembly)
		finalOut = assembly.OutFilePath()
	}

	args := []decider.Arg{decider.Arg("target=" + string(kind))}
	seq := composite.NewSequential(string(kind)+"_target", []docpath.Path{template}, finalOut, args, d, sub...)

	return &TargetBuilder{
		Sequential: seq,
		kind:       kind,
		useCache:   useCache,
		useMedia:   useMedia,
		media:      media,
		render:     render,
		assembly:   assembly,
		reg:        reg,
		cacheDir:   cacheDir,
		decider:    d,
	}
}

// Kind returns the document target this builder publishes.
func (t *TargetBuilder) Kind() Kind { return t.kind }

// UseCache reports whether media conversions this builder triggers are
// written under the cache root rather than the target root — true for
// targets (like pdf, epub) whose media never needs to be served
// directly, since only the compiled artifact is published.
func (t *TargetBuilder) UseCache() bool { return t.useCache }

// UseMedia reports whether this target publishes media files at all
// (tex and pdf targets embed or discard them instead of linking out).
func (t *TargetBuilder) UseMedia() bool { return t.useMedia }

// Media returns the Parallel sub-builder responsible for this target's
// media conversions.
func (t *TargetBuilder) Media() *composite.Parallel { return t.media }

// Render returns the JinjaRender sub-builder responsible for this
// target's template render.
func (t *TargetBuilder) Render() *builder.JinjaRender { return t.render }

// Assembly returns the final-assembly sub-builder for a compiled target,
// or nil for a target whose render output is itself the published file.
func (t *TargetBuilder) Assembly() builder.Builder { return t.assembly }

// AddBuild attaches a newly discovered media dependency (for example an
// image referenced by an @img tag encountered mid-render) to this
// target's media stage, resolving its builder via the registry the same
// way the initial scan's media set was resolved.
func (t *TargetBuilder) AddBuild(ctx context.Context, infilepath docpath.SourcePath, outfilepath docpath.TargetPath) (builder.Builder, error) {
	return t.media.AddBuild(ctx, string(t.kind), infilepath, outfilepath, t.cacheDir, t.reg, t.decider)
}

// NewHTML returns a TargetBuilder for the html target: media copied
// alongside the rendered page, no final-assembly stage.
func NewHTML(template docpath.SourcePath, data map[string]any, out docpath.TargetPath, renderer builder.TemplateRenderer, reg *registry.Registry, cacheDir docpath.TargetPath, d decider.Decider) *TargetBuilder {
	return newTargetBuilder(KindHTML, template, data, out, renderer, reg, cacheDir, false, true, d, nil)
}

// NewXHTML returns a TargetBuilder for the xhtml target, the basis for
// epub packaging: media lives under the cache root until an epub
// assembly stage pulls it in, rather than the target root an html build
// would serve directly.
func NewXHTML(template docpath.SourcePath, data map[string]any, out docpath.TargetPath, renderer builder.TemplateRenderer, reg *registry.Registry, cacheDir docpath.TargetPath, d decider.Decider) *TargetBuilder {
	return newTargetBuilder(KindXHTML, template, data, out, renderer, reg, cacheDir, true, true, d, nil)
}

// NewTex returns a TargetBuilder for the tex target: the rendered
// LaTeX source is itself the published output, with no media stage
// conversions beyond what the template embeds by reference.
func NewTex(template docpath.SourcePath, data map[string]any, out docpath.TargetPath, renderer builder.TemplateRenderer, reg *registry.Registry, cacheDir docpath.TargetPath, d decider.Decider) *TargetBuilder {
	return newTargetBuilder(KindTex, template, data, out, renderer, reg, cacheDir, true, false, d, nil)
}

// NewPDF returns a TargetBuilder for the pdf target: the template
// renders an intermediate .tex file under cacheDir, which a
// Latexmk-or-Pdflatex assembly stage (resolved through reg) compiles to
// the published PDF.
func NewPDF(template docpath.SourcePath, data map[string]any, texIntermediate docpath.TargetPath, pdfOut docpath.TargetPath, renderer builder.TemplateRenderer, reg *registry.Registry, cacheDir docpath.TargetPath, d decider.Decider) (*TargetBuilder, error) {
	ctor, err := reg.Resolve(string(KindPDF), "tex", "pdf")
	if err != nil {
		return nil, err
	}
	assembly, err := ctor(texIntermediate, pdfOut, cacheDir, d)
	if err != nil {
		return nil, err
	}
	return newTargetBuilder(KindPDF, template, data, texIntermediate, renderer, reg, cacheDir, true, false, d, assembly), nil
}

// NewEPUB returns a TargetBuilder for the epub target: the template
// renders an intermediate .xhtml file under cacheDir, which an Epub
// assembly stage packages, together with media (the target's
// already-converted media outputs), into the published .epub.
func NewEPUB(template docpath.SourcePath, data map[string]any, xhtmlIntermediate docpath.TargetPath, epubOut docpath.TargetPath, title string, media []docpath.Path, renderer builder.TemplateRenderer, reg *registry.Registry, cacheDir docpath.TargetPath, d decider.Decider) *TargetBuilder {
	assembly := builder.NewEpub(xhtmlIntermediate, media, title, epubOut, d)
	return newTargetBuilder(KindEPUB, template, data, xhtmlIntermediate, renderer, reg, cacheDir, true, true, d, assembly)
}
