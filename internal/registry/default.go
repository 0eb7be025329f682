package registry

import (
	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// PipelineCtor builds a multi-stage pipeline builder (a composite, from
// the caller's perspective an opaque builder.Builder) for an input that
// needs more than one atomic builder to reach outfilepath under a given
// document target. Registry stays independent of the composite package;
// the caller (the target builder / environment wiring, which already
// depends on both) supplies the concrete constructor.
type PipelineCtor func(in docpath.Path, cacheDir, out docpath.TargetPath, margins builder.CropMargins, scale float64, d decider.Decider) builder.Builder

// passthroughExts lists the media extensions a target builder copies
// through unchanged rather than transcoding, one Copy rule per
// extension-to-itself pair.
var passthroughExts = []string{
	"svg", "png", "jpg", "jpeg", "gif",
	"css", "js", "woff", "woff2", "ttf", "eot",
}

// NewDefault returns a Registry wired with the engine's standard atomic
// builders: the image/PDF/Asymptote/LaTeX conversions from spec.md's
// builder table, plus a same-extension Copy rule for the common media
// types a target builder passes through verbatim.
func NewDefault(pdfToSvgForHTML PipelineCtor) *Registry {
	r := New()

	for _, ext := range passthroughExts {
		ext := ext
		r.Register(ext, ext, "", 10, "", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
			return builder.NewCopy(in, out, d), nil
		})
	}

	r.Register("pdf", "svg", "", 0, "pdf2svg", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewPdf2Svg(in, out, d), nil
	})
	r.Register("pdf", "pdf", "", 0, "pdfcrop", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewPdfcrop(in, out, builder.CropMargins{}, d), nil
	})

	r.Register("tif", "png", "", 0, "convert", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewTif2Png(in, out, d), nil
	})
	r.Register("tiff", "png", "", 0, "convert", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewTif2Png(in, out, d), nil
	})

	r.Register("asy", "pdf", "", 0, "asy", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewAsy2Pdf(in, out, d), nil
	})
	r.Register("asy", "svg", "", 0, "asy", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewAsy2Svg(in, out, d), nil
	})

	// .tex -> .pdf tries latexmk first, falling back to pdflatex.
	r.Register("tex", "pdf", "", 0, "latexmk", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewLatexmk(in, nil, out, d), nil
	})
	r.Register("tex", "pdf", "", 1, "pdflatex", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewPdflatex(in, nil, out, d), nil
	})

	// .pdf under an html document target resolves to the crop->svg->scale
	// pipeline rather than a bare Pdf2Svg, so a PDF figure referenced from
	// HTML output lands as a correctly-cropped, screen-scaled SVG. Its
	// priority sorts it ahead of the pdf->svg rule above, which also
	// matches when the output extension is omitted. Only a lookup that
	// omits the output extension reaches this rule.
	if pdfToSvgForHTML != nil {
		r.Register("pdf", "", "html", -1, "pdf2svg", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
			return pdfToSvgForHTML(in, cacheDir, out, builder.CropMargins{}, 1, d), nil
		})
	}

	return r
}
