package builder

import (
	"path/filepath"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Latexmk compiles a .tex file to PDF using latexmk, the preferred
// compiler when available: it reruns (bib)latex as many times as cross
// references need without the caller having to know how many passes
// that is.
type Latexmk struct {
	externalBuilder
}

// NewLatexmk returns a Latexmk builder compiling mainTex (plus any
// scanned dependencies in deps) to out. mainTex may be a project source
// file or a rendered intermediate produced by an earlier pipeline stage.
func NewLatexmk(mainTex docpath.Path, deps []docpath.SourcePath, out docpath.TargetPath, d decider.Decider) *Latexmk {
	l := &Latexmk{}
	l.name = "latexmk"
	l.inputs = append([]docpath.Path{mainTex}, toPathSlice(deps)...)
	l.output = out
	l.decider = d
	l.command = "latexmk"
	l.argsFn = func() []string {
		return []string{
			"-pdf", "-interaction=nonstopmode", "-halt-on-error",
			"-output-directory=" + filepath.Dir(out.Abs()),
			mainTex.Abs(),
		}
	}
	return l
}

// Pdflatex compiles a .tex file to PDF using pdflatex directly, the
// fallback when latexmk isn't installed. It does not perform multiple
// passes on its own.
type Pdflatex struct {
	externalBuilder
}

// NewPdflatex returns a Pdflatex builder compiling mainTex (plus any
// scanned dependencies in deps) to out. mainTex may be a project source
// file or a rendered intermediate produced by an earlier pipeline stage.
func NewPdflatex(mainTex docpath.Path, deps []docpath.SourcePath, out docpath.TargetPath, d decider.Decider) *Pdflatex {
	p := &Pdflatex{}
	p.name = "pdflatex"
	p.inputs = append([]docpath.Path{mainTex}, toPathSlice(deps)...)
	p.output = out
	p.decider = d
	p.command = "pdflatex"
	p.argsFn = func() []string {
		return []string{
			"-interaction=nonstopmode", "-halt-on-error",
			"-output-directory=" + filepath.Dir(out.Abs()),
			mainTex.Abs(),
		}
	}
	return p
}

func toPathSlice(sources []docpath.SourcePath) []docpath.Path {
	out := make([]docpath.Path, len(sources))
	for i, s := range sources {
		out[i] = s
	}
	return out
}
