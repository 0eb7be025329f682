package builder

import (
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Pdf2Svg converts a PDF's first page to SVG using the pdf2svg tool.
type Pdf2Svg struct {
	externalBuilder
}

// NewPdf2Svg returns a Pdf2Svg builder converting in to out. in may be a
// project source file or an earlier pipeline stage's intermediate
// output.
func NewPdf2Svg(in docpath.Path, out docpath.TargetPath, d decider.Decider) *Pdf2Svg {
	p := &Pdf2Svg{}
	p.name = "pdf2svg"
	p.inputs = []docpath.Path{in}
	p.output = out
	p.decider = d
	p.command = "pdf2svg"
	p.argsFn = func() []string {
		return []string{in.Abs(), out.Abs()}
	}
	return p
}
