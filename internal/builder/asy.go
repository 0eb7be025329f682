package builder

import (
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Asy2Pdf renders an Asymptote source file to PDF using the asy tool.
type Asy2Pdf struct {
	externalBuilder
}

// NewAsy2Pdf returns an Asy2Pdf builder rendering in to out.
func NewAsy2Pdf(in docpath.Path, out docpath.TargetPath, d decider.Decider) *Asy2Pdf {
	a := &Asy2Pdf{}
	a.name = "asy2pdf"
	a.inputs = []docpath.Path{in}
	a.output = out
	a.decider = d
	a.command = "asy"
	a.argsFn = func() []string {
		return []string{"-f", "pdf", "-o", out.Abs(), in.Abs()}
	}
	return a
}

// Asy2Svg renders an Asymptote source file to SVG using the asy tool.
type Asy2Svg struct {
	externalBuilder
}

// NewAsy2Svg returns an Asy2Svg builder rendering in to out.
func NewAsy2Svg(in docpath.Path, out docpath.TargetPath, d decider.Decider) *Asy2Svg {
	a := &Asy2Svg{}
	a.name = "asy2svg"
	a.inputs = []docpath.Path{in}
	a.output = out
	a.decider = d
	a.command = "asy"
	a.argsFn = func() []string {
		return []string{"-f", "svg", "-o", out.Abs(), in.Abs()}
	}
	return a
}
