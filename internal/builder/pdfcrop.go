package builder

import (
	"fmt"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// CropMargins are the four pdfcrop margins in points: left, top, right,
// bottom. A single uniform value maps to all four, matching the
// original crop/crop_percentage parameter shapes.
type CropMargins struct {
	Left, Top, Right, Bottom int
}

// UniformCrop returns margins with the same value on all four sides.
func UniformCrop(points int) CropMargins {
	return CropMargins{Left: points, Top: points, Right: points, Bottom: points}
}

// Pdfcrop crops a PDF's bounding box using the pdfcrop tool.
type Pdfcrop struct {
	externalBuilder
	margins CropMargins
}

// NewPdfcrop returns a Pdfcrop builder cropping in to out. in may be a
// project source file or an earlier pipeline stage's intermediate
// output, so it is accepted as the generic docpath.Path.
func NewPdfcrop(in docpath.Path, out docpath.TargetPath, margins CropMargins, d decider.Decider) *Pdfcrop {
	p := &Pdfcrop{margins: margins}
	p.name = "pdfcrop"
	p.inputs = []docpath.Path{in}
	p.output = out
	p.args = []decider.Arg{decider.Arg(fmt.Sprintf("margins=%d,%d,%d,%d", margins.Left, margins.Top, margins.Right, margins.Bottom))}
	p.decider = d
	p.command = "pdfcrop"
	p.argsFn = func() []string {
		return []string{
			"--margins", fmt.Sprintf("%d %d %d %d", margins.Left, margins.Top, margins.Right, margins.Bottom),
			in.Abs(), out.Abs(),
		}
	}
	return p
}
