package builder

import (
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Tif2Png converts a TIFF raster image to PNG using ImageMagick's
// convert tool.
type Tif2Png struct {
	externalBuilder
}

// NewTif2Png returns a Tif2Png builder converting in to out. in may be a
// project source file or an earlier pipeline stage's intermediate
// output.
func NewTif2Png(in docpath.Path, out docpath.TargetPath, d decider.Decider) *Tif2Png {
	p := &Tif2Png{}
	p.name = "tif2png"
	p.inputs = []docpath.Path{in}
	p.output = out
	p.decider = d
	p.command = "convert"
	p.argsFn = func() []string {
		return []string{in.Abs(), out.Abs()}
	}
	return p
}
