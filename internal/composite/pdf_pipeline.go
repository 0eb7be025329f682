package composite

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// NewPdfToSvgPipeline returns the crop -> pdf2svg -> scale Sequential
// pipeline used to turn a PDF figure into a web-ready SVG: Pdfcrop trims
// the bounding box, Pdf2Svg renders the cropped page, ScaleSvg applies
// the final display scale. Intermediates are named from the input's
// stem and written under cacheDir rather than the final target tree.
func NewPdfToSvgPipeline(in docpath.Path, cacheDir, out docpath.TargetPath, margins builder.CropMargins, scale float64, d decider.Decider) *Sequential {
	stem := stemOf(in)

	cropOut, err := cacheDir.Join(stem + "_crop.pdf")
	if err != nil {
		cropOut = cacheDir
	}
	svgOut, err := cacheDir.Join(stem + "_raw.svg")
	if err != nil {
		svgOut = cacheDir
	}

	crop := builder.NewPdfcrop(in, cropOut, margins, d)
	toSvg := builder.NewPdf2Svg(cropOut, svgOut, d)
	scaleBuilder := builder.NewScaleSvg(svgOut, out, scale, d)

	args := []decider.Arg{
		decider.Arg(fmt.Sprintf("margins=%d,%d,%d,%d", margins.Left, margins.Top, margins.Right, margins.Bottom)),
		decider.Arg("scale=" + strconv.FormatFloat(scale, 'f', -1, 64)),
	}

	return NewSequential("pdf2svg_crop_scale", []docpath.Path{in}, out, args, d, crop, toSvg, scaleBuilder)
}

func stemOf(p docpath.Path) string {
	base := filepath.Base(p.Abs())
	return strings.TrimSuffix(base, filepath.Ext(base))
}
