package builder

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

var svgDimAttr = regexp.MustCompile(`(width|height)="([0-9.]+)([a-zA-Z%]*)"`)

// scaleSVG multiplies every width/height attribute's numeric value by
// scale, keeping its unit suffix untouched.
func scaleSVG(data []byte, scale float64) []byte {
	return svgDimAttr.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := svgDimAttr.FindSubmatch(m)
		attr, numStr, unit := string(sub[1]), string(sub[2]), string(sub[3])
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return m
		}
		return []byte(fmt.Sprintf(`%s="%s%s"`, attr, strconv.FormatFloat(num*scale, 'f', -1, 64), unit))
	})
}

// ScaleSvg rewrites an SVG's width/height attributes by a scale factor.
// It is a pure Go transform, not an external tool invocation: SVG
// dimensions are plain text attributes, so there is nothing here an
// external program would do better.
type ScaleSvg struct {
	base
	in    docpath.Path
	scale float64
}

// NewScaleSvg returns a ScaleSvg builder scaling in by factor scale. in
// may be a project source file or an earlier pipeline stage's
// intermediate output.
func NewScaleSvg(in docpath.Path, out docpath.TargetPath, scale float64, d decider.Decider) *ScaleSvg {
	s := &ScaleSvg{in: in, scale: scale}
	s.name = "scalesvg"
	s.inputs = []docpath.Path{in}
	s.output = out
	s.args = []decider.Arg{decider.Arg(fmt.Sprintf("scale=%s", strconv.FormatFloat(scale, 'f', -1, 64)))}
	s.decider = d
	return s
}

// Prepare implements Builder.
func (s *ScaleSvg) Prepare(ctx context.Context) error {
	if s.scale <= 0 {
		return fmt.Errorf("scalesvg: invalid scale %v", s.scale)
	}
	return s.prepare(ctx)
}

// Step implements Builder.
func (s *ScaleSvg) Step(ctx context.Context) (Status, error) {
	if s.status.Done() {
		return s.status, nil
	}
	if s.status != StatusReady {
		return s.fail(fmt.Errorf("scalesvg: not ready"))
	}

	if err := s.ensureOutputDir(); err != nil {
		return s.fail(err)
	}

	s.status = StatusBuilding
	data, err := os.ReadFile(s.in.Abs())
	if err != nil {
		return s.fail(fmt.Errorf("scalesvg: read %s: %w", s.in, err))
	}
	scaled := scaleSVG(data, s.scale)
	if err := os.WriteFile(s.output.Abs(), scaled, 0o600); err != nil {
		return s.fail(fmt.Errorf("scalesvg: write %s: %w", s.output, err))
	}

	return s.finish(ctx)
}
