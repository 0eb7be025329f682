package scanner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dissemia/disseminate/internal/docpath"
)

// genericDirective matches line-oriented include directives used by
// arbitrary text formats: "@include path" or C-preprocessor-style
// #include "path".
var genericDirective = regexp.MustCompile(`^\s*(?:@include\s+(\S+)|#include\s+"([^"]+)")\s*$`)

// GenericScanner finds dependencies declared one per line as
// "@include path" or `#include "path"`, for text formats that have
// neither HTML links nor LaTeX commands.
type GenericScanner struct{}

// NewGenericScanner returns a GenericScanner.
func NewGenericScanner() *GenericScanner { return &GenericScanner{} }

// Scan implements Scanner.
func (s *GenericScanner) Scan(ctx context.Context, path docpath.SourcePath) ([]docpath.SourcePath, error) {
	f, err := os.Open(path.Abs())
	if err != nil {
		return nil, fmt.Errorf("generic scanner: open %s: %w", path, err)
	}
	defer f.Close()

	refDir := filepath.Dir(path.Abs())
	var deps []docpath.SourcePath

	scan := bufio.NewScanner(f)
	for scan.Scan() {
		m := genericDirective.FindStringSubmatch(scan.Text())
		if m == nil {
			continue
		}
		ref := m[1]
		if ref == "" {
			ref = m[2]
		}
		dep, err := Resolve(path.ProjectRoot, refDir, ref)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("generic scanner: read %s: %w", path, err)
	}
	return deps, nil
}
