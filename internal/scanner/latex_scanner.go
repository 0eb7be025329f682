package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dissemia/disseminate/internal/docpath"
)

// latexCommandRefs matches \includegraphics[...]{path} and \input{path}
// (with or without the optional bracketed argument on includegraphics).
var latexCommandRefs = regexp.MustCompile(`\\(?:includegraphics(?:\[[^\]]*\])?|input)\{([^}]+)\}`)

// LaTeXScanner finds \includegraphics and \input dependencies in a .tex
// source file.
type LaTeXScanner struct{}

// NewLaTeXScanner returns a LaTeXScanner.
func NewLaTeXScanner() *LaTeXScanner { return &LaTeXScanner{} }

// Scan implements Scanner.
func (s *LaTeXScanner) Scan(ctx context.Context, path docpath.SourcePath) ([]docpath.SourcePath, error) {
	data, err := os.ReadFile(path.Abs())
	if err != nil {
		return nil, fmt.Errorf("latex scanner: read %s: %w", path, err)
	}

	refDir := filepath.Dir(path.Abs())
	var deps []docpath.SourcePath
	for _, m := range latexCommandRefs.FindAllSubmatch(data, -1) {
		ref := string(m[1])
		dep, err := Resolve(path.ProjectRoot, refDir, ref)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}
