package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dissemia/disseminate/internal/docpath"
)

// MarkdownScanner finds image and link dependencies in a Markdown
// fragment by walking goldmark's parsed AST, rather than regexp-matching
// Markdown syntax by hand. It parses already-resolved body text for
// link discovery; it is not a replacement for the engine's own markup
// tokenizer.
type MarkdownScanner struct {
	md goldmark.Markdown
}

// NewMarkdownScanner returns a MarkdownScanner with goldmark's default
// parser configuration.
func NewMarkdownScanner() *MarkdownScanner {
	return &MarkdownScanner{md: goldmark.New()}
}

// Scan implements Scanner.
func (s *MarkdownScanner) Scan(ctx context.Context, path docpath.SourcePath) ([]docpath.SourcePath, error) {
	source, err := os.ReadFile(path.Abs())
	if err != nil {
		return nil, fmt.Errorf("markdown scanner: read %s: %w", path, err)
	}

	reader := text.NewReader(source)
	doc := s.md.Parser().Parse(reader)

	refDir := filepath.Dir(path.Abs())
	var deps []docpath.SourcePath
	var walkErr error

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || walkErr != nil {
			return ast.WalkContinue, nil
		}

		var dest string
		switch v := n.(type) {
		case *ast.Image:
			dest = string(v.Destination)
		case *ast.Link:
			dest = string(v.Destination)
		default:
			return ast.WalkContinue, nil
		}

		if dest == "" || hasScheme(dest) {
			return ast.WalkContinue, nil
		}

		dep, err := Resolve(path.ProjectRoot, refDir, dest)
		if err != nil {
			walkErr = err
			return ast.WalkStop, nil
		}
		deps = append(deps, dep)
		return ast.WalkContinue, nil
	})

	if walkErr != nil {
		return nil, walkErr
	}
	return deps, nil
}
