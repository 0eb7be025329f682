package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html"

	"github.com/dissemia/disseminate/internal/docpath"
)

// HTMLScanner finds stylesheet dependencies declared with
// <link rel="stylesheet" href="...">. A href carrying a URL scheme
// (https://, data:, ...) is skipped: it names something outside the
// project tree.
type HTMLScanner struct{}

// NewHTMLScanner returns an HTMLScanner.
func NewHTMLScanner() *HTMLScanner { return &HTMLScanner{} }

// Scan implements Scanner.
func (s *HTMLScanner) Scan(ctx context.Context, path docpath.SourcePath) ([]docpath.SourcePath, error) {
	f, err := os.Open(path.Abs())
	if err != nil {
		return nil, fmt.Errorf("html scanner: open %s: %w", path, err)
	}
	defer f.Close()

	refs, err := ScanHTMLLinks(f)
	if err != nil {
		return nil, err
	}

	refDir := filepath.Dir(path.Abs())
	deps := make([]docpath.SourcePath, 0, len(refs))
	for _, ref := range refs {
		dep, err := Resolve(path.ProjectRoot, refDir, ref)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// ScanHTMLLinks extracts the href values of every
// <link rel="stylesheet" href="..."> tag in the given HTML, skipping any
// href that carries a URL scheme.
func ScanHTMLLinks(r readerLike) ([]string, error) {
	var refs []string
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && err.Error() != "EOF" {
				return nil, fmt.Errorf("html scanner: tokenize: %w", err)
			}
			return refs, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "link" {
				continue
			}

			var rel, href string
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "rel":
					rel = string(val)
				case "href":
					href = string(val)
				}
			}

			if rel == "stylesheet" && href != "" && !hasScheme(href) {
				refs = append(refs, href)
			}
		}
	}
}

// readerLike is the minimal surface html.NewTokenizer needs; kept as an
// interface so ScanHTMLLinks is testable against a strings.Reader
// without pulling in *os.File.
type readerLike interface {
	Read(p []byte) (int, error)
}
