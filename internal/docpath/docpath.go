// Package docpath implements the path model: source paths rooted in a
// project tree and target paths rooted in a build output tree. Both carry
// their root alongside the relative subpath so a builder can recover
// either the absolute location or the project-relative identity of a
// file without restating the root at every call site.
package docpath

import (
	"fmt"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/text/unicode/norm"
)

// Path is satisfied by SourcePath and TargetPath.
type Path interface {
	// Abs returns the absolute filesystem path.
	Abs() string
	// String returns the same value as Abs.
	String() string
}

// normalize puts a subpath through Unicode NFC normalization and cleans
// it, so two visually identical paths from different filesystems hash
// and compare the same way.
func normalize(subPath string) string {
	return filepath.Clean(norm.NFC.String(subPath))
}

func ensureNoEscape(root, subPath string) (string, error) {
	clean := normalize(subPath)
	joined, err := securejoin.SecureJoin(root, clean)
	if err != nil {
		return "", fmt.Errorf("docpath: join %q under %q: %w", subPath, root, err)
	}
	rel, err := filepath.Rel(root, joined)
	if err != nil {
		return "", fmt.Errorf("docpath: relativize %q: %w", joined, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("docpath: %q escapes root %q", subPath, root)
	}
	if rel == "." {
		rel = ""
	}
	return rel, nil
}

// ValidateRootsDisjoint checks that a project root and a target root do
// not nest inside one another, so a build can never write output into
// its own source tree.
func ValidateRootsDisjoint(projectRoot, targetRoot string) error {
	projectRoot = filepath.Clean(projectRoot)
	targetRoot = filepath.Clean(targetRoot)

	if rel, err := filepath.Rel(projectRoot, targetRoot); err == nil {
		if rel == "." || (!strings.HasPrefix(rel, "..") ) {
			return fmt.Errorf("docpath: target root %q is nested under project root %q", targetRoot, projectRoot)
		}
	}
	if rel, err := filepath.Rel(targetRoot, projectRoot); err == nil {
		if rel == "." || (!strings.HasPrefix(rel, "..")) {
			return fmt.Errorf("docpath: project root %q is nested under target root %q", projectRoot, targetRoot)
		}
	}
	return nil
}

// SourcePath identifies a file inside a project's source tree.
type SourcePath struct {
	ProjectRoot string
	SubPath     string
}

// NewSourcePath builds a SourcePath, rejecting any subpath that would
// resolve outside projectRoot.
func NewSourcePath(projectRoot, subPath string) (SourcePath, error) {
	rel, err := ensureNoEscape(projectRoot, subPath)
	if err != nil {
		return SourcePath{}, err
	}
	return SourcePath{ProjectRoot: filepath.Clean(projectRoot), SubPath: rel}, nil
}

// Abs returns the absolute filesystem path.
func (p SourcePath) Abs() string {
	return filepath.Join(p.ProjectRoot, p.SubPath)
}

func (p SourcePath) String() string { return p.Abs() }

// Ext returns the file extension, without the leading dot.
func (p SourcePath) Ext() string {
	return strings.TrimPrefix(filepath.Ext(p.SubPath), ".")
}

// Dir returns the SourcePath of the containing directory.
func (p SourcePath) Dir() SourcePath {
	return SourcePath{ProjectRoot: p.ProjectRoot, SubPath: filepath.Dir(p.SubPath)}
}

// Join appends extra path segments to the subpath.
func (p SourcePath) Join(extra ...string) (SourcePath, error) {
	return NewSourcePath(p.ProjectRoot, filepath.Join(append([]string{p.SubPath}, extra...)...))
}

// WithSuffix returns a copy of p whose subpath extension is replaced by
// ext (without a leading dot).
func (p SourcePath) WithSuffix(ext string) SourcePath {
	base := strings.TrimSuffix(p.SubPath, filepath.Ext(p.SubPath))
	return SourcePath{ProjectRoot: p.ProjectRoot, SubPath: base + "." + strings.TrimPrefix(ext, ".")}
}

// TargetPath identifies a file inside a build output tree, under a named
// target kind (html, tex, pdf, xhtml, epub).
type TargetPath struct {
	TargetRoot string
	TargetKind string
	SubPath    string
}

// NewTargetPath builds a TargetPath, rejecting any subpath that would
// resolve outside targetRoot/targetKind.
func NewTargetPath(targetRoot, targetKind, subPath string) (TargetPath, error) {
	targetKind = strings.Trim(targetKind, ".")
	kindRoot := filepath.Join(filepath.Clean(targetRoot), targetKind)
	rel, err := ensureNoEscape(kindRoot, subPath)
	if err != nil {
		return TargetPath{}, err
	}
	return TargetPath{TargetRoot: filepath.Clean(targetRoot), TargetKind: targetKind, SubPath: rel}, nil
}

// Abs returns the absolute filesystem path.
func (p TargetPath) Abs() string {
	return filepath.Join(p.TargetRoot, p.TargetKind, p.SubPath)
}

func (p TargetPath) String() string { return p.Abs() }

// Ext returns the file extension, without the leading dot.
func (p TargetPath) Ext() string {
	return strings.TrimPrefix(filepath.Ext(p.SubPath), ".")
}

// Join appends extra path segments to the subpath.
func (p TargetPath) Join(extra ...string) (TargetPath, error) {
	return NewTargetPath(p.TargetRoot, p.TargetKind, filepath.Join(append([]string{p.SubPath}, extra...)...))
}

// WithSuffix returns a copy of p whose subpath extension is replaced by
// ext (without a leading dot).
func (p TargetPath) WithSuffix(ext string) TargetPath {
	base := strings.TrimSuffix(p.SubPath, filepath.Ext(p.SubPath))
	return TargetPath{TargetRoot: p.TargetRoot, TargetKind: p.TargetKind, SubPath: base + "." + strings.TrimPrefix(ext, ".")}
}

// URL renders a web-facing URL for the target path using pattern, a
// format string with {target_root}, {target}, and {subpath}
// placeholders. Default pattern is "/{target}/{subpath}". Trailing
// slashes are trimmed (a leading slash is kept) and any accidental
// double slash is collapsed, except the "://" of a scheme.
func (p TargetPath) URL(pattern string) string {
	if pattern == "" {
		pattern = "/{target}/{subpath}"
	}
	r := strings.NewReplacer(
		"{target_root}", p.TargetRoot,
		"{target}", p.TargetKind,
		"{subpath}", filepath.ToSlash(p.SubPath),
	)
	url := r.Replace(pattern)
	url = strings.TrimRight(url, "/")
	url = collapseDoubleSlash(url)
	return url
}

// collapseDoubleSlash collapses "//" to "/" without touching a "://"
// scheme separator, mirroring the original (?<!:)// regex.
func collapseDoubleSlash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '/' && i+1 < len(s) && s[i+1] == '/' && (i == 0 || s[i-1] != ':') {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
