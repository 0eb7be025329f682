// Package scanner discovers the dependency files a document references
// (stylesheets, images, included fragments) so the build graph knows
// what else must exist before a target can be produced. A Scanner never
// parses the custom markup language itself; it only looks for resource
// references inside text that has already been read.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dissemia/disseminate/internal/docpath"
)

// ErrMissingDependency is returned when a referenced resource cannot be
// located anywhere between the referencing file's directory and the
// project root.
var ErrMissingDependency = errors.New("scanner: dependency not found")

// Scanner discovers the dependencies of a single source file.
type Scanner interface {
	Scan(ctx context.Context, path docpath.SourcePath) ([]docpath.SourcePath, error)
}

// Resolve finds a referenced resource starting from the directory that
// contains the referencing file, walking up toward projectRoot one
// directory at a time, and returns the first match. A leading slash on
// ref is treated as project-root-relative, matching the way an href or
// \includegraphics argument is normally written, but is still resolved
// via the same upward walk so a resource that only exists next to the
// referencing file is still found.
func Resolve(projectRoot string, refDir string, ref string) (docpath.SourcePath, error) {
	ref = strings.TrimPrefix(filepath.ToSlash(ref), "/")
	if ref == "" {
		return docpath.SourcePath{}, fmt.Errorf("%w: empty reference", ErrMissingDependency)
	}

	projectRoot = filepath.Clean(projectRoot)
	dir := filepath.Clean(refDir)

	for {
		candidate := filepath.Join(dir, filepath.FromSlash(ref))
		if _, err := os.Stat(candidate); err == nil {
			rel, err := filepath.Rel(projectRoot, candidate)
			if err != nil {
				return docpath.SourcePath{}, fmt.Errorf("scanner: relativize %q: %w", candidate, err)
			}
			return docpath.NewSourcePath(projectRoot, rel)
		}

		if dir == projectRoot {
			break
		}
		rel, err := filepath.Rel(projectRoot, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return docpath.SourcePath{}, fmt.Errorf("%w: %q (from %q)", ErrMissingDependency, ref, refDir)
}

// hasScheme reports whether ref carries a URL scheme (http://, https://,
// data:, mailto:, ...), in which case it names something outside the
// project tree and must not be resolved as a dependency.
func hasScheme(ref string) bool {
	i := strings.Index(ref, ":")
	if i <= 0 {
		return false
	}
	scheme := ref[:i]
	for _, r := range scheme {
		if !(r == '+' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
