package builder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/dissemia/disseminate/internal/cachestore"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// SaveTempFile writes in-memory content under cache_root. It has no
// file inputs, only the content given at construction time, so it
// reaches Ready unconditionally. The write goes through a
// cachestore.ObjectStore keyed by content hash: a repeat Put of an
// identical blob only updates that object's metadata, giving cache_root
// a single copy per fingerprint regardless of how many builds ask to
// save it.
type SaveTempFile struct {
	base
	content []byte
	store   cachestore.ObjectStore
}

// NewSaveTempFile returns a SaveTempFile builder writing content to out
// via store, the cache_root object store that dedupes by content hash.
func NewSaveTempFile(content []byte, out docpath.TargetPath, store cachestore.ObjectStore) *SaveTempFile {
	s := &SaveTempFile{content: content, store: store}
	s.name = "save_temp_file"
	s.output = out
	return s
}

// ContentFileName derives a content-addressed file name of the form
// "<prefix>_<hash12>.<ext>" for content saved without an explicit
// output path.
func ContentFileName(prefix string, content []byte, ext string) string {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])[:12]
	ext = strings.TrimPrefix(ext, ".")
	if prefix == "" {
		prefix = "temp"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, hash, ext)
}

// Prepare implements Builder.
func (s *SaveTempFile) Prepare(ctx context.Context) error {
	s.status = StatusReady
	return nil
}

// Step implements Builder.
func (s *SaveTempFile) Step(ctx context.Context) (Status, error) {
	if s.status.Done() {
		return s.status, nil
	}
	if s.status != StatusReady {
		return s.fail(fmt.Errorf("save_temp_file: not ready"))
	}

	if err := s.ensureOutputDir(); err != nil {
		return s.fail(err)
	}

	s.status = StatusBuilding
	if _, err := s.store.Put(ctx, &cachestore.Object{Type: cachestore.ObjectTypeTempFile, Data: s.content}); err != nil {
		return s.fail(fmt.Errorf("save_temp_file: store %s: %w", s.output, err))
	}
	if _, err := os.Stat(s.output.Abs()); err != nil {
		if err := os.WriteFile(s.output.Abs(), s.content, 0o600); err != nil {
			return s.fail(fmt.Errorf("save_temp_file: write %s: %w", s.output, err))
		}
	}
	return s.finish(ctx)
}
