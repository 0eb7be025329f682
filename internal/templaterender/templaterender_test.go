package templaterender

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissemia/disseminate/internal/docpath"
)

func TestRenderSubstitutesData(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "tmpl.html.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("<title>{{.Title}}</title>"), 0o644))

	sp, err := docpath.NewSourcePath(dir, "tmpl.html.tmpl")
	require.NoError(t, err)

	out, err := Renderer{}.Render(context.Background(), sp, map[string]any{"Title": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "<title>Hello</title>", string(out))
}

func TestRenderFailsOnMissingKey(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "tmpl.html.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("<title>{{.Missing}}</title>"), 0o644))

	sp, err := docpath.NewSourcePath(dir, "tmpl.html.tmpl")
	require.NoError(t, err)

	_, err = Renderer{}.Render(context.Background(), sp, map[string]any{})
	assert.Error(t, err)
}

func TestRenderFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	sp, err := docpath.NewSourcePath(dir, "does-not-exist.tmpl")
	require.NoError(t, err)

	_, err = Renderer{}.Render(context.Background(), sp, nil)
	assert.Error(t, err)
}
