package environment

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
	"github.com/dissemia/disseminate/internal/registry"
)

type stubRenderer struct{ out []byte }

func (s stubRenderer) Render(ctx context.Context, template docpath.SourcePath, data map[string]any) ([]byte, error) {
	return s.out, nil
}

func memStore(root string) func(string) (decider.Store, error) {
	return func(cacheRoot string) (decider.Store, error) {
		return decider.NewMemStore(), nil
	}
}

func writeProject(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
}

func TestCreateEnvironmentsSkipsIncludedDocuments(t *testing.T) {
	root := t.TempDir()
	targetRoot := t.TempDir()

	writeProject(t, root, map[string]string{
		"root.dm": "---\ntargets: html\ninclude:\n  - sub.dm\n---\nHello",
		"sub.dm":  "A fragment, not a root document.",
		"templates/default/template.html.tmpl": "<html/>",
	})

	envs, err := CreateEnvironments(root, targetRoot, registry.New(), stubRenderer{out: []byte("<html/>")}, memStore(root), nil)
	require.NoError(t, err)
	require.Len(t, envs, 1)

	assert.Equal(t, "root.dm", filepath.Base(envs[0].RootDocument.Abs()))
	assert.True(t, envs[0].Context.Targets["html"])

	_, ok := envs[0].Context.Builder("html")
	assert.True(t, ok)
}

func TestCreateEnvironmentsRejectsTargetRootInsideProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, map[string]string{"root.dm": "---\ntargets: html\n---\nHello"})

	_, err := CreateEnvironments(root, filepath.Join(root, "out"), registry.New(), stubRenderer{}, memStore(root), nil)
	assert.Error(t, err)
}

func TestBuildRendersHTMLTargetAndCommitsDecision(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	targetRoot := t.TempDir()

	writeProject(t, root, map[string]string{
		"root.dm": "---\ntargets: html\n---\nHello",
		"templates/default/template.html.tmpl": "<html/>",
	})

	envs, err := CreateEnvironments(root, targetRoot, registry.New(), stubRenderer{out: []byte("<html>ok</html>")}, memStore(root), nil)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	env := envs[0]

	needed, err := env.BuildNeeded(ctx)
	require.NoError(t, err)
	assert.True(t, needed)

	status, err := env.Build(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, builder.StatusDone, status)

	data, err := os.ReadFile(filepath.Join(targetRoot, "html", "root.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(data))

	needed, err = env.BuildNeeded(ctx)
	require.NoError(t, err)
	assert.False(t, needed, "decision should be committed after a successful build")
}

func TestBuildAggregatesMultipleTargets(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	targetRoot := t.TempDir()

	writeProject(t, root, map[string]string{
		"root.dm": "---\ntargets: html, tex\n---\nHello",
		"templates/default/template.html.tmpl": "<html/>",
		"templates/default/template.tex.tmpl":  "\\documentclass{article}",
	})

	envs, err := CreateEnvironments(root, targetRoot, registry.New(), stubRenderer{out: []byte("rendered")}, memStore(root), nil)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	env := envs[0]

	status, err := env.Build(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, builder.StatusDone, status)

	_, err = os.Stat(filepath.Join(targetRoot, "html", "root.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(targetRoot, "tex", "root.tex"))
	require.NoError(t, err)
}

func TestBuildLogsStartAndFinishWhenLoggerIsSet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	targetRoot := t.TempDir()

	writeProject(t, root, map[string]string{
		"root.dm": "---\ntargets: html\n---\nHello",
		"templates/default/template.html.tmpl": "<html/>",
	})

	envs, err := CreateEnvironments(root, targetRoot, registry.New(), stubRenderer{out: []byte("<html/>")}, memStore(root), nil)
	require.NoError(t, err)
	env := envs[0]

	var buf bytes.Buffer
	env.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	_, err = env.Build(ctx, true)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "build started")
	assert.Contains(t, out, "build finished")
	assert.Contains(t, out, "target=html")
}

func TestWatchRefusesDoubleStartAndCloseIsIdempotent(t *testing.T) {
	root := t.TempDir()
	targetRoot := t.TempDir()

	writeProject(t, root, map[string]string{
		"root.dm": "---\ntargets: html\n---\nHello",
		"templates/default/template.html.tmpl": "<html/>",
	})

	envs, err := CreateEnvironments(root, targetRoot, registry.New(), stubRenderer{out: []byte("<html/>")}, memStore(root), nil)
	require.NoError(t, err)
	env := envs[0]

	require.NoError(t, env.Watch())
	assert.Error(t, env.Watch())
	require.NoError(t, env.Close())
	assert.NoError(t, env.Close())
}
