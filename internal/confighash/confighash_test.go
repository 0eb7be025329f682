package confighash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsOrderSensitive(t *testing.T) {
	a, err := Hash(TextItem("a"), TextItem("bc"))
	require.NoError(t, err)
	b, err := Hash(TextItem("ab"), TextItem("c"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashIsDeterministic(t *testing.T) {
	a, err := Hash(TextItem("latexmk"), BytesItem([]byte("--pdf")))
	require.NoError(t, err)
	b, err := Hash(TextItem("latexmk"), BytesItem([]byte("--pdf")))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.String(), 32)
}

func TestHashPathItemReadsFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro.md")
	require.NoError(t, os.WriteFile(path, []byte("# hello"), 0o600))

	a, err := Hash(PathItem{Path: path})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("# hello!"), 0o600))
	b, err := Hash(PathItem{Path: path})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPathItemStripsPDFVariance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	pdf1 := "%PDF-1.5\n/CreationDate (D:20240101000000)\nbody\n"
	pdf2 := "%PDF-1.5\n/CreationDate (D:20250601120000)\nbody\n"

	require.NoError(t, os.WriteFile(path, []byte(pdf1), 0o600))
	a, err := Hash(PathItem{Path: path})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(pdf2), 0o600))
	b, err := Hash(PathItem{Path: path})
	require.NoError(t, err)

	assert.Equal(t, a, b, "only the CreationDate line differs, digest should match")
}

func TestHashPathItemStripsSVGVariance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.svg")

	svg1 := "<?xml version=\"1.0\"?>\n<svg><rect/></svg>"
	svg2 := "<?xml version=\"1.1\" standalone=\"no\"?>\n<svg><rect/></svg>"

	require.NoError(t, os.WriteFile(path, []byte(svg1), 0o600))
	a, err := Hash(PathItem{Path: path})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(svg2), 0o600))
	b, err := Hash(PathItem{Path: path})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDigestZeroValue(t *testing.T) {
	var d Digest
	assert.True(t, d.IsZero())
}
