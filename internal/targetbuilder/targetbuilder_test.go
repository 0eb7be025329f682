package targetbuilder

import (
	"archive/zip"
	"context"
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

func runToDone(t *testing.T, ctx context.Context, b builder.Builder) builder.Status {
	t.Helper()
	for i := 0; i < 100; i++ {
		status, err := b.Step(ctx)
		require.NoError(t, err)
		if status.Done() {
			return status
		}
	}
	t.Fatal("builder never reached a terminal state")
	return builder.StatusFailed
}

func TestNewHTMLComposesMediaThenRenderAndPublishes(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	template, err := docpath.NewSourcePath(root, "page.html.tmpl")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(template.Abs(), []byte("<html/>"), 0o600))

	out, err := docpath.NewTargetPath(root, "html", "page.html")
	require.NoError(t, err)
	cacheDir, err := docpath.NewTargetPath(root, "", "cache")
	require.NoError(t, err)

	reg := registry.New()
	tb := NewHTML(template, nil, out, stubRenderer{out: []byte("<html>rendered</html>")}, reg, cacheDir, decider.NewExistenceDecider())

	require.NoError(t, tb.Prepare(ctx))
	status := runToDone(t, ctx, tb)
	assert.Equal(t, builder.StatusDone, status)

	data, err := os.ReadFile(out.Abs())
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", string(data))
	assert.False(t, tb.UseCache())
	assert.True(t, tb.UseMedia())
}

func TestTargetBuilderAddBuildMustHappenBeforePrepare(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	template, err := docpath.NewSourcePath(root, "page.html.tmpl")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(template.Abs(), []byte("<html/>"), 0o600))

	img, err := docpath.NewSourcePath(root, "figure.svg")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(img.Abs(), []byte("<svg/>"), 0o600))

	out, err := docpath.NewTargetPath(root, "html", "page.html")
	require.NoError(t, err)
	imgOut, err := docpath.NewTargetPath(root, "html", "figure.svg")
	require.NoError(t, err)
	cacheDir, err := docpath.NewTargetPath(root, "", "cache")
	require.NoError(t, err)

	reg := registry.New()
	reg.Register("svg", "svg", "", 0, "", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewCopy(in, out, d), nil
	})

	tb := NewHTML(template, nil, out, stubRenderer{out: []byte("<html/>")}, reg, cacheDir, decider.NewExistenceDecider())

	_, err = tb.AddBuild(ctx, img, imgOut)
	require.NoError(t, err)

	require.NoError(t, tb.Prepare(ctx))
	status := runToDone(t, ctx, tb)
	require.Equal(t, builder.StatusDone, status)

	data, err := os.ReadFile(imgOut.Abs())
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestNewPDFResolvesAssemblyFromRegistryAndChainsItLast(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	template, err := docpath.NewSourcePath(root, "doc.tex.tmpl")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(template.Abs(), []byte("\\documentclass{article}"), 0o600))

	texIntermediate, err := docpath.NewTargetPath(root, "", "cache/doc.tex")
	require.NoError(t, err)
	pdfOut, err := docpath.NewTargetPath(root, "pdf", "doc.pdf")
	require.NoError(t, err)
	cacheDir, err := docpath.NewTargetPath(root, "", "cache")
	require.NoError(t, err)

	reg := registry.New()
	// A stand-in compiler that just copies the rendered .tex bytes to the
	// .pdf path, so the test exercises wiring without needing a real
	// LaTeX toolchain.
	reg.Register("tex", "pdf", "", 0, "", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewCopy(in, out, d), nil
	})

	tb, err := NewPDF(template, nil, texIntermediate, pdfOut, stubRenderer{out: []byte("rendered-tex")}, reg, cacheDir, decider.NewExistenceDecider())
	require.NoError(t, err)
	require.NotNil(t, tb.Assembly())
	assert.Equal(t, pdfOut.Abs(), tb.Assembly().OutFilePath().Abs())
	assert.Equal(t, pdfOut.Abs(), tb.OutFilePath().Abs())

	require.NoError(t, tb.Prepare(ctx))
	status := runToDone(t, ctx, tb)
	require.Equal(t, builder.StatusDone, status)

	data, err := os.ReadFile(pdfOut.Abs())
	require.NoError(t, err)
	assert.Equal(t, "rendered-tex", string(data))
}

func TestNewPDFReturnsErrorWhenNoCompilerRegistered(t *testing.T) {
	root := t.TempDir()
	template, err := docpath.NewSourcePath(root, "doc.tex.tmpl")
	require.NoError(t, err)
	texIntermediate, err := docpath.NewTargetPath(root, "", "cache/doc.tex")
	require.NoError(t, err)
	pdfOut, err := docpath.NewTargetPath(root, "pdf", "doc.pdf")
	require.NoError(t, err)
	cacheDir, err := docpath.NewTargetPath(root, "", "cache")
	require.NoError(t, err)

	_, err = NewPDF(template, nil, texIntermediate, pdfOut, nil, registry.New(), cacheDir, decider.NewExistenceDecider())
	require.Error(t, err)
}

func TestNewEPUBPackagesRenderedXhtmlAndMedia(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	template, err := docpath.NewSourcePath(root, "book.xhtml.tmpl")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(template.Abs(), []byte("<html/>"), 0o600))

	xhtmlIntermediate, err := docpath.NewTargetPath(root, "", "cache/book.xhtml")
	require.NoError(t, err)
	epubOut, err := docpath.NewTargetPath(root, "epub", "book.epub")
	require.NoError(t, err)
	cacheDir, err := docpath.NewTargetPath(root, "", "cache")
	require.NoError(t, err)

	mediaOut, err := docpath.NewTargetPath(root, "", "cache/cover.png")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cache"), 0o750))
	require.NoError(t, os.WriteFile(mediaOut.Abs(), []byte("fakepng"), 0o600))

	reg := registry.New()
	tb := NewEPUB(template, nil, xhtmlIntermediate, epubOut, "My Book", []docpath.Path{mediaOut}, stubRenderer{out: []byte("<html>book</html>")}, reg, cacheDir, decider.NewExistenceDecider())

	require.NoError(t, tb.Prepare(ctx))
	status := runToDone(t, ctx, tb)
	require.Equal(t, builder.StatusDone, status)

	zr, err := zip.OpenReader(epubOut.Abs())
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["OEBPS/content.opf"])
	assert.True(t, names["OEBPS/media/cover.png"])
}
