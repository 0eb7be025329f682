package builder

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Epub packages a rendered XHTML document and its media files into a
// single EPUB container. An EPUB is an OCF container, which is itself a
// zip archive with a mandatory uncompressed "mimetype" entry stored
// first, a META-INF/container.xml pointer, and an OPF manifest/spine.
// There is no third-party EPUB-authoring library in play here; the
// format is a zip file by definition, so archive/zip is the tool for
// the job rather than a fallback from one.
type Epub struct {
	base
	content docpath.Path
	media   []docpath.Path
	title   string
}

// NewEpub returns an Epub builder packaging content (a rendered XHTML
// file, usually a cache intermediate rather than a project source file)
// together with media (the target's already-converted media outputs)
// into out.
func NewEpub(content docpath.Path, media []docpath.Path, title string, out docpath.TargetPath, d decider.Decider) *Epub {
	e := &Epub{content: content, media: media, title: title}
	e.name = "epub_package"
	e.inputs = append([]docpath.Path{content}, media...)
	e.output = out
	e.args = []decider.Arg{decider.Arg("title=" + title)}
	e.decider = d
	return e
}

// Prepare implements Builder.
func (e *Epub) Prepare(ctx context.Context) error {
	return e.prepare(ctx)
}

// Step implements Builder.
func (e *Epub) Step(ctx context.Context) (Status, error) {
	if e.status.Done() {
		return e.status, nil
	}
	if e.status != StatusReady {
		return e.fail(fmt.Errorf("epub_package: not ready"))
	}

	if err := e.ensureOutputDir(); err != nil {
		return e.fail(err)
	}

	e.status = StatusBuilding
	if err := e.write(); err != nil {
		return e.fail(fmt.Errorf("epub_package: %w", err))
	}

	return e.finish(ctx)
}

func (e *Epub) write() error {
	f, err := os.Create(e.output.Abs())
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := mw.Write([]byte("application/epub+zip")); err != nil {
		return err
	}

	if err := writeZipEntry(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		return err
	}

	contentName := filepath.Base(e.content.Abs())
	manifest, err := buildManifestItems(contentName, e.media)
	if err != nil {
		return err
	}
	opf := buildOPF(e.title, contentName, manifest)
	if err := writeZipEntry(zw, "OEBPS/content.opf", []byte(opf)); err != nil {
		return err
	}

	if err := copyIntoZip(zw, "OEBPS/"+contentName, e.content.Abs()); err != nil {
		return err
	}
	for _, m := range e.media {
		if err := copyIntoZip(zw, "OEBPS/media/"+filepath.Base(m.Abs()), m.Abs()); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyIntoZip(zw *zip.Writer, name, srcPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return writeZipEntry(zw, name, data)
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

type manifestItem struct {
	id, href, mediaType string
}

func buildManifestItems(contentName string, media []docpath.Path) ([]manifestItem, error) {
	items := []manifestItem{{id: "content", href: contentName, mediaType: "application/xhtml+xml"}}
	for i, m := range media {
		items = append(items, manifestItem{
			id:        fmt.Sprintf("media-%d", i),
			href:      "media/" + filepath.Base(m.Abs()),
			mediaType: mediaTypeFor(m.Abs()),
		})
	}
	return items, nil
}

func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".gif":
		return "image/gif"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}

func buildOPF(title, contentName string, items []manifestItem) string {
	var manifest, spine strings.Builder
	for _, it := range items {
		fmt.Fprintf(&manifest, `    <item id="%s" href="%s" media-type="%s"/>`+"\n", it.id, it.href, it.mediaType)
	}
	fmt.Fprintf(&spine, `    <itemref idref="content"/>`+"\n")
	_ = contentName

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="bookid">urn:uuid:%s</dc:identifier>
    <dc:title>%s</dc:title>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>
`, opfIdentifierSeed(title), title, manifest.String(), spine.String())
}

// opfIdentifierSeed derives a stable identifier from the title instead
// of a random UUID, so two builds of the same document produce
// byte-identical OPF manifests and therefore identical fingerprints.
func opfIdentifierSeed(title string) string {
	if title == "" {
		title = "untitled"
	}
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}
