package builder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Copy copies a single file byte-for-byte. If the resolved input and
// output paths are identical, the copy is a no-op — the file is already
// where it needs to be.
type Copy struct {
	base
	in docpath.Path
}

// NewCopy returns a Copy builder copying in to out. in may be a project
// source file or an earlier pipeline stage's intermediate output.
func NewCopy(in docpath.Path, out docpath.TargetPath, d decider.Decider) *Copy {
	c := &Copy{in: in}
	c.name = "copy"
	c.inputs = []docpath.Path{in}
	c.output = out
	c.decider = d
	return c
}

// Prepare implements Builder.
func (c *Copy) Prepare(ctx context.Context) error {
	return c.prepare(ctx)
}

// Step implements Builder.
func (c *Copy) Step(ctx context.Context) (Status, error) {
	if c.status.Done() {
		return c.status, nil
	}
	if c.status != StatusReady {
		return c.fail(fmt.Errorf("copy: not ready"))
	}

	if c.in.Abs() == c.output.Abs() {
		return c.finish(ctx)
	}

	if err := c.ensureOutputDir(); err != nil {
		return c.fail(err)
	}

	c.status = StatusBuilding
	if err := copyFile(c.in.Abs(), c.output.Abs()); err != nil {
		return c.fail(fmt.Errorf("copy: %w", err))
	}

	return c.finish(ctx)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
