package builder

import (
	"context"
	"fmt"
)

// externalBuilder is the shared implementation behind the thin,
// tool-specific atomic builders (Pdfcrop, Pdf2Svg, Tif2Png, Asy2Pdf,
// Asy2Svg, Latexmk, Pdflatex): one external command, one input set, one
// output file.
type externalBuilder struct {
	base
	command string
	argsFn  func() []string
}

// Prepare implements Builder.
func (e *externalBuilder) Prepare(ctx context.Context) error {
	return e.prepare(ctx)
}

// Step implements Builder.
func (e *externalBuilder) Step(ctx context.Context) (Status, error) {
	if e.status.Done() {
		return e.status, nil
	}
	if e.status != StatusReady {
		return e.fail(fmt.Errorf("%s: not ready", e.name))
	}
	if !(ExternalTool{Command: e.command}).Available() {
		return e.fail(toolUnavailable(e.name, e.command))
	}

	if err := e.ensureOutputDir(); err != nil {
		return e.fail(err)
	}

	e.status = StatusBuilding
	tool := ExternalTool{Command: e.command, Args: e.argsFn()}
	if err := tool.Run(ctx); err != nil {
		return e.fail(err)
	}

	return e.finish(ctx)
}
