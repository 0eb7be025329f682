package builder

import (
	"context"
	"fmt"
	"os"

	ferrors "github.com/dissemia/disseminate/internal/ferrors"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// TemplateRenderer is an external collaborator that knows how to render
// a template file against a data context. JinjaRender does not
// implement a template language itself; the environment supplies a
// TemplateRenderer the way it supplies a Decider.
type TemplateRenderer interface {
	Render(ctx context.Context, templatePath docpath.SourcePath, data map[string]any) ([]byte, error)
}

// JinjaRender produces a target's final markup by rendering a template
// against the document's context data.
type JinjaRender struct {
	base
	renderer TemplateRenderer
	template docpath.SourcePath
	data     map[string]any
}

// NewJinjaRender returns a JinjaRender builder rendering template with
// data, via renderer, to out.
func NewJinjaRender(template docpath.SourcePath, data map[string]any, out docpath.TargetPath, renderer TemplateRenderer, d decider.Decider) *JinjaRender {
	j := &JinjaRender{renderer: renderer, template: template, data: data}
	j.name = "jinja_render"
	j.inputs = []docpath.Path{template}
	j.output = out
	j.decider = d
	return j
}

// Prepare implements Builder.
func (j *JinjaRender) Prepare(ctx context.Context) error {
	return j.prepare(ctx)
}

// Step implements Builder.
func (j *JinjaRender) Step(ctx context.Context) (Status, error) {
	if j.status.Done() {
		return j.status, nil
	}
	if j.status != StatusReady {
		return j.fail(fmt.Errorf("jinja_render: not ready"))
	}
	if j.renderer == nil {
		return j.fail(ferrors.MissingDependencyError("jinja_render: no template renderer configured").Build())
	}

	if err := j.ensureOutputDir(); err != nil {
		return j.fail(err)
	}

	j.status = StatusBuilding
	rendered, err := j.renderer.Render(ctx, j.template, j.data)
	if err != nil {
		return j.fail(fmt.Errorf("jinja_render: %w", err))
	}
	if err := os.WriteFile(j.output.Abs(), rendered, 0o600); err != nil {
		return j.fail(fmt.Errorf("jinja_render: write %s: %w", j.output, err))
	}
	return j.finish(ctx)
}
