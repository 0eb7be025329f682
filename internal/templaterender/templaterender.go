// Package templaterender is the engine's built-in TemplateRenderer
// collaborator: a plain text/template implementation, used by the CLI
// when no richer Jinja-style engine is configured. A full templating
// engine is treated as an external collaborator this engine doesn't
// implement itself; this is the stand-in that lets the CLI run a build
// end to end without one.
package templaterender

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"text/template"

	"github.com/dissemia/disseminate/internal/docpath"
)

// Renderer implements builder.TemplateRenderer using text/template.
// Missing keys are an error rather than rendering as "<no value>", to
// keep silently-half-rendered documents out of a build.
type Renderer struct{}

func (Renderer) Render(_ context.Context, templatePath docpath.SourcePath, data map[string]any) ([]byte, error) {
	body, err := os.ReadFile(templatePath.Abs())
	if err != nil {
		return nil, fmt.Errorf("templaterender: read %s: %w", templatePath, err)
	}

	tpl, err := template.New(templatePath.Abs()).Option("missingkey=error").Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("templaterender: parse %s: %w", templatePath, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("templaterender: render %s: %w", templatePath, err)
	}
	return buf.Bytes(), nil
}
