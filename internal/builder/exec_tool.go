package builder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	ferrors "github.com/dissemia/disseminate/internal/ferrors"
)

// ExternalTool describes an invocation of a command-line program. It is
// the shared plumbing behind every atomic builder that shells out
// (pdfcrop, pdf2svg, asy, latexmk, pdflatex, ...), following the
// teacher's pattern of building an *exec.Cmd, capturing stderr, and
// wrapping a non-zero exit in a classified error.
type ExternalTool struct {
	Command string
	Args    []string
	Dir     string
}

// Available reports whether Command resolves on PATH.
func (t ExternalTool) Available() bool {
	_, err := exec.LookPath(t.Command)
	return err == nil
}

// Run executes the command, returning a BuildFailure-classified error
// with the captured stderr attached when it exits non-zero.
func (t ExternalTool) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, t.Command, t.Args...)
	cmd.Dir = t.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ferrors.BuildFailureError(fmt.Sprintf("%s failed", t.Command)).
			WithContext("command", t.Command).
			WithContext("args", t.Args).
			WithContext("stderr", stderr.String()).
			Build()
	}
	return nil
}

// toolUnavailable builds the classified error a builder returns from
// Step when its declared external tool is absent. The registry checks
// Available before ever constructing this builder, so reaching this
// path normally means the tool was uninstalled between resolution and
// execution.
func toolUnavailable(name, command string) error {
	return ferrors.ToolUnavailableError(fmt.Sprintf("%s: %s is not on PATH", name, command)).Build()
}
