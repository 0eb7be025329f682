// Package cli wires the build engine's core packages (registry,
// decider, environment) into a runnable command-line tool, modeled on
// the teacher's cmd/docbuilder CLI: a kong.Parse root, a CLI struct of
// subcommands, and AfterApply installing the process-wide logger.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/dissemia/disseminate/internal/logging"
)

// Root is the CLI's global flags and subcommand set.
type Root struct {
	Config  string           `short:"c" help:"Project configuration file path." default:"disseminate.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Render  RenderCmd  `cmd:"" help:"Build every declared target for a source document."`
	Init    InitCmd    `cmd:"" help:"Initialize a new project from a starter."`
	Preview PreviewCmd `cmd:"" help:"Preview a project locally, rebuilding on change."`
}

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// AfterApply installs the process-wide logger once flags are parsed.
func (r *Root) AfterApply() error {
	logging.Setup(r.Verbose)
	return nil
}

// Parse builds a kong parser for Root and runs it against args,
// returning the globals and a parser the caller can both Run and use
// for error reporting. Split out of main() so it can be exercised
// without invoking the real os.Exit path.
func Parse(version string, args []string) (*Root, *Global, *kong.Context, error) {
	root := &Root{}
	parser, err := kong.New(root,
		kong.Description("Disseminate: build HTML, EPUB, LaTeX and PDF output from a source document tree."),
		kong.Vars{"version": version},
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cli: build parser: %w", err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return nil, nil, nil, err
	}

	globals := &Global{Logger: slog.Default()}
	return root, globals, kctx, nil
}

// RunArgs parses and runs args against Root, for use from main().
func RunArgs(version string, args []string) error {
	root, globals, kctx, err := Parse(version, args)
	if err != nil {
		return err
	}
	return kctx.Run(globals, root)
}
