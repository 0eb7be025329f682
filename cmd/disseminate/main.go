package main

import (
	"log/slog"
	"os"

	disseminatecli "github.com/dissemia/disseminate/internal/cli"
	"github.com/dissemia/disseminate/internal/ferrors"
)

// Set at build time with: -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	root, globals, kctx, err := disseminatecli.Parse(version, os.Args[1:])
	if err != nil {
		slog.Error("cli: invalid arguments", "error", err)
		os.Exit(2)
	}

	errorAdapter := ferrors.NewCLIErrorAdapter(root.Verbose, globals.Logger)
	if err := kctx.Run(globals, root); err != nil {
		errorAdapter.HandleError(err)
	}
}
