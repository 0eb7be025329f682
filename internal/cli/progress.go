package cli

import (
	"fmt"

	"github.com/dissemia/disseminate/internal/builder"
)

// ConsoleProgress implements environment.ProgressObserver with plain
// stdout lines, the CLI's default progress renderer. A richer progress
// bar widget (original_source/src/disseminate/cli/utils/progressbar.py)
// is an external collaborator; this is the minimal stand-in that keeps
// the CLI usable without one.
type ConsoleProgress struct{}

func (ConsoleProgress) OnBuilderStart(target string) {
	fmt.Printf("building %s...\n", target)
}

func (ConsoleProgress) OnBuilderStatusChange(target string, status builder.Status) {
	fmt.Printf("  %s: %s\n", target, status)
}

func (ConsoleProgress) OnBuildComplete(status builder.Status) {
	if status == builder.StatusDone {
		fmt.Println("build completed successfully")
		return
	}
	fmt.Printf("build finished with status: %s\n", status)
}
