// Package composite implements the two ways atomic builders combine into
// a build graph: Sequential, a pipeline where one builder's output feeds
// the next's input, and Parallel, an unordered set of independent
// builders advanced concurrently. Both satisfy builder.Builder, so a
// composite can itself be a sub-builder of another composite.
package composite

import (
	"fmt"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/docpath"
)

// aggregateStatus reduces a set of child statuses to the composite's own
// status: any failed/missing/cancelled child dominates, then any still
// in progress, else done. It is computed fresh each time rather than
// tracked as mutable state, per the "pure reduction over children" rule.
func aggregateStatus(children []builder.Builder) builder.Status {
	sawBuilding := false
	for _, c := range children {
		switch c.Status() {
		case builder.StatusFailed, builder.StatusMissing, builder.StatusCancelled:
			return c.Status()
		case builder.StatusDone:
			// keep scanning
		default:
			sawBuilding = true
		}
	}
	if sawBuilding {
		return builder.StatusBuilding
	}
	return builder.StatusDone
}

func duplicateOutput(existing []builder.Builder, out docpath.Path) error {
	for _, c := range existing {
		if c.OutFilePath().Abs() == out.Abs() {
			return fmt.Errorf("composite: duplicate output path %s", out)
		}
	}
	return nil
}
