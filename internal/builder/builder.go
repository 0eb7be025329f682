// Package builder implements the atomic builders: the leaf nodes of a
// build graph, each responsible for turning one set of input files into
// one output file by running a single tool (or a small pure-Go
// transform). A Builder is driven through an explicit state machine
// rather than run to completion in one call, so a composite builder can
// interleave many atomic builders' Step calls and report progress.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ferrors "github.com/dissemia/disseminate/internal/ferrors"

	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Status is a builder's position in its state machine:
// created -> ready -> building -> done | failed | cancelled, or
// created -> missing when a required input never shows up.
type Status int

const (
	StatusCreated Status = iota
	StatusReady
	StatusBuilding
	StatusDone
	StatusFailed
	StatusMissing
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusReady:
		return "ready"
	case StatusBuilding:
		return "building"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusMissing:
		return "missing"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether the builder has reached a terminal state.
func (s Status) Done() bool {
	switch s {
	case StatusDone, StatusFailed, StatusMissing, StatusCancelled:
		return true
	default:
		return false
	}
}

// Builder is the common interface every atomic builder implements.
type Builder interface {
	// Prepare validates inputs and consults the decider, moving the
	// builder to Ready, Done (cached), or Missing.
	Prepare(ctx context.Context) error
	// Step advances the builder by one unit of work and returns its new
	// status. Calling Step after a terminal status is a no-op.
	Step(ctx context.Context) (Status, error)
	// Status returns the builder's current state.
	Status() Status
	// OutFilePath returns the path the builder writes (or would write).
	OutFilePath() docpath.Path
}

// base holds the state machine fields shared by every atomic builder.
// Concrete builders embed base and implement their own Step logic,
// calling into base's helpers for the parts that never change: input
// validation, decision lookup, and decision commit on success.
type base struct {
	name    string
	inputs  []docpath.Path
	output  docpath.Path
	args    []decider.Arg
	decider decider.Decider

	status   Status
	decision *decider.Decision
}

func (b *base) Status() Status             { return b.status }
func (b *base) OutFilePath() docpath.Path  { return b.output }

// prepare runs the shared Prepare logic: check inputs exist, ask the
// decider whether a build is needed, and short-circuit to Done when the
// decider says the existing output is already current.
func (b *base) prepare(ctx context.Context) error {
	for _, in := range b.inputs {
		if _, err := os.Stat(in.Abs()); err != nil {
			b.status = StatusMissing
			return ferrors.MissingInputError(fmt.Sprintf("%s: missing input %s", b.name, in)).Build()
		}
	}

	if b.decider == nil {
		b.status = StatusReady
		return nil
	}

	decision, err := b.decider.Decision(ctx, b.inputs, b.output, b.args)
	if err != nil {
		return fmt.Errorf("%s: decide: %w", b.name, err)
	}
	b.decision = decision

	if !decision.BuildNeeded {
		b.status = StatusDone
		return nil
	}
	b.status = StatusReady
	return nil
}

// ensureOutputDir creates the output file's parent directory.
func (b *base) ensureOutputDir() error {
	dir := filepath.Dir(b.output.Abs())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%s: create output directory %s: %w", b.name, dir, err)
	}
	return nil
}

// finish commits the builder's decision (if any) and marks it Done.
func (b *base) finish(ctx context.Context) (Status, error) {
	if b.decision != nil {
		if err := b.decision.Commit(ctx); err != nil {
			return b.status, fmt.Errorf("%s: commit decision: %w", b.name, err)
		}
	}
	b.status = StatusDone
	return b.status, nil
}

func (b *base) fail(err error) (Status, error) {
	b.status = StatusFailed
	return b.status, err
}
