package composite

import (
	"context"
	"fmt"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Sequential chains builders so that sub-builder i's output becomes
// sub-builder i+1's input; intermediate files normally live under a
// cache directory rather than a published target tree. It carries its
// own top-level decider over the pipeline's overall (inputs, final
// output, args) identity: when that decision says no build is needed,
// Prepare reports Done immediately without touching any sub-builder, so
// deleting a strict intermediate never forces a rerun as long as the
// final output's fingerprint still matches the last commit. Only a
// change reachable from the final output (or a changed input/arg)
// invalidates the shortcut and drives every sub-builder from the start.
type Sequential struct {
	name    string
	inputs  []docpath.Path
	output  docpath.Path
	args    []decider.Arg
	decider decider.Decider
	sub     []builder.Builder

	status   builder.Status
	decision *decider.Decision
	cur      int
}

// NewSequential returns a Sequential builder named name, chaining sub in
// order. inputs/output/args/d describe the pipeline's own top-level
// build decision, independent of each sub-builder's own decider.
func NewSequential(name string, inputs []docpath.Path, output docpath.Path, args []decider.Arg, d decider.Decider, sub ...builder.Builder) *Sequential {
	return &Sequential{name: name, inputs: inputs, output: output, args: args, decider: d, sub: sub}
}

// Status implements builder.Builder.
func (s *Sequential) Status() builder.Status { return s.status }

// OutFilePath implements builder.Builder.
func (s *Sequential) OutFilePath() docpath.Path { return s.output }

// Prepare implements builder.Builder.
func (s *Sequential) Prepare(ctx context.Context) error {
	if len(s.sub) == 0 {
		return fmt.Errorf("%s: sequential builder has no sub-builders", s.name)
	}

	if s.decider != nil {
		decision, err := s.decider.Decision(ctx, s.inputs, s.output, s.args)
		if err != nil {
			return fmt.Errorf("%s: decide: %w", s.name, err)
		}
		s.decision = decision
		if !decision.BuildNeeded {
			s.status = builder.StatusDone
			return nil
		}
	}

	s.cur = 0
	err := s.sub[0].Prepare(ctx)
	s.status = s.sub[0].Status()
	return err
}

// Step implements builder.Builder. It advances the current sub-builder
// until it reaches a terminal state, then prepares and advances the
// next, committing the pipeline's own decision once the last sub-builder
// finishes.
func (s *Sequential) Step(ctx context.Context) (builder.Status, error) {
	if s.status.Done() {
		return s.status, nil
	}

	for s.cur < len(s.sub) {
		child := s.sub[s.cur]
		status, err := child.Step(ctx)
		if err != nil {
			s.status = builder.StatusFailed
			return s.status, fmt.Errorf("%s: sub-builder %d (%T): %w", s.name, s.cur, child, err)
		}

		switch status {
		case builder.StatusDone:
			s.cur++
			if s.cur == len(s.sub) {
				return s.finish(ctx)
			}
			if err := s.sub[s.cur].Prepare(ctx); err != nil {
				s.status = builder.StatusFailed
				return s.status, err
			}
			// Loop again: a cached next sub-builder may itself already
			// be Done, in which case this advances past it in the same
			// Step call rather than forcing an extra round trip.
		case builder.StatusFailed, builder.StatusMissing, builder.StatusCancelled:
			s.status = status
			return s.status, fmt.Errorf("%s: sub-builder %d (%T) reached %s", s.name, s.cur, child, status)
		default:
			s.status = builder.StatusBuilding
			return s.status, nil
		}
	}

	return s.finish(ctx)
}

func (s *Sequential) finish(ctx context.Context) (builder.Status, error) {
	if s.decision != nil {
		if err := s.decision.Commit(ctx); err != nil {
			s.status = builder.StatusFailed
			return s.status, fmt.Errorf("%s: commit decision: %w", s.name, err)
		}
	}
	s.status = builder.StatusDone
	return s.status, nil
}
