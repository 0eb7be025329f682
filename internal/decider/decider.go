// Package decider answers the question every atomic builder asks before
// doing expensive work: given these inputs and this output, has anything
// changed since the last time this exact build ran? A Decider computes a
// Decision; the caller inspects Decision.BuildNeeded, runs the builder
// if needed, and calls Decision.Commit only once the build actually
// succeeded. An early return without Commit leaves the previous
// recorded state in place, so the next Decision call reports the same
// build as still needed.
package decider

import (
	"context"
	"os"
	"strings"

	"github.com/dissemia/disseminate/internal/confighash"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Arg is a single builder parameter (a CLI flag, a crop margin, a scale
// factor) that participates in the build decision alongside file inputs.
type Arg string

// Decider decides whether a build is needed for a given set of inputs,
// output, and extra arguments.
type Decider interface {
	Decision(ctx context.Context, inputs []docpath.Path, output docpath.Path, args []Arg) (*Decision, error)
}

// Decision is the scoped result of a Decider call. Go has no
// try/finally scope-exit to hook automatically, so the builder's state
// machine calls Commit explicitly after a verified successful build;
// skipping Commit on an early return leaves the prior recorded state
// untouched.
type Decision struct {
	// BuildNeeded is true when the builder should run.
	BuildNeeded bool

	key    string
	digest confighash.Digest
	store  Store
}

// Commit records the decision's computed digest so future Decision
// calls for the same inputs/output/args see it as up to date. A
// no-store decision (ExistenceDecider) has nothing to commit.
func (d *Decision) Commit(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	return d.store.Set(ctx, d.key, d.digest)
}

// Store persists decision digests across process runs, keyed by a
// string derived from a build's inputs and output.
type Store interface {
	Get(ctx context.Context, key string) (confighash.Digest, bool, error)
	Set(ctx context.Context, key string, digest confighash.Digest) error
	Close() error
}

func decisionKey(inputs []docpath.Path, output docpath.Path) string {
	var b strings.Builder
	for _, p := range inputs {
		b.WriteString(p.String())
		b.WriteByte(0x1f)
	}
	b.WriteString(output.String())
	return b.String()
}

// ExistenceDecider is the base decider: a build is needed whenever any
// input or the output is missing from disk. It carries no persisted
// state, so Decision.Commit on its result is a no-op.
type ExistenceDecider struct{}

// NewExistenceDecider returns a Decider backed only by file existence.
func NewExistenceDecider() *ExistenceDecider {
	return &ExistenceDecider{}
}

// Decision implements Decider.
func (e *ExistenceDecider) Decision(ctx context.Context, inputs []docpath.Path, output docpath.Path, args []Arg) (*Decision, error) {
	needed := false
	for _, in := range inputs {
		if _, err := os.Stat(in.Abs()); err != nil {
			needed = true
			break
		}
	}
	if !needed {
		if _, err := os.Stat(output.Abs()); err != nil {
			needed = true
		}
	}
	return &Decision{BuildNeeded: needed}, nil
}

// HashDecider decides based on a content fingerprint of the inputs,
// output, and args, persisted in a Store between runs. A build is
// needed whenever the freshly computed fingerprint differs from (or has
// no prior record in) the store.
type HashDecider struct {
	store Store
}

// NewHashDecider returns a Decider backed by content hashing and store.
func NewHashDecider(store Store) *HashDecider {
	return &HashDecider{store: store}
}

// Decision implements Decider.
func (h *HashDecider) Decision(ctx context.Context, inputs []docpath.Path, output docpath.Path, args []Arg) (*Decision, error) {
	items := make([]confighash.Item, 0, len(inputs)+len(args)+1)
	for _, in := range inputs {
		items = append(items, confighash.PathItem{Path: in.Abs()})
	}
	for _, a := range args {
		items = append(items, confighash.TextItem(a))
	}
	if _, err := os.Stat(output.Abs()); err == nil {
		items = append(items, confighash.PathItem{Path: output.Abs()})
	} else {
		items = append(items, confighash.TextItem("missing:"+output.String()))
	}

	digest, err := confighash.Hash(items...)
	if err != nil {
		return nil, err
	}

	key := decisionKey(inputs, output)
	prev, found, err := h.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Decision{
		BuildNeeded: !found || prev != digest,
		key:         key,
		digest:      digest,
		store:       h.store,
	}, nil
}
