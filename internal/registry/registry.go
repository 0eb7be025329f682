// Package registry resolves a builder class for a given (input extension,
// output extension, document target) triple, the way a dynamic dispatch
// table would in a language with runtime class lookup. Candidates are
// registered lexically at startup; resolution sorts by declared priority
// and skips any candidate whose external tool is unavailable.
package registry

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"

	ferrors "github.com/dissemia/disseminate/internal/ferrors"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
)

// Ctor constructs a concrete builder for one resolved candidate. in is
// usually a project source file, but may also be an earlier pipeline
// stage's intermediate output when a composite chains builders through
// the registry. cacheDir is where the builder should place any
// intermediate files it needs that don't belong under the final
// output's target tree.
type Ctor func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error)

type rule struct {
	inExt          string
	outExt         string // "" means wildcard: matched only when the caller omits outExt
	documentTarget string // "" means any target
	priority       int
	tool           string // "" means always available
	ctor           Ctor
}

// Registry is carried on an Environment, not a package-level global, so
// tests can construct an isolated registry and toggle tool availability
// without affecting other tests running concurrently.
type Registry struct {
	mu       sync.RWMutex
	rules    []rule
	override map[string]bool
	lookPath func(string) (string, error)
}

// New returns an empty Registry. Use Register to populate it, or
// NewDefault for the engine's standard builder set.
func New() *Registry {
	return &Registry{override: map[string]bool{}, lookPath: exec.LookPath}
}

// Register adds a candidate builder constructor. Lower priority values
// are tried first. outExt == "" registers a wildcard consulted only when
// the caller's Resolve call omits an explicit output extension. tool ==
// "" means the candidate has no external dependency and is always
// available.
func (r *Registry) Register(inExt, outExt, documentTarget string, priority int, tool string, ctor Ctor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		inExt:          strings.TrimPrefix(inExt, "."),
		outExt:         strings.TrimPrefix(outExt, "."),
		documentTarget: strings.TrimPrefix(documentTarget, "."),
		priority:       priority,
		tool:           tool,
		ctor:           ctor,
	})
}

// SetAvailable forces tool's availability for resolution, overriding a
// PATH lookup. Used by tests to simulate an installed or missing tool
// without touching the real filesystem PATH.
func (r *Registry) SetAvailable(tool string, available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override[tool] = available
}

// ClearForTests removes every forced-availability override, reverting to
// real PATH lookups.
func (r *Registry) ClearForTests() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = map[string]bool{}
}

func (r *Registry) available(tool string) bool {
	if tool == "" {
		return true
	}
	if v, ok := r.override[tool]; ok {
		return v
	}
	_, err := r.lookPath(tool)
	return err == nil
}

// Resolve returns the highest-preference available candidate constructor
// for inExt producing outExt under documentTarget. outExt may be empty,
// in which case every rule for inExt whose document target is empty or
// equals documentTarget is considered, wildcard rules included. It
// returns a NoBuilder-classified error when no registered
// candidate is available.
func (r *Registry) Resolve(documentTarget, inExt, outExt string) (Ctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inExt = strings.TrimPrefix(inExt, ".")
	outExt = strings.TrimPrefix(outExt, ".")
	documentTarget = strings.TrimPrefix(documentTarget, ".")

	var candidates []rule
	for _, rl := range r.rules {
		if rl.inExt != inExt {
			continue
		}
		if outExt != "" {
			if rl.outExt == outExt {
				candidates = append(candidates, rl)
			}
			continue
		}
		if rl.documentTarget == "" || rl.documentTarget == documentTarget {
			candidates = append(candidates, rl)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].priority < candidates[j].priority })

	for _, c := range candidates {
		if r.available(c.tool) {
			return c.ctor, nil
		}
	}

	return nil, ferrors.NoBuilderError(
		fmt.Sprintf("no builder for .%s -> .%s (target %s)", inExt, outExt, documentTarget)).
		WithContext("in_ext", inExt).
		WithContext("out_ext", outExt).
		WithContext("document_target", documentTarget).
		Build()
}
