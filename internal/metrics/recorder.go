package metrics

import "time"

// ResultLabel enumerates an atomic builder's terminal outcome for counters.
type ResultLabel string

const (
	ResultDone      ResultLabel = "done"
	ResultFailed    ResultLabel = "failed"
	ResultMissing   ResultLabel = "missing"
	ResultCancelled ResultLabel = "cancelled"
)

// DecisionLabel enumerates a decider's verdict for counters.
type DecisionLabel string

const (
	DecisionNeeded DecisionLabel = "needed"
	DecisionCached DecisionLabel = "cached"
)

// Recorder defines the observability hooks the build engine calls as it
// drives target builders. Implementations may forward to Prometheus or
// elsewhere; all methods must be safe to call on a nil-valued NoopRecorder.
type Recorder interface {
	ObserveBuildDuration(target string, d time.Duration)
	IncBuildOutcome(target string, result ResultLabel)
	ObserveBuilderStepDuration(kind string, d time.Duration)
	IncBuilderResult(kind string, result ResultLabel)
	IncDecision(scope string, result DecisionLabel)
	SetActiveBuilds(n int)
	IncNoBuilder(inExt, outExt string)
}

// NoopRecorder is a Recorder that does nothing; the default when no
// metrics backend is configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration)      {}
func (NoopRecorder) IncBuildOutcome(string, ResultLabel)             {}
func (NoopRecorder) ObserveBuilderStepDuration(string, time.Duration) {}
func (NoopRecorder) IncBuilderResult(string, ResultLabel)            {}
func (NoopRecorder) IncDecision(string, DecisionLabel)               {}
func (NoopRecorder) SetActiveBuilds(int)                             {}
func (NoopRecorder) IncNoBuilder(string, string)                     {}
