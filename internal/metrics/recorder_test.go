package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestNoopRecorderMethodsDoNotPanic(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveBuildDuration("html", time.Millisecond)
		r.IncBuildOutcome("html", ResultDone)
		r.ObserveBuilderStepDuration("jinja_render", time.Millisecond)
		r.IncBuilderResult("jinja_render", ResultFailed)
		r.IncDecision("pdf", DecisionCached)
		r.SetActiveBuilds(3)
		r.IncNoBuilder(".foo", ".bar")
	})
}

func TestPrometheusRecorderRegistersOnce(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	assert.NotPanics(t, func() {
		pr.ObserveBuildDuration("pdf", 10*time.Millisecond)
		pr.IncBuildOutcome("pdf", ResultDone)
		pr.ObserveBuilderStepDuration("latex", 5*time.Millisecond)
		pr.IncBuilderResult("latex", ResultDone)
		pr.IncDecision("pdf", DecisionNeeded)
		pr.SetActiveBuilds(1)
		pr.IncNoBuilder(".docx", ".pdf")
	})

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestPrometheusRecorderUsesOwnRegistryWhenNilIsPassed(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	assert.NotPanics(t, func() {
		pr.IncBuildOutcome("html", ResultDone)
	})
}
