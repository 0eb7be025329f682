package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus client metrics.
type PrometheusRecorder struct {
	once sync.Once

	buildDuration   *prom.HistogramVec
	buildOutcome    *prom.CounterVec
	stepDuration    *prom.HistogramVec
	builderOutcome  *prom.CounterVec
	decisions       *prom.CounterVec
	activeBuilds    prom.Gauge
	noBuilder       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the engine's Prometheus
// metrics against reg (a nil reg gets a fresh registry). Each call
// registers a new set of collectors, so calling it twice with the same
// reg panics in MustRegister.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "disseminate",
			Name:      "target_build_duration_seconds",
			Help:      "Duration of a full target build, by target kind.",
			Buckets:   prom.DefBuckets,
		}, []string{"target"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "disseminate",
			Name:      "target_build_outcomes_total",
			Help:      "Target build outcomes by kind and result.",
		}, []string{"target", "result"})
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "disseminate",
			Name:      "builder_step_duration_seconds",
			Help:      "Duration of an atomic builder's Step call, by builder kind.",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"})
		pr.builderOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "disseminate",
			Name:      "builder_outcomes_total",
			Help:      "Atomic builder outcomes by kind and result.",
		}, []string{"kind", "result"})
		pr.decisions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "disseminate",
			Name:      "decider_results_total",
			Help:      "Decider verdicts by scope and whether a build was needed.",
		}, []string{"scope", "result"})
		pr.activeBuilds = prom.NewGauge(prom.GaugeOpts{
			Namespace: "disseminate",
			Name:      "active_builds",
			Help:      "Number of target builds currently in flight.",
		})
		pr.noBuilder = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "disseminate",
			Name:      "registry_no_builder_total",
			Help:      "Registry resolution misses, by input/output extension.",
		}, []string{"in_ext", "out_ext"})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.stepDuration, pr.builderOutcome, pr.decisions, pr.activeBuilds, pr.noBuilder)
	})
	return pr
}

func (pr *PrometheusRecorder) ObserveBuildDuration(target string, d time.Duration) {
	pr.buildDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(target string, result ResultLabel) {
	pr.buildOutcome.WithLabelValues(target, string(result)).Inc()
}

func (pr *PrometheusRecorder) ObserveBuilderStepDuration(kind string, d time.Duration) {
	pr.stepDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuilderResult(kind string, result ResultLabel) {
	pr.builderOutcome.WithLabelValues(kind, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncDecision(scope string, result DecisionLabel) {
	pr.decisions.WithLabelValues(scope, string(result)).Inc()
}

func (pr *PrometheusRecorder) SetActiveBuilds(n int) {
	pr.activeBuilds.Set(float64(n))
}

func (pr *PrometheusRecorder) IncNoBuilder(inExt, outExt string) {
	pr.noBuilder.WithLabelValues(inExt, outExt).Inc()
}
