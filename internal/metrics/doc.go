// Package metrics provides build observability for the engine.
//
// Components receive a Recorder through dependency injection and default
// to NoopRecorder, which has zero overhead: swap in a PrometheusRecorder
// wherever metrics need to leave the process, without touching call sites.
package metrics
