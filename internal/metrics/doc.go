// Package metrics provides build observability for justhtml.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so the build pipeline never needs nil checks:
//
//	builder := content.NewBuilder(content.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The development server registers a PrometheusRecorder and exposes it on
// /metrics with HTTPHandler; one-shot builds keep the NoopRecorder.
package metrics
