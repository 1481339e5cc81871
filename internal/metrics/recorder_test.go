package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("content", time.Millisecond)
	r.ObserveBuildDuration(time.Millisecond)
	r.IncStageResult("content", ResultFatal)
	r.IncBuildOutcome(BuildOutcomeFailed)
	r.IncPageRendered()
	r.IncFrontmatterRejected()
}

func TestPrometheusRecorderSatisfiesInterface(_ *testing.T) {
	var _ Recorder = (*PrometheusRecorder)(nil)
}
