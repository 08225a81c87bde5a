package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineRuns = Factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: FQName("pipeline_runs_total"),
			Help: "Finished pipeline runs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	pipelineRunsInFlight = Factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: FQName("pipeline_runs_in_flight"),
			Help: "Pipeline runs currently executing",
		},
		[]string{"kind"},
	)
	stageDuration = Factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    FQName("pipeline_stage_duration_seconds"),
			Help:    "Duration of successful pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"stage"},
	)
	framesExtracted = Factory.NewCounter(
		prometheus.CounterOpts{
			Name: FQName("pipeline_frames_extracted_total"),
			Help: "Frames written by the decoder",
		},
	)
	objectsUploaded = Factory.NewCounter(
		prometheus.CounterOpts{
			Name: FQName("pipeline_objects_uploaded_total"),
			Help: "Artifacts written to object storage",
		},
	)
	cleanupFailures = Factory.NewCounter(
		prometheus.CounterOpts{
			Name: FQName("pipeline_staging_cleanup_failures_total"),
			Help: "Staging areas that could not be removed",
		},
	)
)

// Pipeline records orchestrator measurements in the default registry.
type Pipeline struct{}

// NewPipeline returns a Pipeline recorder.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (*Pipeline) RunStarted(kind string) {
	pipelineRunsInFlight.WithLabelValues(kind).Inc()
}

func (*Pipeline) RunFinished(kind, outcome string) {
	pipelineRunsInFlight.WithLabelValues(kind).Dec()
	pipelineRuns.WithLabelValues(kind, outcome).Inc()
}

func (*Pipeline) ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (*Pipeline) FrameExtracted() {
	framesExtracted.Inc()
}

func (*Pipeline) ObjectUploaded() {
	objectsUploaded.Inc()
}

func (*Pipeline) CleanupFailed() {
	cleanupFailures.Inc()
}
