package observability

import (
	"iter"
	"strconv"
	"time"

	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds one install run's stage and component metrics in a private
// registry so a run can be written out as a single textfile.
type Metrics struct {
	registry      *prometheus.Registry
	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	components    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hekit",
				Subsystem: "stage",
				Name:      "runs_total",
				Help:      "Stage operations invoked.",
			},
			[]string{"component", "instance", "stage", "success", "code"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hekit",
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Stage operation duration in seconds.",
				Buckets:   []float64{0.1, 1, 10, 60, 300, 900, 3600},
			},
			[]string{"component", "instance", "stage"},
		),
		components: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hekit",
				Subsystem: "install",
				Name:      "components_total",
				Help:      "Components handled by result.",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.stageRuns, m.stageDuration, m.components)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordStage records one invoked stage operation.
func (m *Metrics) RecordStage(component, instance string, stage pipeline.Stage, out pipeline.Outcome, duration time.Duration) {
	m.stageRuns.WithLabelValues(component, instance, stage.String(), strconv.FormatBool(out.Succeeded), strconv.Itoa(out.Code)).Inc()
	m.stageDuration.WithLabelValues(component, instance, stage.String()).Observe(duration.Seconds())
}

// RecordComponent counts a component as skipped, succeeded or failed.
func (m *Metrics) RecordComponent(result string) {
	m.components.WithLabelValues(result).Inc()
}

// Instrument wraps plan so every invoked operation is timed. Operations that
// are never invoked are never recorded.
func (m *Metrics) Instrument(plan pipeline.Planner) pipeline.Planner {
	return func(c pipeline.Component) iter.Seq[pipeline.StageOp] {
		return func(yield func(pipeline.StageOp) bool) {
			for op := range plan(c) {
				run := op.Run
				stage := op.Stage
				wrapped := pipeline.StageOp{Stage: stage, Run: func() pipeline.Outcome {
					start := time.Now()
					out := run()
					m.RecordStage(c.ComponentName(), c.InstanceName(), stage, out, time.Since(start))
					return out
				}}
				if !yield(wrapped) {
					return
				}
			}
		}
	}
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
