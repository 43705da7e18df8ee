package prim

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated by Engine builds.
type Metrics struct {
	Builds       *prometheus.CounterVec
	Primitives   prometheus.Gauge
	Warnings     prometheus.Counter
	Violations   prometheus.Counter
	BuildSeconds prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "celltab",
			Name:      "builds_total",
			Help:      "Registry builds by outcome.",
		}, []string{"result"}),
		Primitives: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "celltab",
			Name:      "primitives",
			Help:      "Primitives in the most recently built registry.",
		}),
		Warnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: "celltab",
			Name:      "warnings_total",
			Help:      "Non-fatal validation findings.",
		}),
		Violations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "celltab",
			Name:      "validation_errors_total",
			Help:      "Validation errors across failed builds.",
		}),
		BuildSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "celltab",
			Name:      "build_duration_seconds",
			Help:      "Time spent loading, parsing and validating a table.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// Build outcomes used as the "result" label.
const (
	ResultOK         = "ok"
	ResultFormat     = "format_error"
	ResultSyntax     = "syntax_error"
	ResultValidation = "validation_error"
	ResultOther      = "error"
)

func resultOf(err error) string {
	var (
		fe *FormatError
		se *SyntaxError
		ve ValidationErrors
	)
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &fe):
		return ResultFormat
	case errors.As(err, &se):
		return ResultSyntax
	case errors.As(err, &ve):
		return ResultValidation
	default:
		return ResultOther
	}
}
