package libfetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer("github.com/fetchcore/fetchcore/libfetch",
		trace.WithSchemaURL(semconv.SchemaURL),
	)
}

var (
	fetchLabels = []string{"success"}
	fetchTimer  = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fetchcore",
		Subsystem: "libfetch",
		Name:      "fetch_duration_seconds",
		Help:      "Time spent racing the sources for one artifact.",
	}, fetchLabels)
	fetchCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fetchcore",
		Subsystem: "libfetch",
		Name:      "fetch_total",
		Help:      "Count of artifact fetches.",
	}, fetchLabels)
)
