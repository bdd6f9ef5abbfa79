package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/snapp-incubator/telemock/internal/logging"
)

const namespace = "telemock"

var (
	// CapturedPayloads counts captured payloads per emulated vendor and kind.
	// Catch-all rules report an empty kind to keep the label set bounded.
	CapturedPayloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captured_payloads_total",
			Help:      "Number of ingestion requests captured, by emulated vendor.",
		},
		[]string{"vendor", "kind"},
	)

	PayloadSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_size_bytes",
			Help:      "Size of captured request bodies after content decoding.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"vendor"},
	)

	ItemCountFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_count_failures_total",
			Help:      "Payloads whose item count could not be extracted.",
		},
		[]string{"vendor"},
	)

	StorageDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_dropped_total",
			Help:      "Capture logs dropped because the storage queue was full.",
		},
	)

	HTTPReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time spent answering emulated vendor requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "vendor"},
	)
)

func init() {
	prometheus.MustRegister(CapturedPayloads, PayloadSize, ItemCountFailures, StorageDropped, HTTPReqDuration)
}

// RegisterStoreGauge exposes the number of payloads held by a capture store.
func RegisterStoreGauge(count func() int) error {
	return prometheus.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_payloads",
			Help:      "Number of payloads currently held in the capture store.",
		},
		func() float64 { return float64(count()) },
	))
}

// InitializeHTTP serves the prometheus registry on bind. It blocks.
func InitializeHTTP(bind string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logging.L.Info("Starting metrics server", zap.String("address", bind))
	if err := http.ListenAndServe(bind, mux); err != nil {
		logging.L.Error("Metrics server stopped", zap.Error(err))
	}
}
