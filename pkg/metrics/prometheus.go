package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal   *prometheus.CounterVec
	webhookAttempts *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fishmoney_analyses_total",
				Help: "Total number of analysis requests by outcome",
			},
			[]string{"outcome"},
		),
		webhookAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fishmoney_webhook_attempts_total",
				Help: "Total number of outbound webhook attempts",
			},
			[]string{"result"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fishmoney_last_price",
				Help: "Last normalized price for a ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fishmoney_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records a completed analysis by outcome.
func (r *Recorder) RecordAnalysis(outcome string) {
	r.analysesTotal.WithLabelValues(outcome).Inc()
}

// RecordWebhookAttempt records one outbound webhook attempt.
func (r *Recorder) RecordWebhookAttempt(result string) {
	r.webhookAttempts.WithLabelValues(result).Inc()
}

// RecordLastPrice records the last normalized price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
