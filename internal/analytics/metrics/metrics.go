package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's counters and histograms.
type Metrics struct {
	EventsProcessed    prometheus.Counter
	EventsFailed       prometheus.Counter
	EventsDeadLettered prometheus.Counter
	Duplicates         prometheus.Counter
	Poison             prometheus.Counter
	BatchDuration      prometheus.Histogram
	EnrichmentDuration prometheus.Histogram
	ConsumerLag        *prometheus.GaugeVec
	TrafficSource      *prometheus.CounterVec

	ProducerPublished prometheus.Counter
	ProducerFailed    prometheus.Counter
	ProducerLost      prometheus.Counter

	RetryRepublished prometheus.Counter
	RetryFailed      prometheus.Counter
	RetryExhausted   prometheus.Counter
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		EventsProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_events_processed_total",
			Help: "Click events inserted into the event store",
		}),
		EventsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_events_failed_total",
			Help: "Click events that failed enrichment or insertion",
		}),
		EventsDeadLettered: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_events_dead_lettered_total",
			Help: "Click events routed to the dead-letter path",
		}),
		Duplicates: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_events_duplicates_total",
			Help: "Redelivered click events skipped by the uniqueness constraint",
		}),
		Poison: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_events_poison_total",
			Help: "Undecodable messages skipped by the consumer",
		}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_batch_processing_seconds",
			Help:    "Time to process one consumer batch",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EnrichmentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_enrichment_seconds",
			Help:    "Time to enrich a single click event",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		ConsumerLag: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analytics_consumer_lag",
			Help: "Messages between the committed offset and the partition end, per worker",
		}, []string{"worker"}),
		TrafficSource: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_clicks_by_source_total",
			Help: "Stored clicks by traffic source",
		}, []string{"source"}),

		ProducerPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_producer_published_total",
			Help: "Click events accepted by the broker",
		}),
		ProducerFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_producer_failed_total",
			Help: "Click events the producer could not deliver",
		}),
		ProducerLost: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_producer_lost_total",
			Help: "Click events dropped because the dead-letter write failed",
		}),

		RetryRepublished: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_dlq_republished_total",
			Help: "Dead letters republished to the primary topic",
		}),
		RetryFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_dlq_retry_failed_total",
			Help: "Dead-letter retry attempts that failed",
		}),
		RetryExhausted: f.NewCounter(prometheus.CounterOpts{
			Name: "analytics_dlq_exhausted_total",
			Help: "Dead letters that ran out of retries",
		}),
	}
}

func (m *Metrics) IncPoison() {
	m.Poison.Inc()
}

func (m *Metrics) SetLag(worker string, lag int64) {
	m.ConsumerLag.WithLabelValues(worker).Set(float64(lag))
}

func (m *Metrics) IncPublished() {
	m.ProducerPublished.Inc()
}

func (m *Metrics) IncPublishFailed() {
	m.ProducerFailed.Inc()
}

func (m *Metrics) IncLost() {
	m.ProducerLost.Inc()
}

// ObserveBatch records one consumer batch outcome.
func (m *Metrics) ObserveBatch(inserted, duplicates, deadLettered int, elapsed time.Duration) {
	m.EventsProcessed.Add(float64(inserted))
	m.Duplicates.Add(float64(duplicates))
	m.EventsFailed.Add(float64(deadLettered))
	m.EventsDeadLettered.Add(float64(deadLettered))
	m.BatchDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveEnrichment(elapsed time.Duration) {
	m.EnrichmentDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncSource(source string) {
	m.TrafficSource.WithLabelValues(source).Inc()
}

// ObserveRetry records one dead-letter retry pass.
func (m *Metrics) ObserveRetry(republished, failed, exhausted int) {
	m.RetryRepublished.Add(float64(republished))
	m.RetryFailed.Add(float64(failed))
	m.RetryExhausted.Add(float64(exhausted))
}
