package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rickgao/coinsync/internal/model"
	"github.com/rickgao/coinsync/internal/writer"
)

const namespace = "coinsync"

// Collector records coinsync metrics. It implements rest.Observer and can be
// registered as a snapshot handler. A nil *Collector is a no-op.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	bansTotal       *prometheus.CounterVec
	backoffBaseline prometheus.Gauge

	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	lastCycle     prometheus.Gauge

	coins *prometheus.GaugeVec

	registerer prometheus.Registerer
}

// NewCollector creates a collector registered on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API responses received",
			},
			[]string{"method", "path", "status_code"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Duration of API round trips in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		bansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_bans_total",
				Help:      "Total number of 429 responses, by whether Retry-After was usable",
			},
			[]string{"path", "known"},
		),
		backoffBaseline: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backoff_baseline_seconds",
				Help:      "Current baseline sleep before each rates request",
			},
		),
		cyclesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_cycles_total",
				Help:      "Total number of polling cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "poll_cycle_duration_seconds",
				Help:      "Duration of polling cycles in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		lastCycle: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_snapshot_timestamp_seconds",
				Help:      "Unix time the latest snapshot finished",
			},
		),
		coins: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "coins",
				Help:      "Coins in the latest snapshot by price state",
			},
			[]string{"state"},
		),
		registerer: reg,
	}
}

// ObserveResponse records one API response.
func (c *Collector) ObserveResponse(verb, path string, status int, d time.Duration) {
	if c == nil {
		return
	}

	c.requestsTotal.WithLabelValues(verb, path, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(verb, path).Observe(d.Seconds())
}

// ObserveBan records a 429 and the resulting baseline.
func (c *Collector) ObserveBan(path string, seconds int, known bool, baseline time.Duration) {
	if c == nil {
		return
	}

	c.bansTotal.WithLabelValues(path, strconv.FormatBool(known)).Inc()
	c.backoffBaseline.Set(baseline.Seconds())
}

// SetBackoff records the baseline after a reset.
func (c *Collector) SetBackoff(baseline time.Duration) {
	if c == nil {
		return
	}

	c.backoffBaseline.Set(baseline.Seconds())
}

// ObserveCycle records a finished polling cycle.
func (c *Collector) ObserveCycle(d time.Duration, err error) {
	if c == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	c.cyclesTotal.WithLabelValues(result).Inc()
	c.cycleDuration.Observe(d.Seconds())
}

// HandleSnapshot records the price state breakdown of snap.
func (c *Collector) HandleSnapshot(snap model.Snapshot) {
	if c == nil {
		return
	}

	counts := map[model.PriceState]int{
		model.PriceUnknown: 0,
		model.PriceZero:    0,
		model.PriceValue:   0,
	}
	for _, coin := range snap.Coins {
		counts[coin.Price.State]++
	}
	for state, n := range counts {
		c.coins.WithLabelValues(state.String()).Set(float64(n))
	}
	c.lastCycle.Set(float64(snap.FinishedAt.Unix()))
}

// RegisterWriter exposes writer counters read from stats on each scrape.
func (c *Collector) RegisterWriter(stats func() writer.WriterMetrics) {
	if c == nil {
		return
	}

	f := promauto.With(c.registerer)
	counter := func(name, help string, get func(writer.WriterMetrics) int64) {
		f.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      name,
				Help:      help,
			},
			func() float64 { return float64(get(stats())) },
		)
	}

	counter("snapshots_total", "Snapshots fully written", func(m writer.WriterMetrics) int64 { return m.Snapshots })
	counter("inserts_total", "Rate rows inserted", func(m writer.WriterMetrics) int64 { return m.Inserts })
	counter("conflicts_total", "Rate rows skipped as duplicates", func(m writer.WriterMetrics) int64 { return m.Conflicts })
	counter("errors_total", "Snapshots that failed to write", func(m writer.WriterMetrics) int64 { return m.Errors })
	counter("dropped_total", "Snapshots dropped on a full queue", func(m writer.WriterMetrics) int64 { return m.Dropped })
}
