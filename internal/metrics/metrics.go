// Package metrics provides Prometheus collectors for store directory loads and store switches.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the directory loader, switch coordinator and dev backend record through.
type Recorder interface {
	RecordTierOutcome(tier, outcome string)
	RecordDirectoryLoad(source string, stores int, duration time.Duration)
	RecordStaleDiscard()
	RecordSwitch(result string)
	RecordHTTPStatus(route string, statusCode int)
}

// Collector records into Prometheus metrics.
type Collector struct {
	tierOutcomes  *prometheus.CounterVec
	loadLatency   prometheus.Histogram
	loadedStores  *prometheus.GaugeVec
	staleDiscards prometheus.Counter
	switches      *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tierOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "martory_directory_tier_outcomes_total",
			Help: "Store directory tier attempts by tier and outcome",
		}, []string{"tier", "outcome"}),
		loadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "martory_directory_load_seconds",
			Help:    "Store directory load latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		loadedStores: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "martory_directory_stores",
			Help: "Number of stores returned by the last directory load",
		}, []string{"source"}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "martory_directory_stale_discards_total",
			Help: "Directory results dropped because a newer load was issued",
		}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "martory_store_switches_total",
			Help: "Store switch attempts by result",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "martory_http_status_total",
			Help: "HTTP responses by route and status code",
		}, []string{"route", "status_code"}),
	}

	reg.MustRegister(
		c.tierOutcomes,
		c.loadLatency,
		c.loadedStores,
		c.staleDiscards,
		c.switches,
		c.httpStatus,
	)
	return c
}

func (c *Collector) RecordTierOutcome(tier, outcome string) {
	c.tierOutcomes.WithLabelValues(tier, outcome).Inc()
}

func (c *Collector) RecordDirectoryLoad(source string, stores int, duration time.Duration) {
	c.loadLatency.Observe(duration.Seconds())
	c.loadedStores.WithLabelValues(source).Set(float64(stores))
}

func (c *Collector) RecordStaleDiscard() {
	c.staleDiscards.Inc()
}

func (c *Collector) RecordSwitch(result string) {
	c.switches.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPStatus(route string, statusCode int) {
	c.httpStatus.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
}

// Handler exposes the metrics registered with gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when no registry is configured.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordTierOutcome(string, string) {}
func (Nop) RecordDirectoryLoad(string, int, time.Duration) {}
func (Nop) RecordStaleDiscard() {}
func (Nop) RecordSwitch(string) {}
func (Nop) RecordHTTPStatus(string, int) {}
