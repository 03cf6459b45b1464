// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// Collector implements the journal and HTTP metrics.
type Collector struct {
	entriesCreated *prometheus.CounterVec
	aiReplies      *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		entriesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serenify_journal_entries_created_total",
			Help: "Journal entries written, by mood label.",
		}, []string{"mood"}),
		aiReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serenify_ai_replies_total",
			Help: "AI reply attempts, by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serenify_http_requests_total",
			Help: "HTTP responses, by route pattern and status code.",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "serenify_http_request_duration_seconds",
			Help:    "HTTP handler latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(c.entriesCreated, c.aiReplies, c.httpRequests, c.httpLatency)
	return c
}

func (c *Collector) RecordEntryCreated(mood models.Mood) {
	label := string(mood)
	if !mood.Known() {
		label = "unknown"
	}
	c.entriesCreated.WithLabelValues(label).Inc()
}

func (c *Collector) RecordAIReply(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	c.aiReplies.WithLabelValues(outcome).Inc()
}

// RecordHTTP records one finished request. route should be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordHTTP(route string, statusCode int, d time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
