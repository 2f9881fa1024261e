package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Collector counts console traffic. Counters only grow.
type Collector struct {
	requests    uint64
	errors      uint64
	rateLimited uint64
	redirects   uint64
	loading     uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	atomic.AddUint64(&c.requests, 1)
}

func (c *Collector) IncErrors() {
	atomic.AddUint64(&c.errors, 1)
}

func (c *Collector) IncRateLimited() {
	atomic.AddUint64(&c.rateLimited, 1)
}

// IncRedirects counts guard redirects.
func (c *Collector) IncRedirects() {
	atomic.AddUint64(&c.redirects, 1)
}

// IncLoading counts requests answered while the session was resolving.
func (c *Collector) IncLoading() {
	atomic.AddUint64(&c.loading, 1)
}

type Snapshot struct {
	Requests    uint64
	Errors      uint64
	RateLimited uint64
	Redirects   uint64
	Loading     uint64
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Requests:    atomic.LoadUint64(&c.requests),
		Errors:      atomic.LoadUint64(&c.errors),
		RateLimited: atomic.LoadUint64(&c.rateLimited),
		Redirects:   atomic.LoadUint64(&c.redirects),
		Loading:     atomic.LoadUint64(&c.loading),
	}
}

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var snap Snapshot
	if h.collector != nil {
		snap = h.collector.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeCounter(w, "hireflow_console_requests_total", "Total number of console HTTP requests.", snap.Requests)
	writeCounter(w, "hireflow_console_errors_total", "Total number of 5xx console responses.", snap.Errors)
	writeCounter(w, "hireflow_console_rate_limited_total", "Total number of throttled login attempts.", snap.RateLimited)
	writeCounter(w, "hireflow_console_guard_redirects_total", "Total number of guard redirects.", snap.Redirects)
	writeCounter(w, "hireflow_console_guard_loading_total", "Total number of requests answered while the session was resolving.", snap.Loading)
}

func writeCounter(w http.ResponseWriter, name, help string, value uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
