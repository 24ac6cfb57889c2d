package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PageMetrics = (*Prometheus)(nil)

const namespace = "pagechat"

// Prometheus records page and HTTP metrics on a private registry
type Prometheus struct {
	registry      *prometheus.Registry
	indexOutcomes *prometheus.CounterVec
	pageLoads     *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them together with the
// Go runtime and process collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		indexOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_outcomes_total",
			Help:      "Lazy indexing results per page load.",
		}, []string{"outcome"}),
		pageLoads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_load_seconds",
			Help:      "Time to prepare a chat page, including any ingestion.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}

	p.registry.MustRegister(
		p.indexOutcomes,
		p.pageLoads,
		p.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveIndexOutcome counts one lazy-indexing result
func (p *Prometheus) ObserveIndexOutcome(outcome domain.IndexOutcome) {
	p.indexOutcomes.WithLabelValues(string(outcome)).Inc()
}

// ObservePageLoad records page preparation time
func (p *Prometheus) ObservePageLoad(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.pageLoads.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveRequest counts one HTTP response
func (p *Prometheus) ObserveRequest(method string, status int) {
	p.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Registry exposes the registry for tests and custom collectors
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
