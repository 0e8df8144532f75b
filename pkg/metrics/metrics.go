// Package metrics exposes the Prometheus metrics of the Yupdates client.
// The metrics themselves are defined in their packages (client, cache,
// pacing) via promauto; this package serves and summarizes them.
package metrics

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prefix is shared by every metric the client registers.
const Prefix = "yupdates_"

// Registry is the default Prometheus registry used by the Yupdates client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry collected.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the default registry for processes embedding the client.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Sample is one summarized metric family.
type Sample struct {
	Name  string
	Value float64
}

// Snapshot sums every yupdates_* counter and gauge across its labels, and
// reports histogram observation counts as <name>_count. Results are sorted
// by name.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, Prefix) {
			continue
		}

		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		if mf.GetType().String() == "HISTOGRAM" {
			name += "_count"
		}

		samples = append(samples, Sample{Name: name, Value: total})
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - yupdates_requests_total{endpoint, status} (Counter): API calls by endpoint and HTTP status
//     ("transport_error" when no response arrived)
//   - yupdates_request_duration_seconds{endpoint} (Histogram): API call duration
//   - yupdates_errors_total{kind} (Counter): Errors returned by the client by kind
//   - yupdates_chunks_submitted_total (Counter): Item chunks accepted
//   - yupdates_items_submitted_total (Counter): Items accepted
//
// Pacing Metrics (pkg/pacing):
//   - yupdates_pacing_pauses_total (Counter): Pauses between chunks
//   - yupdates_pacing_pause_seconds (Histogram): Time spent pausing
//   - yupdates_pacing_pauses_interrupted_total (Counter): Pauses cut short by the context
//
// Cache Metrics (pkg/cache):
//   - yupdates_cache_hits_total{layer} (Counter): Read cache hits by layer (memory, redis)
//   - yupdates_cache_misses_total (Counter): Read cache misses
//   - yupdates_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(yupdates_cache_hits_total[5m])) /
//   (sum(rate(yupdates_cache_hits_total[5m])) + sum(rate(yupdates_cache_misses_total[5m])))
//
//   # Failed calls by kind
//   sum by (kind) (rate(yupdates_errors_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(yupdates_request_duration_seconds_bucket[5m]))
