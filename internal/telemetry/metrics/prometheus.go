package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus creates a registry with build info, runtime and process
// collectors, plus any extra collectors given (e.g. the db pool stats).
func SetupPrometheus(extra ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, c := range extra {
		if c != nil {
			promRegistry.MustRegister(c)
		}
	}

	return promRegistry
}
