// Package metrics exposes Prometheus instrumentation for the pipeline and
// the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Namespace = "framestrip"
	Subsystem = ""
	Factory   = promauto.With(prometheus.DefaultRegisterer)
)

func FQName(name string) string {
	return prometheus.BuildFQName(Namespace, Subsystem, name)
}
