package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "classtrack_reports_built_total",
	Help: "Report computations by kind.",
}, []string{"kind"})
