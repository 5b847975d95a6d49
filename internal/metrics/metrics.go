package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MarksWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "attendance_marks_total",
		Help: "Attendance records written, by operation",
	}, []string{"op"})
	RowFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "attendance_row_failures_total",
		Help: "Per-row failures inside bulk attendance passes",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "handler_errors_total",
		Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portal", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(MarksWritten, RowFailures, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
