package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeschoolhub", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"route", "status"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "homeschoolhub", Name: "handler_errors_total", Help: "Handler errors",
	})
	QuizGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeschoolhub", Name: "quiz_generations_total", Help: "Quiz generation outcomes by error kind (ok = success)",
	}, []string{"outcome"})
	QuizGenRolling = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "homeschoolhub", Name: "quiz_gen_rolling_count", Help: "Generations counted in the trailing 24h window",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "homeschoolhub", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HandlerErrors, QuizGenerations, QuizGenRolling, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
