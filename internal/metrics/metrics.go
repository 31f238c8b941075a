// Package metrics exposes Prometheus counters for games, question loads and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bollyquiz"

// Common label keys.
const (
	LabelOp     = "op"
	LabelResult = "result"
	LabelSource = "source"
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	gamesStarted  prometheus.Counter
	gamesFinished *prometheus.CounterVec
	activeGames   prometheus.Gauge
	transitions   *prometheus.CounterVec
	loads         *prometheus.CounterVec
	loadLatency   *prometheus.HistogramVec
	requests      *prometheus.CounterVec
	reqLatency    *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games created from a valid setup.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games removed from the registry, by how they ended.",
		}, []string{LabelResult}),
		activeGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Games currently held in memory.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_transitions_total",
			Help:      "Host actions applied to or rejected by a game.",
		}, []string{LabelOp, LabelResult}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_loads_total",
			Help:      "Question source loads.",
		}, []string{LabelSource, LabelResult}),
		loadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "question_load_duration_seconds",
			Help:      "Question source load latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelSource}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelMethod, LabelRoute}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.gamesStarted, r.gamesFinished, r.activeGames, r.transitions,
		r.loads, r.loadLatency, r.requests, r.reqLatency,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) GameStarted() {
	if r == nil {
		return
	}
	r.gamesStarted.Inc()
	r.activeGames.Inc()
}

// GameFinished records a game leaving memory. how is "completed",
// "abandoned" or "expired".
func (r *Recorder) GameFinished(how string) {
	if r == nil {
		return
	}
	r.gamesFinished.WithLabelValues(how).Inc()
	r.activeGames.Dec()
}

func (r *Recorder) Transition(op string, err error) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(op, result(err)).Inc()
}

// ObserveLoad matches questions.ObserveFunc.
func (r *Recorder) ObserveLoad(source string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.loads.WithLabelValues(source, result(err)).Inc()
	r.loadLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// Middleware counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.reqLatency.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
