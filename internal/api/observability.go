package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-player labels, to keep the
// broadcast fan-out from turning into an unbounded label set under churn).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monotanks_tick_duration_seconds",
		Help:    "Time spent running simulation phases 1-10 for one tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	tickOverrunTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monotanks_tick_overrun_total",
		Help: "Ticks where elapsed time exceeded the configured broadcast interval",
	})

	broadcastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monotanks_broadcast_duration_seconds",
		Help:    "Time spent rendering and fanning out one tick's broadcasts",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monotanks_player_count",
		Help: "Current number of registered players",
	})

	bulletCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monotanks_bullet_count",
		Help: "Current number of live bullets",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monotanks_connection_rejected_total",
		Help: "Connections rejected at handshake",
	}, []string{"reason"}) // bounded: "join_code", "slots_full", "malformed"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monotanks_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monotanks_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monotanks_websocket_connections_active",
		Help: "Currently active WebSocket connections (players and spectators)",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monotanks_websocket_messages_total",
		Help: "Total WebSocket frames sent",
	})
)

// ObservabilityConfig configures the debug/metrics server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // should stay "127.0.0.1:6060" in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the internal observability server. It binds to
// localhost unless ALLOW_DEBUG_EXTERNAL is explicitly set - the tick loop
// and broadcast fan-out are the only things worth profiling here, and
// pprof has no business being reachable from match clients.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("📊 debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records one tick's phase-1-10 duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// RecordTickOverrun increments the overrun counter (logged,
// never aborts the tick).
func RecordTickOverrun() {
	tickOverrunTotal.Inc()
}

// RecordBroadcast records one tick's render+fan-out duration.
func RecordBroadcast(duration time.Duration) {
	broadcastDuration.Observe(duration.Seconds())
}

// UpdatePlayerCount updates the player gauge.
func UpdatePlayerCount(count int) {
	playerCount.Set(float64(count))
}

// UpdateBulletCount updates the live-bullet gauge.
func UpdateBulletCount(count int) {
	bulletCount.Set(float64(count))
}

// RecordConnectionRejected increments the handshake-rejection counter.
// reason must be one of: "join_code", "slots_full", "malformed".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates the active WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
