package metrics

import (
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "gatehouse"
)

var (
	once     sync.Once
	registry *prometheus.Registry

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	ConcurrentRequests         prometheus.Gauge

	CheckDecisionsTotal *prometheus.CounterVec
	BackendUpdatesTotal *prometheus.CounterVec
	RecordsTotal        *prometheus.GaugeVec

	PanicRecoveriesTotal *prometheus.CounterVec

	Up          prometheus.Gauge
	Info        *prometheus.GaugeVec
	Goroutines  prometheus.GaugeFunc
	MemoryBytes *prometheus.GaugeVec
)

// Collectors are created at package load so call sites never see a nil
// metric; Init only wires them into the registry.
func init() {
	initMetrics()
}

func initMetrics() {
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"method", "endpoint"},
	)

	ConcurrentRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "concurrent_requests",
			Help:      "Number of concurrent HTTP requests",
		},
	)

	CheckDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_decisions_total",
			Help:      "Total number of policy check decisions",
		},
		[]string{"decision"},
	)

	BackendUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_updates_total",
			Help:      "Total number of backend change notifications applied",
		},
		[]string{"kind", "op"},
	)

	RecordsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Number of records held in memory per entity kind",
		},
		[]string{"kind"},
	)

	PanicRecoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panic_recoveries_total",
			Help:      "Total number of panic recoveries",
		},
		[]string{"component"},
	)

	Up = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "up",
			Help:      "Gatehouse liveness indicator (1=up, 0=down)",
		},
	)

	Info = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "info",
			Help:      "Gatehouse build information",
		},
		[]string{"version", "backend"},
	)

	Goroutines = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
		func() float64 {
			return float64(runtime.NumGoroutine())
		},
	)

	MemoryBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_bytes",
			Help:      "Memory usage in bytes",
		},
		[]string{"type"},
	)
}

func initRegistry() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry.MustRegister(HTTPRequestsTotal)
	registry.MustRegister(HTTPRequestDurationSeconds)
	registry.MustRegister(ConcurrentRequests)

	registry.MustRegister(CheckDecisionsTotal)
	registry.MustRegister(BackendUpdatesTotal)
	registry.MustRegister(RecordsTotal)

	registry.MustRegister(PanicRecoveriesTotal)

	registry.MustRegister(Up)
	registry.MustRegister(Info)
	registry.MustRegister(Goroutines)
	registry.MustRegister(MemoryBytes)

	Up.Set(1)
}

// Init initializes the metrics registry with all collectors.
func Init() *prometheus.Registry {
	once.Do(initRegistry)
	return registry
}

// GetRegistry returns the prometheus registry
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return Init()
	}
	return registry
}

// UpdateMemoryMetrics updates memory-related metrics
func UpdateMemoryMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	MemoryBytes.WithLabelValues("heap_alloc").Set(float64(m.HeapAlloc))
	MemoryBytes.WithLabelValues("heap_sys").Set(float64(m.HeapSys))
	MemoryBytes.WithLabelValues("stack_inuse").Set(float64(m.StackInuse))
}
