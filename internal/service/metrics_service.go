package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/virtual-classroom/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom/pkg/errors"
)

const (
	outcomeOK = "ok"
)

// MetricsService encapsulates Prometheus instrumentation of registry operations and provides snapshots for the menu.
type MetricsService struct {
	registry          *prometheus.Registry
	operationTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	classrooms        prometheus.Gauge

	operationCount uint64
	failureCount   uint64

	mu          sync.Mutex
	byOperation map[string]uint64
}

// NewMetricsService registers registry collectors on a private Prometheus registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	operationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classroom_operations_total",
		Help: "Total number of registry operations by outcome",
	}, []string{"operation", "outcome"})

	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classroom_operation_duration_seconds",
		Help:    "Duration of registry operations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	classrooms := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "classrooms",
		Help: "Number of classrooms currently registered",
	})

	registry.MustRegister(operationTotal, operationDuration, classrooms)

	return &MetricsService{
		registry:          registry,
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		classrooms:        classrooms,
		byOperation:       make(map[string]uint64),
	}
}

// Registry exposes the underlying Prometheus registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation records one registry operation. Failed operations are labelled with their error code.
func (m *MetricsService) ObserveOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = appErrors.FromError(err).Code
		atomic.AddUint64(&m.failureCount, 1)
	}
	m.operationTotal.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	atomic.AddUint64(&m.operationCount, 1)

	m.mu.Lock()
	m.byOperation[operation]++
	m.mu.Unlock()
}

// SetClassrooms updates the classroom gauge.
func (m *MetricsService) SetClassrooms(count int) {
	if m == nil {
		return
	}
	m.classrooms.Set(float64(count))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.RegistryStats {
	if m == nil {
		return models.RegistryStats{ByOperation: map[string]uint64{}}
	}
	m.mu.Lock()
	byOperation := make(map[string]uint64, len(m.byOperation))
	for op, count := range m.byOperation {
		byOperation[op] = count
	}
	m.mu.Unlock()

	return models.RegistryStats{
		OperationsTotal:  atomic.LoadUint64(&m.operationCount),
		OperationsFailed: atomic.LoadUint64(&m.failureCount),
		ByOperation:      byOperation,
		GeneratedAt:      time.Now().UTC(),
	}
}
