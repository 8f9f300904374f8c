package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus-метрики реестра и построения мира.
// Nil-указатель допустим: все методы ничего не делают.
type Metrics struct {
	chunks        prometheus.Gauge
	notifications *prometheus.CounterVec
	insertErrors  prometheus.Counter
	generated     prometheus.Counter
	buildDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "registry",
			Name:      "chunks",
			Help:      "Количество зарегистрированных чанков.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "registry",
			Name:      "notifications_total",
			Help:      "Уведомления рендереру по типу (insert/update/remove).",
		}, []string{"kind"}),
		insertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "registry",
			Name:      "insert_errors_total",
			Help:      "Отклонённые вставки (коллизии ключей, неверные размеры).",
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "builder",
			Name:      "chunks_generated_total",
			Help:      "Сгенерированные чанки.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "builder",
			Name:      "build_duration_seconds",
			Help:      "Длительность построения мира (генерация + слияние).",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	reg.MustRegister(m.chunks, m.notifications, m.insertErrors, m.generated, m.buildDuration)
	return m
}

func (m *Metrics) setChunks(n int) {
	if m == nil {
		return
	}
	m.chunks.Set(float64(n))
}

func (m *Metrics) notified(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) insertFailed() {
	if m == nil {
		return
	}
	m.insertErrors.Inc()
}

func (m *Metrics) generatedChunks(n int) {
	if m == nil {
		return
	}
	m.generated.Add(float64(n))
}

func (m *Metrics) observeBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(d.Seconds())
}
