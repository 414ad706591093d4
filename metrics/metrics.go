package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

var (
	ticksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qubic_ingest_ticks_total",
		Help: "Ticks durably flushed to the sink",
	})
	connectionState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qubic_ingest_connection_state",
		Help: "Node connection state (0=disconnected 1=connecting 2=subscribed 3=reconnecting)",
	})
	checkpoint = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qubic_ingest_checkpoint",
		Help: "Last durably checkpointed tick",
	})
	reconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qubic_ingest_reconnects_total",
		Help: "Mid-stream reconnect attempts",
	})
	flushDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qubic_ingest_flush_duration_seconds",
		Help:    "Batch flush latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	flushBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qubic_ingest_flush_batch_size",
		Help:    "Records per flushed batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

func init() {
	prometheus.MustRegister(ticksProcessed, connectionState, checkpoint,
		reconnects, flushDuration, flushBatchSize)
}

func AddTicksProcessed(n int) {
	ticksProcessed.Add(float64(n))
}

func SetConnectionState(s model.ConnectionState) {
	connectionState.Set(float64(s))
}

func SetCheckpoint(tick uint64) {
	checkpoint.Set(float64(tick))
}

func IncReconnects() {
	reconnects.Inc()
}

func ObserveFlush(d time.Duration, size int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	flushDuration.WithLabelValues(status).Observe(d.Seconds())
	if err == nil {
		flushBatchSize.Observe(float64(size))
	}
}
