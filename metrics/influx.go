package metrics

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

const defaultReportInterval = 15 * time.Second

// InfluxReporter pushes periodic ingestion status points for the Grafana
// dashboards sitting next to the explorer.
type InfluxReporter struct {
	client   influxdb2.Client
	writer   api.WriteAPI
	interval time.Duration
}

func NewInfluxReporter(cfg config.InfluxConfig) *InfluxReporter {
	slog.Info("connecting to influx", "url", cfg.URL)
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultReportInterval
	}
	return &InfluxReporter{
		client:   client,
		writer:   client.WriteAPI(cfg.Org, cfg.Bucket),
		interval: interval,
	}
}

// Run reports until ctx is cancelled.
func (r *InfluxReporter) Run(ctx context.Context, status func() model.StatusSnapshot) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := status()
			point := influxdb2.NewPoint("ingest_status",
				map[string]string{"state": s.StateName},
				map[string]interface{}{
					"ticks_processed": int64(s.TicksProcessed),
					"checkpoint":      int64(s.Checkpoint),
				},
				time.Now())
			r.writer.WritePoint(point)
			r.writer.Flush()
		}
	}
}

func (r *InfluxReporter) Close() {
	r.writer.Flush()
	r.client.Close()
}
