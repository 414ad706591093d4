package cli

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/db"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/ingest"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/metrics"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/node"
)

var startCommand = &cobra.Command{
	Use:   "start",
	Short: "start live tick ingestion",
	Run:   start,
}

func init() {
	rootCmd.AddCommand(startCommand)
}

func start(cmd *cobra.Command, args []string) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to unmarshal config: %v", err)
	}
	slog.Info("starting qingest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runPipeline(ctx, cfg); err != nil {
		os.Exit(1)
	}
}

// runPipeline wires the connection manager, batch writer and supervisor and
// drives them to a terminal state.
func runPipeline(ctx context.Context, cfg config.Config) error {
	handler, err := db.NewHandler(ctx, cfg.DB)
	if err != nil {
		slog.Error("unable to open explorer database", "error", err)
		return err
	}
	defer handler.Close()

	dialer := node.NewDialer(cfg.Node.DialTimeout)
	manager := node.NewManager(cfg.Node, dialer)
	writer := ingest.NewWriter(cfg.Ingest, handler, handler)
	supervisor := ingest.NewSupervisor(cfg.Ingest, manager, writer, handler)

	if cfg.Metrics.Addr != "" {
		go metrics.Serve(cfg.Metrics.Addr, supervisor.Status)
	}
	if cfg.Influx.URL != "" {
		reporter := metrics.NewInfluxReporter(cfg.Influx)
		defer reporter.Close()
		go reporter.Run(ctx, supervisor.Status)
	}
	if cfg.Node.NodesFile != "" {
		go node.WatchNodesFile(ctx, cfg.Node.NodesFile, manager)
	}

	if err := supervisor.Run(ctx); err != nil {
		slog.Error("ingestion failed", "error", err)
		return err
	}
	return nil
}
