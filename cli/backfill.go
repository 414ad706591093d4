package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Ingest a bounded range of ticks and exit",
	Run: func(cmd *cobra.Command, args []string) {
		var cfg config.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			log.Fatalf("Failed to unmarshal config: %v", err)
		}

		startTick, _ := cmd.Flags().GetUint64("start-tick")
		endTick, _ := cmd.Flags().GetUint64("end-tick")
		if endTick <= startTick {
			log.Fatalf("Invalid tick range: startTick=%d, endTick=%d", startTick, endTick)
		}

		cfg.Ingest.StartTick = startTick
		cfg.Ingest.EndTick = endTick
		cfg.Ingest.StartFromLatest = false
		cfg.Ingest.Resume = false

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := runPipeline(ctx, cfg); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	backfillCmd.Flags().Uint64("start-tick", 0, "First tick of the range")
	backfillCmd.Flags().Uint64("end-tick", 0, "Last tick of the range (inclusive)")
	rootCmd.AddCommand(backfillCmd)
}
