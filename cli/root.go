package cli

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "qingest",
	Short: "qingest streams qubic ticks into the explorer store",
	Long: "qingest subscribes to the tick stream of a qubic node, batches the incoming " +
		"tick records and flushes them transactionally into the explorer database, " +
		"resuming from the last checkpoint across restarts and node failover",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		return errors.New("unable to run root command")
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "path to the configuration file")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().StringSlice("node.urls", nil, "candidate qubic node websocket urls, tried in order")
	_ = viper.BindPFlag("node.urls", rootCmd.PersistentFlags().Lookup("node.urls"))
	rootCmd.PersistentFlags().String("db.url", "", "explorer database url")
	_ = viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db.url"))
}

func initConfig() {
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		fmt.Println("config key nil")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("QINGEST")
	viper.AutomaticEnv()
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("node.dialTimeout", "10s")
	viper.SetDefault("node.reconnectDelay", "500ms")
	viper.SetDefault("node.reconnectDelayMax", "30s")
	viper.SetDefault("node.maxConsecutiveFailures", 30)
	viper.SetDefault("node.channelCapacity", 256)
	viper.SetDefault("node.reorderWindow", 64)
	viper.SetDefault("ingest.batchSize", 100)
	viper.SetDefault("ingest.flushInterval", "5s")
	viper.SetDefault("ingest.flushRetries", 3)
	viper.SetDefault("ingest.flushRetryDelay", "1s")
	viper.SetDefault("ingest.resume", true)
	viper.SetDefault("metrics.addr", ":6060")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Failed to read config file: %v", err)
	}
	initLogging()
}

func initLogging() {
	logLevel := viper.GetString("logging.level")
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	default:
		level = slog.LevelInfo
	}
	slog.Info("Setting log level", "level", logLevel)
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	slog.SetDefault(slog.New(handler))
}
