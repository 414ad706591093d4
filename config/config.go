package config

import "time"

// Config holds the application configuration
type Config struct {
	Node    NodeConfig    `mapstructure:"node"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Influx  InfluxConfig  `mapstructure:"influx"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type NodeConfig struct {
	// URLs are candidate node endpoints, tried in order on every sweep.
	URLs []string `mapstructure:"urls"`
	// NodesFile optionally points to a hot-reloaded list of candidate URLs,
	// one per line.
	NodesFile         string        `mapstructure:"nodesFile"`
	DialTimeout       time.Duration `mapstructure:"dialTimeout"`
	ReconnectDelay    time.Duration `mapstructure:"reconnectDelay"`
	ReconnectDelayMax time.Duration `mapstructure:"reconnectDelayMax"`
	// MaxConsecutiveFailures caps consecutive dial sweeps or no-progress
	// stream drops before the manager gives up with a fatal error.
	MaxConsecutiveFailures int `mapstructure:"maxConsecutiveFailures"`
	ChannelCapacity        int `mapstructure:"channelCapacity"`
	// ReorderWindow bounds how many out-of-order ticks the manager buffers
	// before declaring the stream unreconcilable.
	ReorderWindow int `mapstructure:"reorderWindow"`
}

type IngestConfig struct {
	BatchSize       int           `mapstructure:"batchSize"`
	FlushInterval   time.Duration `mapstructure:"flushInterval"`
	FlushRetries    int           `mapstructure:"flushRetries"`
	FlushRetryDelay time.Duration `mapstructure:"flushRetryDelay"`
	StartTick       uint64        `mapstructure:"startTick"`
	EndTick         uint64        `mapstructure:"endTick"`
	StartFromLatest bool          `mapstructure:"startFromLatest"`
	Resume          bool          `mapstructure:"resume"`
}

type DBConfig struct {
	URL string `mapstructure:"url"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type InfluxConfig struct {
	URL      string        `mapstructure:"url"`
	Token    string        `mapstructure:"token"`
	Org      string        `mapstructure:"org"`
	Bucket   string        `mapstructure:"bucket"`
	Interval time.Duration `mapstructure:"interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
