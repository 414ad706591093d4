package main

import (
	"log/slog"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/cli"
)

var (
	version   string
	buildTime string
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime
	// start the cobra cli
	if err := cli.Execute(); err != nil {
		slog.Error("Unable to execute", "error", err)
	}
}
