package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/lumen/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override panel config path (optional)")
	deviceAddr := flag.String("device", "", "lamp address, host[:port] or URL (optional)")
	logLevel := flag.String("log-level", "", "debug, info, warn, or error (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		DeviceAddr: *deviceAddr,
		LogLevel:   *logLevel,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		return 1
	}
	return 0
}
