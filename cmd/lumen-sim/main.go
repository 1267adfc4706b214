package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/five82/lumen/internal/logging"
	"github.com/five82/lumen/internal/simulator"
)

func main() {
	os.Exit(run())
}

func run() int {
	listen := flag.String("listen", ":8080", "address to serve the device API on")
	relayURL := flag.String("relay", "", "music relay base URL for /api/music (optional)")
	ip := flag.String("ip", "192.168.4.1", "IP address the lamp reports")
	apFallback := flag.Bool("ap-fallback", false, "report the fallback hotspot network")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, flush, err := logging.New(logging.Options{Level: *logLevel, Name: "sim"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen-sim: %v\n", err)
		return 1
	}
	defer flush()

	lamp := simulator.NewLamp(*ip, *apFallback)
	srv := simulator.NewServer(lamp, simulator.Options{
		RelayURL: *relayURL,
		Logger:   logger,
	})

	logger.Info("simulator starting",
		zap.String("addr", *listen),
		zap.String("ip", *ip),
		zap.Bool("ap_fallback", *apFallback),
		zap.String("relay", *relayURL),
	)
	if err := srv.ListenAndServe(ctx, *listen); err != nil {
		logger.Error("simulator stopped", zap.Error(err))
		return 1
	}
	return 0
}
