package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/five82/lumen/internal/config"
	"github.com/five82/lumen/internal/logging"
	"github.com/five82/lumen/internal/relay"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override relay config path (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadRelay(*configPath, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen-relay: %v\n", err)
		return 1
	}

	logger, flush, err := logging.New(logging.Options{Level: cfg.LogLevel, Name: "relay"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen-relay: %v\n", err)
		return 1
	}
	defer flush()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := newServer(cfg, logger, reg)
	if err != nil {
		logger.Error("relay setup failed", zap.Error(err))
		return 1
	}

	logger.Info("relay starting",
		zap.String("addr", cfg.Listen),
		zap.Bool("playback", cfg.HasRefreshToken()),
	)
	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		logger.Error("relay stopped", zap.Error(err))
		return 1
	}
	logger.Info("relay stopped")
	return 0
}

// newServer wires the token cache, upstream client, tempo cache, and HTTP
// surface. Without a refresh token only the auth helper is served.
func newServer(cfg config.Relay, logger *zap.Logger, reg *prometheus.Registry) (*relay.Server, error) {
	metrics := relay.NewMetrics(reg)
	oauthConf := relay.NewOAuthConfig(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL, cfg.AuthURL, cfg.TokenURL)

	opts := relay.ServerOptions{
		OAuth:    oauthConf,
		Gatherer: reg,
		Logger:   logger.Named("http"),
	}
	if cfg.HasRefreshToken() {
		tokens := relay.NewTokenCache(oauthConf, cfg.RefreshToken, metrics)
		upstream, err := relay.NewUpstream(cfg.APIBaseURL, tokens, metrics)
		if err != nil {
			return nil, fmt.Errorf("init upstream: %w", err)
		}
		features := relay.NewFeatureCache(upstream.Tempo, logger.Named("features"), metrics)
		opts.Relay = relay.NewRelay(upstream, features, metrics, logger.Named("playback"))
	} else {
		logger.Warn("no refresh token configured; visit /login to create one",
			zap.String("env", config.EnvRefreshToken))
	}
	return relay.NewServer(opts), nil
}
