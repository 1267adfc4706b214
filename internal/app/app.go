package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/lumen/internal/config"
	"github.com/five82/lumen/internal/device"
	"github.com/five82/lumen/internal/logging"
	"github.com/five82/lumen/internal/panel"
	"github.com/five82/lumen/internal/prefs"
	"github.com/five82/lumen/internal/state"
	"github.com/five82/lumen/internal/ui"
)

// initialProbeTimeout bounds the status check made before the UI starts.
const initialProbeTimeout = 2 * time.Second

// Options configure the lumen panel.
type Options struct {
	ConfigPath string
	DeviceAddr string // overrides device_addr when set
	LogLevel   string // overrides log_level when set
	PrefsPath  string // overrides prefs_file when set
}

// session holds everything Run wires together before handing off to the UI.
type session struct {
	cfg        config.Config
	log        *zap.Logger
	flush      func()
	prefs      prefs.Prefs
	controller *panel.Controller
}

// Run boots the lumen panel until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.flush()

	s.controller.Start()
	defer s.controller.Stop()

	err = ui.Run(ui.Options{
		Context:   ctx,
		Panel:     s.controller,
		Logger:    s.log,
		Prefs:     s.prefs,
		PrefsPath: s.cfg.PrefsPath,
		LogPath:   s.cfg.LogFile,
		LogLines:  s.cfg.DiagLogLines,
	})
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal; not a failure.
		err = nil
	}
	s.log.Info("panel stopped", zap.Error(err))
	return err
}

// newSession loads config, opens the log file, and builds a stopped
// controller with one status poll already applied.
func newSession(ctx context.Context, opts Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.DeviceAddr != "" {
		cfg.DeviceAddr = opts.DeviceAddr
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.PrefsPath != "" {
		cfg.PrefsPath = opts.PrefsPath
	}

	logger, flush, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Name:  "lumen",
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	userPrefs, err := prefs.Load(cfg.PrefsPath)
	if err != nil {
		logger.Warn("prefs unavailable, using defaults", zap.String("path", cfg.PrefsPath), zap.Error(err))
	}

	client, err := device.NewClient(cfg.DeviceAddr)
	if err != nil {
		flush()
		return nil, fmt.Errorf("init device client: %w", err)
	}

	controller, err := panel.New(ctx, panel.Options{
		Device:      client,
		Store:       state.NewStore(device.ModeRemote, panel.DefaultPartyHz),
		Logger:      logger.Named("panel"),
		StatusEvery: cfg.StatusPoll,
		MusicEvery:  cfg.MusicPoll,
	})
	if err != nil {
		flush()
		return nil, fmt.Errorf("init panel: %w", err)
	}

	logger.Info("panel starting",
		zap.String("device", client.BaseURL()),
		zap.Duration("status_poll", cfg.StatusPoll),
		zap.Duration("music_poll", cfg.MusicPoll),
		zap.String("theme", userPrefs.Theme),
	)

	// Populate the header before the first frame; an unreachable lamp is
	// reported by the UI, not treated as fatal.
	probeCtx, cancel := context.WithTimeout(ctx, initialProbeTimeout)
	controller.PollStatus(probeCtx)
	cancel()

	return &session{
		cfg:        cfg,
		log:        logger,
		flush:      flush,
		prefs:      userPrefs,
		controller: controller,
	}, nil
}
