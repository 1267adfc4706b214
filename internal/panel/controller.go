package panel

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/lumen/internal/device"
	"github.com/five82/lumen/internal/sched"
	"github.com/five82/lumen/internal/state"
)

// Cadences and debounce windows used by the panel.
const (
	DefaultStatusInterval = 6 * time.Second
	DefaultMusicInterval  = 4 * time.Second
	ProgressTick          = time.Second

	ColorDebounce = 180 * time.Millisecond
	PartyDebounce = 250 * time.Millisecond
	MinInterval   = 40 * time.Millisecond
)

// Party strobe bounds in Hz.
const (
	MinPartyHz     = 0.05
	MaxPartyHz     = 5.0
	DefaultPartyHz = 0.6
)

// Options configure a Controller.
type Options struct {
	Device device.Controller
	Store  *state.Store
	Logger *zap.Logger

	StatusEvery time.Duration // zero uses DefaultStatusInterval
	MusicEvery  time.Duration // zero uses DefaultMusicInterval
	TickEvery   time.Duration // zero uses ProgressTick

	ColorWait   time.Duration // zero uses ColorDebounce
	PartyWait   time.Duration // zero uses PartyDebounce
	MinInterval time.Duration // zero uses MinInterval
}

// Controller owns the panel's behavior: polling, color dispatch, mode and
// party controls, and the power lock. The UI holds a reference to it and
// renders the Store it writes to.
type Controller struct {
	ctx    context.Context
	device device.Controller
	store  *state.Store
	log    *zap.Logger

	statusTask   *sched.Task
	musicTask    *sched.Task
	progressTask *sched.Task

	colors    *ColorDispatcher
	sendColor func(device.RGB)
	syncParty func(string)
}

// New builds a stopped Controller. ctx bounds every background request.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Device == nil {
		return nil, fmt.Errorf("panel requires a device client")
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(device.ModeRemote, DefaultPartyHz)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		ctx:    ctx,
		device: opts.Device,
		store:  store,
		log:    logger,
	}

	c.statusTask = sched.NewTask("status", orDefault(opts.StatusEvery, DefaultStatusInterval), c.PollStatus)
	c.musicTask = sched.NewTask("music", orDefault(opts.MusicEvery, DefaultMusicInterval), c.PollMusic)
	c.progressTask = sched.NewTask("progress", orDefault(opts.TickEvery, ProgressTick),
		func(context.Context) { c.TickProgress() }, sched.WithoutImmediateRun())

	c.colors = NewColorDispatcher(ctx, DispatcherOptions{
		Send:   c.device.PostRGB,
		Before: c.ensureMode(device.ModeRemote),
		Accept: store.SetColor,
		Logger: logger,
	})

	minInterval := orDefault(opts.MinInterval, MinInterval)
	c.sendColor = sched.Debounce(c.colors.Submit, orDefault(opts.ColorWait, ColorDebounce), minInterval)
	c.syncParty = sched.Debounce(c.applyParty, orDefault(opts.PartyWait, PartyDebounce), minInterval)
	return c, nil
}

// Store exposes the state the controller writes to.
func (c *Controller) Store() *state.Store {
	return c.store
}

// Colors exposes the dispatcher, mainly so callers can wait for it to drain.
func (c *Controller) Colors() *ColorDispatcher {
	return c.colors
}

// Start begins status polling and music polling. Music is always polled so
// now-playing info stays visible outside music mode.
func (c *Controller) Start() {
	c.StartMusicPolling()
	c.statusTask.Start(c.ctx)
}

// Stop halts every periodic task.
func (c *Controller) Stop() {
	c.statusTask.Stop()
	c.StopMusicPolling()
}

// StartMusicPolling starts the music fetch and progress tick if they are not
// already running.
func (c *Controller) StartMusicPolling() {
	c.musicTask.Start(c.ctx)
	c.progressTask.Start(c.ctx)
}

// StopMusicPolling stops both music timers.
func (c *Controller) StopMusicPolling() {
	c.musicTask.Stop()
	c.progressTask.Stop()
}

// MusicPolling reports whether the music timers are running.
func (c *Controller) MusicPolling() bool {
	return c.musicTask.Running() && c.progressTask.Running()
}

// PollStatus fetches lamp status once and reconciles the store.
func (c *Controller) PollStatus(ctx context.Context) {
	status, err := c.device.FetchStatus(ctx)
	if err != nil {
		c.store.UpdateStatus(nil, err)
		if ctx.Err() == nil {
			c.log.Warn("status check failed", zap.Error(err))
		}
		return
	}
	c.store.UpdateStatus(status, nil)
	if status.PartyHz != nil && !math.IsNaN(*status.PartyHz) {
		c.store.SetPartyHz(ClampPartyHz(*status.PartyHz))
	}
	c.StartMusicPolling()
}

// PollMusic fetches the now-playing payload once.
func (c *Controller) PollMusic(ctx context.Context) {
	music, err := c.device.FetchMusic(ctx)
	if err != nil {
		c.store.UpdateMusic(nil, err)
		if ctx.Err() == nil {
			c.log.Warn("music fetch failed", zap.Error(err))
		}
		return
	}
	c.store.UpdateMusic(music, nil)
}

// TickProgress advances the local playback position by one tick.
func (c *Controller) TickProgress() {
	c.store.AdvanceProgress(ProgressTick)
}

// SetMode switches the lamp's mode. The store is updated before the request
// so the active button never flashes back; a failed request is corrected by
// the next status poll.
func (c *Controller) SetMode(ctx context.Context, mode device.Mode) error {
	c.store.SetMode(mode)
	if err := c.device.SetMode(ctx, mode); err != nil {
		c.log.Error("failed to set mode", zap.String("mode", string(mode)), zap.Error(err))
		return fmt.Errorf("set mode %s: %w", mode, err)
	}
	c.log.Info("mode changed", zap.String("mode", string(mode)))
	c.StartMusicPolling()
	return nil
}

// SendColor hands a picker sample to the debounced dispatcher.
func (c *Controller) SendColor(rgb device.RGB) {
	c.sendColor(rgb)
}

// SyncParty takes raw input from the party slider or field. Values are
// debounced, clamped, mirrored to both widgets, and pushed to the lamp.
func (c *Controller) SyncParty(value string) {
	c.syncParty(value)
}

// Unlock enables full power. Unlike mode switches the lock state is only
// changed after the lamp confirms.
func (c *Controller) Unlock(ctx context.Context) error {
	if err := c.device.Unlock(ctx); err != nil {
		c.log.Error("unlock failed", zap.Error(err))
		return fmt.Errorf("unlock: %w", err)
	}
	c.store.SetUnlocked(true)
	c.log.Info("full power unlocked")
	return nil
}

// Reset returns the lamp to safe power mode.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.device.Reset(ctx); err != nil {
		c.log.Error("reset failed", zap.Error(err))
		return fmt.Errorf("reset: %w", err)
	}
	c.store.SetUnlocked(false)
	c.log.Info("returned to safe power mode")
	return nil
}

func (c *Controller) applyParty(value string) {
	hz, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return
	}
	hz = ClampPartyHz(hz)
	c.store.SetPartyHz(hz)

	go func() {
		if err := c.device.SetPartyHz(c.ctx, hz); err != nil && c.ctx.Err() == nil {
			c.log.Warn("failed to set party Hz", zap.Float64("hz", hz), zap.Error(err))
		}
	}()
	if c.store.Mode() != device.ModeParty {
		go func() { _ = c.SetMode(c.ctx, device.ModeParty) }()
	}
}

func (c *Controller) ensureMode(mode device.Mode) func(context.Context) {
	return func(ctx context.Context) {
		if c.store.Mode() == mode {
			return
		}
		// Only a confirmed switch is recorded, so a failure is retried with
		// the next sample.
		if err := c.device.SetMode(ctx, mode); err != nil {
			if ctx.Err() == nil {
				c.log.Warn("failed to switch mode before color", zap.String("mode", string(mode)), zap.Error(err))
			}
			return
		}
		c.store.SetMode(mode)
		c.log.Info("mode changed", zap.String("mode", string(mode)))
		c.StartMusicPolling()
	}
}

// ClampPartyHz bounds a party frequency to the lamp's supported range.
func ClampPartyHz(hz float64) float64 {
	return math.Min(math.Max(hz, MinPartyHz), MaxPartyHz)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
