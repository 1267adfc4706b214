package panel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/lumen/internal/device"
)

// ColorDispatcher forwards picker colors to the lamp with at most one request
// in flight. Samples that arrive while a send is running overwrite each other;
// only the newest is sent once the channel frees up.
type ColorDispatcher struct {
	ctx    context.Context
	send   func(context.Context, device.RGB) error
	before func(context.Context)
	accept func(device.RGB)
	log    *zap.Logger

	mu       sync.Mutex
	last     device.RGB
	hasLast  bool
	pending  *device.RGB
	inFlight bool
	idle     chan struct{}
}

// DispatcherOptions wires a ColorDispatcher.
type DispatcherOptions struct {
	// Send delivers one color. Required.
	Send func(context.Context, device.RGB) error
	// Before runs ahead of each send, e.g. to switch into remote mode.
	Before func(context.Context)
	// Accept observes every sample that becomes pending.
	Accept func(device.RGB)
	Logger *zap.Logger
}

// NewColorDispatcher builds a dispatcher whose sends use ctx.
func NewColorDispatcher(ctx context.Context, opts DispatcherOptions) *ColorDispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ColorDispatcher{
		ctx:    ctx,
		send:   opts.Send,
		before: opts.Before,
		accept: opts.Accept,
		log:    logger,
	}
}

// Submit queues c unless it repeats the last accepted sample. It never blocks
// on the network.
func (d *ColorDispatcher) Submit(c device.RGB) {
	d.mu.Lock()
	if d.hasLast && c == d.last {
		d.mu.Unlock()
		return
	}
	d.last, d.hasLast = c, true
	sample := c
	d.pending = &sample
	if d.accept != nil {
		d.accept(c)
	}
	if d.inFlight {
		d.mu.Unlock()
		return
	}
	d.inFlight = true
	d.idle = make(chan struct{})
	d.mu.Unlock()

	go d.drain()
}

// InFlight reports whether a send loop is active.
func (d *ColorDispatcher) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// Wait blocks until the send loop drains or ctx ends.
func (d *ColorDispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	idle := d.idle
	busy := d.inFlight
	d.mu.Unlock()
	if !busy {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *ColorDispatcher) drain() {
	for {
		d.mu.Lock()
		if d.pending == nil {
			d.inFlight = false
			close(d.idle)
			d.mu.Unlock()
			return
		}
		c := *d.pending
		d.pending = nil
		d.mu.Unlock()

		if d.before != nil {
			d.before(d.ctx)
		}
		if err := d.send(d.ctx, c); err != nil && d.ctx.Err() == nil {
			d.log.Warn("color update failed",
				zap.Uint8("r", c.R), zap.Uint8("g", c.G), zap.Uint8("b", c.B),
				zap.Error(err))
		}
	}
}
