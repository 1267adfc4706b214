package relay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// featureTTL bounds how long a cached tempo is reused for the same track.
const featureTTL = 5 * time.Minute

// TempoFunc looks up the tempo of a track upstream.
type TempoFunc func(ctx context.Context, trackID string) (float64, error)

// FeatureCache remembers the tempo of the most recently looked-up track.
// It holds a single slot; the relay only ever asks about the current track.
type FeatureCache struct {
	fetch   TempoFunc
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu        sync.Mutex
	trackID   string
	tempo     float64
	updatedAt time.Time
}

// NewFeatureCache wraps fetch with a single-slot cache.
func NewFeatureCache(fetch TempoFunc, logger *zap.Logger, metrics *Metrics) *FeatureCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureCache{
		fetch:   fetch,
		log:     logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Tempo returns the track's BPM, or nil when it is unknown. Lookup failures
// (rate limits included) are logged and reported as unknown.
func (c *FeatureCache) Tempo(ctx context.Context, trackID string) *float64 {
	if c == nil || trackID == "" {
		return nil
	}

	c.mu.Lock()
	if c.trackID == trackID && c.tempo > 0 && c.now().Sub(c.updatedAt) < featureTTL {
		tempo := c.tempo
		c.mu.Unlock()
		c.metrics.tempoLookup("hit")
		return &tempo
	}
	c.mu.Unlock()

	tempo, err := c.fetch(ctx, trackID)
	if err != nil {
		c.metrics.tempoLookup("error")
		c.log.Warn("audio features unavailable", zap.String("track_id", trackID), zap.Error(err))
		return nil
	}
	c.metrics.tempoLookup("miss")
	if tempo <= 0 {
		return nil
	}

	c.mu.Lock()
	c.trackID = trackID
	c.tempo = tempo
	c.updatedAt = c.now()
	c.mu.Unlock()
	return &tempo
}
