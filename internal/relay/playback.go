package relay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/lumen/internal/device"
)

// PlayerSource is the part of the music service the relay reads.
type PlayerSource interface {
	CurrentlyPlaying(ctx context.Context) (*CurrentlyPlaying, error)
	Queue(ctx context.Context) (*Queue, error)
}

// Relay assembles the simplified now-playing payload the lamp consumes.
type Relay struct {
	player   PlayerSource
	features *FeatureCache
	metrics  *Metrics
	log      *zap.Logger
}

// NewRelay wires a Relay. features may be nil, in which case bpm is always
// unknown.
func NewRelay(player PlayerSource, features *FeatureCache, metrics *Metrics, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		player:   player,
		features: features,
		metrics:  metrics,
		log:      logger,
	}
}

// Playback fetches the player state and queue head and flattens them. Any
// upstream failure fails the whole call; the caller's next poll retries.
func (r *Relay) Playback(ctx context.Context) (payload *device.Music, err error) {
	if r == nil || r.player == nil {
		return nil, fmt.Errorf("relay is not configured")
	}
	start := time.Now()
	defer func() { r.metrics.observePlayback(start, err) }()

	playing, err := r.player.CurrentlyPlaying(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch currently playing: %w", err)
	}
	queue, err := r.player.Queue(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}

	var item *Item
	progress := 0
	if playing != nil {
		item = playing.Item
		progress = playing.ProgressMs
	}
	next := queue.Next()

	payload = &device.Music{
		ProgressMs: progress,
	}
	if item != nil {
		payload.Track = item.Name
		payload.Artist = item.ArtistNames()
		payload.AlbumArt = item.CoverURL()
		payload.DurationMs = item.DurationMs
		if id := item.TrackID(); id != "" && item.Type == "track" {
			payload.BPM = r.features.Tempo(ctx, id)
		}
	}
	if next != nil {
		payload.NextTrack = next.Name
		payload.NextArtist = next.ArtistNames()
	}

	r.log.Debug("playback assembled",
		zap.String("track", payload.Track),
		zap.Int("progress_ms", payload.ProgressMs),
		zap.Bool("has_bpm", payload.BPM != nil),
	)
	return payload, nil
}
