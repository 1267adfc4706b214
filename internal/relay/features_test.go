package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type tempoStub struct {
	calls []string
	tempo float64
	err   error
}

func (s *tempoStub) fetch(_ context.Context, id string) (float64, error) {
	s.calls = append(s.calls, id)
	return s.tempo, s.err
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFeatureCache(stub *tempoStub, logger *zap.Logger, metrics *Metrics) (*FeatureCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewFeatureCache(stub.fetch, logger, metrics)
	c.now = clock.now
	return c, clock
}

func TestFeatureCache_HitsWithinTTL(t *testing.T) {
	stub := &tempoStub{tempo: 120.5}
	metrics := NewMetrics(prometheus.NewRegistry())
	cache, clock := newFeatureCache(stub, nil, metrics)

	first := cache.Tempo(context.Background(), "abc")
	clock.advance(4*time.Minute + 59*time.Second)
	second := cache.Tempo(context.Background(), "abc")

	if first == nil || second == nil || *first != 120.5 || *second != 120.5 {
		t.Fatalf("tempos = %v/%v, want 120.5", first, second)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("upstream calls = %v, want 1", stub.calls)
	}
	if got := testutil.ToFloat64(metrics.tempoLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("hit metric = %v, want 1", got)
	}
}

func TestFeatureCache_RefetchesAfterTTLOrNewTrack(t *testing.T) {
	stub := &tempoStub{tempo: 98}
	cache, clock := newFeatureCache(stub, nil, nil)

	cache.Tempo(context.Background(), "abc")
	clock.advance(5 * time.Minute)
	cache.Tempo(context.Background(), "abc")
	cache.Tempo(context.Background(), "def")
	cache.Tempo(context.Background(), "abc")

	want := []string{"abc", "abc", "def", "abc"}
	if len(stub.calls) != len(want) {
		t.Fatalf("upstream calls = %v, want %v", stub.calls, want)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("upstream calls = %v, want %v", stub.calls, want)
		}
	}
}

func TestFeatureCache_FailureIsUnknownAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	stub := &tempoStub{err: &StatusError{Path: "/audio-features/abc", Code: 429}}
	cache, _ := newFeatureCache(stub, zap.New(core), nil)

	if got := cache.Tempo(context.Background(), "abc"); got != nil {
		t.Fatalf("tempo = %v, want nil on failure", *got)
	}
	if logs.FilterMessage("audio features unavailable").Len() != 1 {
		t.Fatalf("expected one warning, got %v", logs.All())
	}

	stub.err = nil
	stub.tempo = 101
	if got := cache.Tempo(context.Background(), "abc"); got == nil || *got != 101 {
		t.Fatalf("tempo after recovery = %v, want 101", got)
	}
	if len(stub.calls) != 2 {
		t.Fatalf("upstream calls = %d, want 2 (failures are not cached)", len(stub.calls))
	}
}

func TestFeatureCache_ZeroTempoIsNotCached(t *testing.T) {
	stub := &tempoStub{tempo: 0}
	cache, _ := newFeatureCache(stub, nil, nil)

	if got := cache.Tempo(context.Background(), "abc"); got != nil {
		t.Fatalf("tempo = %v, want nil", *got)
	}
	cache.Tempo(context.Background(), "abc")
	if len(stub.calls) != 2 {
		t.Fatalf("upstream calls = %d, want 2", len(stub.calls))
	}
}

func TestFeatureCache_EmptyTrackID(t *testing.T) {
	stub := &tempoStub{err: errors.New("should not be called")}
	cache, _ := newFeatureCache(stub, nil, nil)

	if got := cache.Tempo(context.Background(), ""); got != nil {
		t.Fatalf("tempo = %v, want nil", *got)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("upstream calls = %v, want none", stub.calls)
	}
}
