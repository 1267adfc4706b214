package panel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/lumen/internal/device"
	"github.com/five82/lumen/internal/state"
)

func floatPtr(v float64) *float64 { return &v }

func newTestController(t *testing.T, dev *fakeDevice, opts ...func(*Options)) *Controller {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	o := Options{
		Device:      dev,
		Store:       state.NewStore(device.ModeRemote, DefaultPartyHz),
		StatusEvery: time.Hour,
		MusicEvery:  time.Hour,
		TickEvery:   time.Hour,
		ColorWait:   10 * time.Millisecond,
		PartyWait:   10 * time.Millisecond,
	}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := New(ctx, o)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() {
		c.Stop()
		cancel()
	})
	return c
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met")
}

func TestNew_RequiresDevice(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatalf("New without device returned nil error")
	}
}

func TestPollStatus_PartyStatusRendersPanel(t *testing.T) {
	dev := &fakeDevice{status: &device.Status{Mode: device.ModeParty, PartyHz: floatPtr(2.3), Unlocked: false}}
	c := newTestController(t, dev)

	c.PollStatus(context.Background())

	view := NewStatusView(c.Store().Snapshot())
	if view.Active != device.ModeParty {
		t.Fatalf("active mode = %q, want party", view.Active)
	}
	if view.SliderValue != 2.3 || view.PartyField != "2.3" {
		t.Fatalf("party inputs = %v/%q, want 2.3/2.3", view.SliderValue, view.PartyField)
	}
	if view.UnlockDisabled {
		t.Fatalf("unlock button disabled, want enabled while locked")
	}
	if !c.MusicPolling() {
		t.Fatalf("status poll should ensure music polling is running")
	}
}

func TestPollStatus_NonNumericPartyHzLeavesInputs(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"absent", `{"mode":"party","unlocked":true}`},
		{"null", `{"mode":"party","unlocked":true,"partyHz":null}`},
		{"string", `{"mode":"party","unlocked":true,"partyHz":"fast"}`},
		{"object", `{"mode":"party","unlocked":true,"partyHz":{"hz":2}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/status" {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client, err := device.NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			c := newTestController(t, nil, func(o *Options) { o.Device = client })
			c.Store().SetPartyHz(1.5)

			c.PollStatus(context.Background())

			snap := c.Store().Snapshot()
			if !snap.HasStatus || snap.LastError != nil {
				t.Fatalf("snapshot = %#v, want reconciled status", snap)
			}
			if snap.Mode != device.ModeParty || !snap.Unlocked {
				t.Fatalf("mode/unlocked = %q/%v, want party/true", snap.Mode, snap.Unlocked)
			}
			if snap.PartyHz != 1.5 {
				t.Fatalf("PartyHz = %v, want untouched 1.5", snap.PartyHz)
			}
		})
	}
}

func TestPollStatus_FailureIsLoggedAndSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dev := &fakeDevice{statusErr: errOffline}
	c := newTestController(t, dev, func(o *Options) { o.Logger = zap.New(core) })

	c.PollStatus(context.Background())

	snap := c.Store().Snapshot()
	if snap.LastError == nil || snap.ConsecutiveFailures != 1 {
		t.Fatalf("snapshot = %#v, want recorded failure", snap)
	}
	if logs.FilterMessage("status check failed").Len() != 1 {
		t.Fatalf("expected one status warning, got %v", logs.All())
	}
	if c.MusicPolling() {
		t.Fatalf("failed status poll should not start music polling")
	}
}

func TestMusic_PollAndTickRenderProgress(t *testing.T) {
	dev := &fakeDevice{music: &device.Music{Track: "Song", DurationMs: 200000, ProgressMs: 50000}}
	c := newTestController(t, dev)

	c.PollMusic(context.Background())
	snap := c.Store().Snapshot()
	view := NewMusicView(snap.Music, snap.HasMusic)
	if view.Fill != "25%" || view.Now != "0:50" || view.Total != "3:20" {
		t.Fatalf("view = %+v, want 25%% 0:50 3:20", view)
	}

	c.TickProgress()
	snap = c.Store().Snapshot()
	view = NewMusicView(snap.Music, snap.HasMusic)
	if view.Now != "0:51" {
		t.Fatalf("Now after tick = %q, want 0:51", view.Now)
	}
	dev.mu.Lock()
	hits := dev.musicHits
	dev.mu.Unlock()
	if hits != 1 {
		t.Fatalf("music fetches = %d, want 1 (tick is local)", hits)
	}
}

func TestMusicPolling_StartIsIdempotentAndStopsAsPair(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestController(t, dev)

	c.StartMusicPolling()
	c.StartMusicPolling()
	eventually(t, func() bool {
		dev.mu.Lock()
		defer dev.mu.Unlock()
		return dev.musicHits == 1
	})
	time.Sleep(30 * time.Millisecond)
	dev.mu.Lock()
	hits := dev.musicHits
	dev.mu.Unlock()
	if hits != 1 {
		t.Fatalf("music fetches = %d, want 1 after double start", hits)
	}

	c.StopMusicPolling()
	if c.MusicPolling() {
		t.Fatalf("MusicPolling() = true after stop")
	}
}

func TestSetMode_UpdatesLocallyAndOnFailureKeepsOptimisticMode(t *testing.T) {
	dev := &fakeDevice{modeErr: errors.New("nope")}
	c := newTestController(t, dev)

	if err := c.SetMode(context.Background(), device.ModeMusic); err == nil {
		t.Fatalf("SetMode returned nil error on device failure")
	}
	if got := c.Store().Mode(); got != device.ModeMusic {
		t.Fatalf("Mode = %q, want optimistic music", got)
	}

	dev.mu.Lock()
	dev.modeErr = nil
	dev.mu.Unlock()
	if err := c.SetMode(context.Background(), device.ModeOff); err != nil {
		t.Fatalf("SetMode returned error: %v", err)
	}
	if !c.MusicPolling() {
		t.Fatalf("successful mode switch should ensure music polling")
	}
}

func TestSendColor_SwitchesToRemoteModeFirst(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestController(t, dev)
	c.Store().SetMode(device.ModeParty)

	c.SendColor(device.RGB{R: 12, G: 34, B: 56})
	eventually(t, func() bool { return len(dev.sentColors()) == 1 })

	events := dev.eventLog()
	if len(events) < 2 || events[0] != "mode:wifi" || events[1] != "rgb" {
		t.Fatalf("events = %v, want mode switch before color", events)
	}
	if got := c.Store().Snapshot().Color; got != (device.RGB{R: 12, G: 34, B: 56}) {
		t.Fatalf("store color = %#v", got)
	}
}

func TestSendColor_FailedModeSwitchIsRetriedOnNextSample(t *testing.T) {
	dev := &fakeDevice{modeErr: errOffline}
	c := newTestController(t, dev)
	c.Store().SetMode(device.ModeParty)

	c.SendColor(device.RGB{R: 1})
	eventually(t, func() bool { return len(dev.sentColors()) == 1 })
	if got := c.Store().Mode(); got != device.ModeParty {
		t.Fatalf("store mode after failed switch = %q, want party", got)
	}

	c.SendColor(device.RGB{R: 2})
	eventually(t, func() bool { return len(dev.sentColors()) == 2 })
	modes := dev.sentModes()
	if len(modes) != 2 || modes[0] != device.ModeRemote || modes[1] != device.ModeRemote {
		t.Fatalf("mode switches = %v, want remote attempted for each sample", modes)
	}

	dev.mu.Lock()
	dev.modeErr = nil
	dev.mu.Unlock()
	c.SendColor(device.RGB{R: 3})
	eventually(t, func() bool { return len(dev.sentColors()) == 3 })
	if got := c.Store().Mode(); got != device.ModeRemote {
		t.Fatalf("store mode after confirmed switch = %q, want wifi", got)
	}
}

func TestSendColor_AlreadyRemoteSkipsModeSwitch(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestController(t, dev)

	c.SendColor(device.RGB{R: 1})
	eventually(t, func() bool { return len(dev.sentColors()) == 1 })
	if modes := dev.sentModes(); len(modes) != 0 {
		t.Fatalf("modes = %v, want none", modes)
	}
}

func TestSyncParty_ClampsBeforeDisplayAndTransmission(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"-1", 0.05},
		{"6", 5},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			dev := &fakeDevice{}
			c := newTestController(t, dev)
			c.Store().SetMode(device.ModeParty)

			c.SyncParty(tc.in)

			if got := c.Store().Snapshot().PartyHz; got != tc.want {
				t.Fatalf("displayed Hz = %v, want %v", got, tc.want)
			}
			eventually(t, func() bool { return len(dev.sentPartyHz()) == 1 })
			if got := dev.sentPartyHz()[0]; got != tc.want {
				t.Fatalf("transmitted Hz = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSyncParty_SwitchesIntoPartyMode(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestController(t, dev)

	c.SyncParty("1.2")
	eventually(t, func() bool { return len(dev.sentModes()) == 1 })
	if got := dev.sentModes()[0]; got != device.ModeParty {
		t.Fatalf("mode = %q, want party", got)
	}
}

func TestSyncParty_IgnoresGarbage(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestController(t, dev)

	c.SyncParty("fast")
	c.SyncParty("NaN")
	time.Sleep(50 * time.Millisecond)
	if got := dev.sentPartyHz(); len(got) != 0 {
		t.Fatalf("party pushes = %v, want none", got)
	}
	if got := c.Store().Snapshot().PartyHz; got != DefaultPartyHz {
		t.Fatalf("PartyHz = %v, want default", got)
	}
}

func TestUnlockAndReset(t *testing.T) {
	dev := &fakeDevice{unlockErr: errOffline}
	c := newTestController(t, dev)

	if err := c.Unlock(context.Background()); err == nil {
		t.Fatalf("Unlock returned nil error")
	}
	if c.Store().Snapshot().Unlocked {
		t.Fatalf("failed unlock changed lock state")
	}

	dev.mu.Lock()
	dev.unlockErr = nil
	dev.mu.Unlock()
	if err := c.Unlock(context.Background()); err != nil {
		t.Fatalf("Unlock returned error: %v", err)
	}
	if !c.Store().Snapshot().Unlocked {
		t.Fatalf("unlock did not update lock state")
	}

	dev.mu.Lock()
	dev.resetErr = errOffline
	dev.mu.Unlock()
	if err := c.Reset(context.Background()); err == nil {
		t.Fatalf("Reset returned nil error")
	}
	if !c.Store().Snapshot().Unlocked {
		t.Fatalf("failed reset changed lock state")
	}
}

func TestClampPartyHz(t *testing.T) {
	cases := map[float64]float64{-1: 0.05, 0: 0.05, 0.05: 0.05, 2.3: 2.3, 5: 5, 6: 5}
	for in, want := range cases {
		if got := ClampPartyHz(in); got != want {
			t.Fatalf("ClampPartyHz(%v) = %v, want %v", in, got, want)
		}
	}
}
