package simulator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/five82/lumen/internal/device"
)

func newSimulator(t *testing.T, opts Options) (*Lamp, *httptest.Server, *device.Client) {
	t.Helper()
	lamp := NewLamp("192.168.4.1", true)
	srv := httptest.NewServer(NewServer(lamp, opts).Handler())
	t.Cleanup(srv.Close)
	client, err := device.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return lamp, srv, client
}

func postForm(t *testing.T, rawURL string, values url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(rawURL, values)
	if err != nil {
		t.Fatalf("POST %s: %v", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestSimulator_DeviceClientRoundTrip(t *testing.T) {
	lamp, _, client := newSimulator(t, Options{})
	ctx := context.Background()

	status, err := client.FetchStatus(ctx)
	if err != nil {
		t.Fatalf("FetchStatus returned error: %v", err)
	}
	if status.Mode != device.ModeRemote || status.IP != "192.168.4.1" || !status.APFallback || status.Unlocked {
		t.Fatalf("status = %#v", status)
	}
	if status.PartyHz == nil || *status.PartyHz != 0.6 {
		t.Fatalf("partyHz = %v, want 0.6", status.PartyHz)
	}

	if err := client.SetMode(ctx, device.ModeMusic); err != nil {
		t.Fatalf("SetMode returned error: %v", err)
	}
	if got := lamp.Snapshot().Mode; got != device.ModeMusic {
		t.Fatalf("mode = %q, want music", got)
	}

	if err := client.PostRGB(ctx, device.RGB{R: 255, G: 0, B: 51}); err != nil {
		t.Fatalf("PostRGB returned error: %v", err)
	}
	st := lamp.Snapshot()
	if st.PWM != [3]int{2047, 0, 409} || st.Mode != device.ModeRemote {
		t.Fatalf("after color: pwm=%v mode=%q", st.PWM, st.Mode)
	}

	if err := client.SetPartyHz(ctx, 9); err != nil {
		t.Fatalf("SetPartyHz returned error: %v", err)
	}
	st = lamp.Snapshot()
	if st.PartyHz != 5 || st.Mode != device.ModeParty {
		t.Fatalf("after party: hz=%v mode=%q", st.PartyHz, st.Mode)
	}

	if err := client.Unlock(ctx); err != nil {
		t.Fatalf("Unlock returned error: %v", err)
	}
	if !lamp.Snapshot().Unlocked {
		t.Fatalf("lamp still locked")
	}
	if err := client.Reset(ctx); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if lamp.Snapshot().Unlocked {
		t.Fatalf("lamp still unlocked after reset")
	}
}

func TestSimulator_ModeValidation(t *testing.T) {
	lamp, srv, _ := newSimulator(t, Options{})

	tests := []struct {
		name   string
		values url.Values
		status int
		want   device.Mode
	}{
		{"missing", url.Values{}, http.StatusBadRequest, device.ModeRemote},
		{"unknown", url.Values{"mode": {"disco"}}, http.StatusBadRequest, device.ModeRemote},
		{"alias sleep", url.Values{"mode": {"sleep"}}, http.StatusOK, device.ModeOff},
		{"alias remote", url.Values{"mode": {"Remote"}}, http.StatusOK, device.ModeRemote},
		{"knobs", url.Values{"mode": {"rgb"}}, http.StatusOK, device.ModeKnobs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := postForm(t, srv.URL+"/api/mode", tt.values)
			if code != tt.status {
				t.Fatalf("status = %d body = %s, want %d", code, body, tt.status)
			}
			if got := lamp.Snapshot().Mode; got != tt.want {
				t.Fatalf("mode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimulator_OffBlanksLEDs(t *testing.T) {
	lamp, _, client := newSimulator(t, Options{})
	lamp.SetColor(10, 20, 30)

	if err := client.SetMode(context.Background(), device.ModeOff); err != nil {
		t.Fatalf("SetMode returned error: %v", err)
	}
	if got := lamp.Snapshot().PWM; got != [3]int{} {
		t.Fatalf("pwm = %v, want blank", got)
	}
}

func TestSimulator_BadNumbers(t *testing.T) {
	_, srv, _ := newSimulator(t, Options{})

	cases := []struct {
		path   string
		values url.Values
	}{
		{"/postRGB", url.Values{"r": {"1"}, "g": {"2"}}},
		{"/postRGB", url.Values{"r": {"1"}, "g": {"x"}, "b": {"3"}}},
		{"/api/party", url.Values{}},
		{"/api/party", url.Values{"hz": {"fast"}}},
		{"/api/party", url.Values{"hz": {"NaN"}}},
	}
	for _, tc := range cases {
		if code, body := postForm(t, srv.URL+tc.path, tc.values); code != http.StatusBadRequest {
			t.Fatalf("POST %s %v = %d %s, want 400", tc.path, tc.values, code, body)
		}
	}
}

func TestSimulator_ScenesAndLockStatus(t *testing.T) {
	lamp, srv, _ := newSimulator(t, Options{})

	if code, _ := postForm(t, srv.URL+"/api/scene", url.Values{"scene": {"Ocean"}}); code != http.StatusOK {
		t.Fatalf("scene status = %d", code)
	}
	if got := lamp.Snapshot().PWM; got != [3]int{250, 1100, 1900} {
		t.Fatalf("pwm = %v", got)
	}
	if code, _ := postForm(t, srv.URL+"/api/scene", url.Values{"scene": {"nope"}}); code != http.StatusOK {
		t.Fatalf("unknown scene status = %d, want 200", code)
	}
	if got := lamp.Snapshot().PWM; got != [3]int{250, 1100, 1900} {
		t.Fatalf("unknown scene changed pwm to %v", got)
	}

	resp, err := http.Get(srv.URL + "/lockStatus")
	if err != nil {
		t.Fatalf("GET /lockStatus: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != `{"unlocked":false}` {
		t.Fatalf("lockStatus = %s", body)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("CORS header = %q", got)
	}
}

func TestSimulator_MusicProxiesRelay(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playback" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"track":"Song","artist":"A","albumArt":"","durationMs":200000,"progressMs":50000,"bpm":120,"nextTrack":"","nextArtist":""}`)
	}))
	defer relay.Close()

	_, _, client := newSimulator(t, Options{RelayURL: relay.URL + "/"})
	music, err := client.FetchMusic(context.Background())
	if err != nil {
		t.Fatalf("FetchMusic returned error: %v", err)
	}
	if music.Track != "Song" || music.DurationMs != 200000 || music.BPM == nil || *music.BPM != 120 {
		t.Fatalf("music = %#v", music)
	}
}

func TestSimulator_MusicWithoutRelay(t *testing.T) {
	_, _, client := newSimulator(t, Options{})
	_, err := client.FetchMusic(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("error = %v, want status 503", err)
	}
}

func TestSimulator_MusicRelayErrorPassesThrough(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"error":"upstream down"}`)
	}))
	defer relay.Close()

	_, _, client := newSimulator(t, Options{RelayURL: relay.URL})
	_, err := client.FetchMusic(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("error = %v, want status 500", err)
	}
}
