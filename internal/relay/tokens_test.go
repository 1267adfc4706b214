package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/oauth2"
)

type tokenServer struct {
	*httptest.Server
	hits       atomic.Int32
	lastRT     atomic.Value
	expiresIn  int
	rotateTo   string
	failStatus int
}

func newTokenServer(t *testing.T, expiresIn int) *tokenServer {
	t.Helper()
	ts := &tokenServer{expiresIn: expiresIn}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.hits.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "id" || pass != "secret" {
			t.Errorf("basic auth = %q/%q/%v, want id/secret", user, pass, ok)
		}
		ts.lastRT.Store(r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		if ts.failStatus != 0 {
			w.WriteHeader(ts.failStatus)
			_, _ = fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Refresh token revoked"}`)
			return
		}
		rotate := ""
		if ts.rotateTo != "" {
			rotate = fmt.Sprintf(`,"refresh_token":%q`, ts.rotateTo)
		}
		_, _ = fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":%d%s}`, n, ts.expiresIn, rotate)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) config() *oauth2.Config {
	return NewOAuthConfig("id", "secret", "", ts.URL+"/authorize", ts.URL+"/api/token")
}

func TestTokenCache_ReusesTokenOutsideSkew(t *testing.T) {
	ts := newTokenServer(t, 3600)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	cache := NewTokenCache(ts.config(), "rt-1", metrics)

	for i := 0; i < 3; i++ {
		tok, err := cache.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("AccessToken returned error: %v", err)
		}
		if tok != "tok-1" {
			t.Fatalf("token = %q, want tok-1", tok)
		}
	}
	if got := ts.hits.Load(); got != 1 {
		t.Fatalf("token endpoint hits = %d, want 1", got)
	}
	if got := ts.lastRT.Load(); got != "rt-1" {
		t.Fatalf("refresh token sent = %v, want rt-1", got)
	}
	if got := testutil.ToFloat64(metrics.tokenRefreshes.WithLabelValues("ok")); got != 1 {
		t.Fatalf("refresh metric = %v, want 1", got)
	}
}

func TestTokenCache_RefreshesInsideSkew(t *testing.T) {
	ts := newTokenServer(t, 3600)
	cache := NewTokenCache(ts.config(), "rt-1", nil)

	if _, err := cache.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken returned error: %v", err)
	}

	// Five seconds before expiry falls inside the refresh window.
	cache.now = func() time.Time { return time.Now().Add(3595 * time.Second) }
	tok, err := cache.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken returned error: %v", err)
	}
	if tok != "tok-2" {
		t.Fatalf("token = %q, want refreshed tok-2", tok)
	}
	if got := ts.hits.Load(); got != 2 {
		t.Fatalf("token endpoint hits = %d, want 2", got)
	}
}

func TestTokenCache_KeepsRotatedRefreshToken(t *testing.T) {
	ts := newTokenServer(t, 1)
	ts.rotateTo = "rt-2"
	cache := NewTokenCache(ts.config(), "rt-1", nil)

	if _, err := cache.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken returned error: %v", err)
	}
	// expires_in of 1s is always inside the skew, so this refreshes again.
	if _, err := cache.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken returned error: %v", err)
	}
	if got := ts.lastRT.Load(); got != "rt-2" {
		t.Fatalf("second refresh sent %v, want rotated rt-2", got)
	}
}

func TestTokenCache_RefreshFailure(t *testing.T) {
	ts := newTokenServer(t, 3600)
	ts.failStatus = http.StatusBadRequest
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	cache := NewTokenCache(ts.config(), "rt-1", metrics)

	_, err := cache.AccessToken(context.Background())
	if err == nil {
		t.Fatalf("AccessToken returned nil error")
	}
	if !strings.Contains(err.Error(), "refresh token") {
		t.Fatalf("error = %v, want refresh token context", err)
	}
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		t.Fatalf("error %T does not wrap *oauth2.RetrieveError", err)
	}
	if got := testutil.ToFloat64(metrics.tokenRefreshes.WithLabelValues("error")); got != 1 {
		t.Fatalf("refresh error metric = %v, want 1", got)
	}
}

func TestTokenCache_NoRefreshToken(t *testing.T) {
	ts := newTokenServer(t, 3600)
	cache := NewTokenCache(ts.config(), "", nil)

	if cache.HasRefreshToken() {
		t.Fatalf("HasRefreshToken() = true")
	}
	if _, err := cache.AccessToken(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("error = %v, want ErrNoRefreshToken", err)
	}
	if got := ts.hits.Load(); got != 0 {
		t.Fatalf("token endpoint hits = %d, want 0", got)
	}
}

func TestTokenCache_ConcurrentCallersGetValidTokens(t *testing.T) {
	ts := newTokenServer(t, 3600)
	cache := NewTokenCache(ts.config(), "rt-1", nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cache.AccessToken(context.Background())
			if err == nil && !strings.HasPrefix(tok, "tok-") {
				err = fmt.Errorf("unexpected token %q", tok)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent AccessToken: %v", err)
		}
	}
	if got := ts.hits.Load(); got < 1 || got > 8 {
		t.Fatalf("token endpoint hits = %d, want 1..8", got)
	}
}

func TestTokenCache_NilReceiver(t *testing.T) {
	var cache *TokenCache
	if _, err := cache.AccessToken(context.Background()); err == nil {
		t.Fatalf("nil cache returned nil error")
	}
}
