package relay

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	stateTTL        = 10 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// ServerOptions wires the relay's HTTP surface.
type ServerOptions struct {
	// Relay serves /playback. Nil answers 503 until a refresh token exists.
	Relay *Relay
	// OAuth enables the /login and /callback helper. Nil disables it.
	OAuth *oauth2.Config
	// Gatherer backs /metrics. Nil disables it.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the relay's HTTP handler set.
type Server struct {
	relay    *Relay
	oauth    *oauth2.Config
	gatherer prometheus.Gatherer
	log      *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	states map[string]time.Time
}

// NewServer builds a Server.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		relay:    opts.Relay,
		oauth:    opts.OAuth,
		gatherer: opts.Gatherer,
		log:      logger,
		now:      time.Now,
		states:   make(map[string]time.Time),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /playback", s.handlePlayback)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.oauth != nil {
		mux.HandleFunc("GET /login", s.handleLogin)
		mux.HandleFunc("GET /callback", s.handleCallback)
	}
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("relay listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "lumen relay is running. Poll /playback for now-playing data.")
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		writeError(w, http.StatusServiceUnavailable, "no refresh token configured; visit /login to create one")
		return
	}
	payload, err := s.relay.Playback(r.Context())
	if err != nil {
		s.log.Error("playback failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"playback": s.relay != nil,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.newState()
	if err != nil {
		s.log.Error("generate oauth state", zap.Error(err))
		http.Error(w, "could not start login", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

var tokenPage = template.Must(template.New("token").Parse(`<!doctype html>
<html><head><title>lumen relay</title></head><body>
<h1>Tokens received!</h1>
<p><b>refresh_token</b>: <code>{{.}}</code></p>
<p>Save this as SPOTIFY_REFRESH_TOKEN (or refresh_token in relay.toml) and restart the relay.</p>
</body></html>
`))

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if msg := q.Get("error"); msg != "" {
		http.Error(w, "Error from Spotify: "+msg, http.StatusBadRequest)
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code parameter in query string.", http.StatusBadRequest)
		return
	}
	if !s.consumeState(q.Get("state")) {
		http.Error(w, "Unknown or expired login state; start again at /login.", http.StatusBadRequest)
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.log.Error("authorization code exchange failed", zap.Error(err))
		http.Error(w, "Token request failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if token.RefreshToken == "" {
		http.Error(w, "Token response did not include a refresh token.", http.StatusBadGateway)
		return
	}

	s.log.Info("refresh token issued")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tokenPage.Execute(w, token.RefreshToken); err != nil {
		s.log.Warn("render token page", zap.Error(err))
	}
}

func (s *Server) newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, issued := range s.states {
		if now.Sub(issued) > stateTTL {
			delete(s.states, k)
		}
	}
	s.states[state] = now
	return state, nil
}

func (s *Server) consumeState(state string) bool {
	if state == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	issued, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return s.now().Sub(issued) <= stateTTL
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// NewOAuthConfig builds the client configuration for both the refresh
// exchange and the auth helper. Credentials are sent in the Authorization
// header.
func NewOAuthConfig(clientID, clientSecret, redirectURL, authURL, tokenURL string) *oauth2.Config {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}
