package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	relayTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Options configure a Server.
type Options struct {
	// RelayURL is the music relay base URL. Empty disables /api/music.
	RelayURL   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Server serves the lamp's HTTP API backed by an in-memory Lamp.
type Server struct {
	lamp     *Lamp
	relayURL string
	http     *http.Client
	log      *zap.Logger
}

// NewServer builds a Server for lamp.
func NewServer(lamp *Lamp, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: relayTimeout}
	}
	return &Server{
		lamp:     lamp,
		relayURL: strings.TrimRight(strings.TrimSpace(opts.RelayURL), "/"),
		http:     client,
		log:      logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/music", s.handleMusic)
	mux.HandleFunc("POST /api/mode", s.handleMode)
	mux.HandleFunc("POST /api/party", s.handleParty)
	mux.HandleFunc("POST /api/scene", s.handleScene)
	mux.HandleFunc("POST /postRGB", s.handleRGB)
	mux.HandleFunc("GET /lockStatus", s.handleLockStatus)
	mux.HandleFunc("POST /unlock", s.handleUnlock)
	mux.HandleFunc("POST /reset", s.handleReset)
	return cors(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("simulator listening", zap.String("addr", ln.Addr().String()))
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
	return srv.Shutdown(shutdownCtx)
}

type statusPayload struct {
	Mode       string  `json:"mode"`
	Unlocked   bool    `json:"unlocked"`
	IP         string  `json:"ip"`
	APFallback bool    `json:"apFallback"`
	PartyHz    float64 `json:"partyHz"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.lamp.Snapshot()
	writeJSON(w, http.StatusOK, statusPayload{
		Mode:       string(st.Mode),
		Unlocked:   st.Unlocked,
		IP:         st.IP,
		APFallback: st.APFallback,
		PartyHz:    math.Round(st.PartyHz*100) / 100,
	})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	raw, ok := formValue(r, "mode")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode missing"})
		return
	}
	mode, ok := parseMode(raw)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown mode"})
		return
	}
	s.lamp.SetMode(mode)
	s.log.Info("mode set", zap.String("mode", string(mode)))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleParty(w http.ResponseWriter, r *http.Request) {
	raw, ok := formValue(r, "hz")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hz missing"})
		return
	}
	hz, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(hz) || math.IsInf(hz, 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hz must be a number"})
		return
	}
	applied := s.lamp.SetPartyHz(hz)
	s.log.Info("party rate set", zap.Float64("hz", applied))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	name, ok := formValue(r, "scene")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scene missing"})
		return
	}
	if !s.lamp.ApplyScene(name) {
		s.log.Debug("unknown scene ignored", zap.String("scene", name))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRGB(w http.ResponseWriter, r *http.Request) {
	var rgb [3]int
	for i, key := range []string{"r", "g", "b"} {
		raw, ok := formValue(r, key)
		if !ok {
			http.Error(w, "Missing parameters", http.StatusBadRequest)
			return
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			http.Error(w, "Invalid "+key+" value", http.StatusBadRequest)
			return
		}
		rgb[i] = v
	}
	pwm := s.lamp.SetColor(rgb[0], rgb[1], rgb[2])
	s.log.Debug("color set",
		zap.Ints("rgb", rgb[:]),
		zap.Ints("pwm", pwm[:]),
	)
	writeText(w, "OK")
}

func (s *Server) handleLockStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"unlocked": s.lamp.Snapshot().Unlocked})
}

func (s *Server) handleUnlock(w http.ResponseWriter, _ *http.Request) {
	s.lamp.SetUnlocked(true)
	s.log.Info("full power unlocked")
	writeText(w, "OK")
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.lamp.SetUnlocked(false)
	s.log.Info("reset to safe power mode")
	writeText(w, "OK")
}

// handleMusic forwards to the relay's /playback, passing its status and body
// through unchanged.
func (s *Server) handleMusic(w http.ResponseWriter, r *http.Request) {
	if s.relayURL == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no music relay configured"})
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, s.relayURL+"/playback", nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Warn("music relay unreachable", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "music relay unreachable"})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Warn("copy relay response", zap.Error(err))
	}
}

func formValue(r *http.Request, key string) (string, bool) {
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	if _, ok := r.PostForm[key]; !ok {
		return "", false
	}
	return r.PostForm.Get(key), true
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, body)
}
