package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default endpoints of the music service.
const (
	DefaultAPIBaseURL = "https://api.spotify.com/v1"
	DefaultAuthURL    = "https://accounts.spotify.com/authorize"
	DefaultTokenURL   = "https://accounts.spotify.com/api/token"
)

const (
	upstreamTimeout = 10 * time.Second
	maxErrorBody    = 512
)

// Scopes requested by the auth helper.
var Scopes = []string{"user-read-playback-state", "user-read-currently-playing"}

// Artist is a credited artist on a track.
type Artist struct {
	Name string `json:"name"`
}

// Image is one rendition of album art, largest first.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Album carries the fields of an album the relay uses.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// LinkedTrack identifies the original track when a relinked one is playing.
type LinkedTrack struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Item is a playable item. Type is "track" or "episode".
type Item struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	URI        string       `json:"uri"`
	DurationMs int          `json:"duration_ms"`
	Artists    []Artist     `json:"artists"`
	Album      Album        `json:"album"`
	LinkedFrom *LinkedTrack `json:"linked_from"`
}

// TrackID returns the id to look features up by: the item's own id, then the
// id it was relinked from, then the last segment of its URI.
func (i *Item) TrackID() string {
	if i == nil {
		return ""
	}
	if i.ID != "" {
		return i.ID
	}
	if i.LinkedFrom != nil && i.LinkedFrom.ID != "" {
		return i.LinkedFrom.ID
	}
	if i.URI != "" {
		parts := strings.Split(i.URI, ":")
		return parts[len(parts)-1]
	}
	return ""
}

// ArtistNames joins the credited artists with ", ".
func (i *Item) ArtistNames() string {
	if i == nil {
		return ""
	}
	names := make([]string, 0, len(i.Artists))
	for _, a := range i.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// CoverURL returns the first (largest) album image, if any.
func (i *Item) CoverURL() string {
	if i == nil || len(i.Album.Images) == 0 {
		return ""
	}
	return i.Album.Images[0].URL
}

// CurrentlyPlaying is the player state for the current user.
type CurrentlyPlaying struct {
	IsPlaying  bool  `json:"is_playing"`
	ProgressMs int   `json:"progress_ms"`
	Timestamp  int64 `json:"timestamp"`
	Item       *Item `json:"item"`
}

// Queue is the user's upcoming items.
type Queue struct {
	CurrentlyPlaying *Item  `json:"currently_playing"`
	Queue            []Item `json:"queue"`
}

// Next returns the head of the queue, or nil when it is empty.
func (q *Queue) Next() *Item {
	if q == nil || len(q.Queue) == 0 {
		return nil
	}
	return &q.Queue[0]
}

// AudioFeatures is the subset of audio analysis the relay reads.
type AudioFeatures struct {
	ID    string  `json:"id"`
	Tempo float64 `json:"tempo"`
}

// StatusError is a non-2xx response from the music service.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Code, e.Body)
}

// TokenProvider supplies bearer tokens for upstream calls.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Upstream is a minimal client for the music service's player endpoints.
type Upstream struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenProvider
	metrics *Metrics
}

// NewUpstream builds a client rooted at baseURL (DefaultAPIBaseURL when empty).
func NewUpstream(baseURL string, tokens TokenProvider, metrics *Metrics) (*Upstream, error) {
	if tokens == nil {
		return nil, fmt.Errorf("upstream requires a token provider")
	}
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultAPIBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	return &Upstream{
		baseURL: u,
		http:    &http.Client{Timeout: upstreamTimeout},
		tokens:  tokens,
		metrics: metrics,
	}, nil
}

// CurrentlyPlaying fetches the player state. It returns nil, nil when
// nothing is playing.
func (u *Upstream) CurrentlyPlaying(ctx context.Context) (*CurrentlyPlaying, error) {
	if u == nil {
		return nil, fmt.Errorf("upstream is nil")
	}
	var payload CurrentlyPlaying
	found, err := u.get(ctx, "currently-playing", "/me/player/currently-playing", &payload)
	if err != nil || !found {
		return nil, err
	}
	return &payload, nil
}

// Queue fetches the user's queue.
func (u *Upstream) Queue(ctx context.Context) (*Queue, error) {
	if u == nil {
		return nil, fmt.Errorf("upstream is nil")
	}
	var payload Queue
	if _, err := u.get(ctx, "queue", "/me/player/queue", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AudioFeatures fetches audio analysis for one track.
func (u *Upstream) AudioFeatures(ctx context.Context, trackID string) (*AudioFeatures, error) {
	if u == nil {
		return nil, fmt.Errorf("upstream is nil")
	}
	var payload AudioFeatures
	if _, err := u.get(ctx, "audio-features", "/audio-features/"+url.PathEscape(trackID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Tempo adapts AudioFeatures to a TempoFunc.
func (u *Upstream) Tempo(ctx context.Context, trackID string) (float64, error) {
	features, err := u.AudioFeatures(ctx, trackID)
	if err != nil {
		return 0, err
	}
	return features.Tempo, nil
}

// get reports found=false for 204 No Content.
func (u *Upstream) get(ctx context.Context, endpoint, path string, dest any) (found bool, err error) {
	defer func() { u.metrics.upstreamRequest(endpoint, err) }()

	token, err := u.tokens.AccessToken(ctx)
	if err != nil {
		return false, err
	}

	reqURL := u.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := u.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
