package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Controller defines the device operations the panel depends on.
// It is implemented by *Client and can be replaced in tests.
type Controller interface {
	FetchStatus(ctx context.Context) (*Status, error)
	FetchMusic(ctx context.Context) (*Music, error)
	SetMode(ctx context.Context, mode Mode) error
	PostRGB(ctx context.Context, c RGB) error
	SetPartyHz(ctx context.Context, hz float64) error
	Unlock(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Ensure Client implements Controller at compile time.
var _ Controller = (*Client)(nil)

// Client talks to the lamp's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAddr      = "192.168.4.1"
	defaultUserAgent = "lumen/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the given host[:port] or URL.
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the resolved device URL.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchStatus retrieves mode, network and lock state.
func (c *Client) FetchStatus(ctx context.Context) (*Status, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Status
	if err := c.get(ctx, "/api/status", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchMusic retrieves the now-playing payload.
func (c *Client) FetchMusic(ctx context.Context) (*Music, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Music
	if err := c.get(ctx, "/api/music", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SetMode switches the lamp's operating mode.
func (c *Client) SetMode(ctx context.Context, mode Mode) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("mode", string(mode))
	return c.post(ctx, "/api/mode", values)
}

// PostRGB sends a remote color. The body keeps the r, g, b order the
// firmware parses.
func (c *Client) PostRGB(ctx context.Context, rgb RGB) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.postRaw(ctx, "/postRGB", EncodeRGB(rgb))
}

// SetPartyHz pushes the party strobe frequency.
func (c *Client) SetPartyHz(ctx context.Context, hz float64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("hz", strconv.FormatFloat(hz, 'f', -1, 64))
	return c.post(ctx, "/api/party", values)
}

// Unlock enables full power output.
func (c *Client) Unlock(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.postRaw(ctx, "/unlock", "")
}

// Reset returns the lamp to safe power mode.
func (c *Client) Reset(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.postRaw(ctx, "/reset", "")
}

// EncodeRGB renders the form body for /postRGB.
func EncodeRGB(c RGB) string {
	return fmt.Sprintf("r=%d&g=%d&b=%d", c.R, c.G, c.B)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, "")
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, path, dest)
}

func (c *Client) post(ctx context.Context, path string, values url.Values) error {
	return c.postRaw(ctx, path, values.Encode())
}

func (c *Client) postRaw(ctx context.Context, path, body string) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, path, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path, body string) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) do(req *http.Request, path string, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse device address %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
