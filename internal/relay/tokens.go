package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshSkew is how close to expiry a cached token is still handed out.
const refreshSkew = 10 * time.Second

// ErrNoRefreshToken is returned when no refresh token has been configured.
var ErrNoRefreshToken = errors.New("no refresh token configured")

// TokenCache hands out access tokens minted from a long-lived refresh token.
//
// Concurrent callers that all find the token stale may each refresh; the last
// one to finish wins the slot. None of them ever receive an expired token.
type TokenCache struct {
	conf    *oauth2.Config
	metrics *Metrics
	now     func() time.Time

	mu           sync.Mutex
	refreshToken string
	token        *oauth2.Token
}

// NewTokenCache builds a cache that refreshes through conf's token endpoint.
func NewTokenCache(conf *oauth2.Config, refreshToken string, metrics *Metrics) *TokenCache {
	return &TokenCache{
		conf:         conf,
		metrics:      metrics,
		now:          time.Now,
		refreshToken: refreshToken,
	}
}

// AccessToken returns a token that will not expire within refreshSkew,
// refreshing it when necessary.
func (c *TokenCache) AccessToken(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("token cache is nil")
	}

	c.mu.Lock()
	cached := c.token
	refresh := c.refreshToken
	c.mu.Unlock()

	if c.valid(cached) {
		return cached.AccessToken, nil
	}
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	fresh, err := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
	c.metrics.tokenRefresh(err)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	c.mu.Lock()
	c.token = fresh
	if fresh.RefreshToken != "" {
		c.refreshToken = fresh.RefreshToken
	}
	c.mu.Unlock()
	return fresh.AccessToken, nil
}

// HasRefreshToken reports whether the cache can mint tokens at all.
func (c *TokenCache) HasRefreshToken() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken != ""
}

func (c *TokenCache) valid(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}
	return c.now().Add(refreshSkew).Before(tok.Expiry)
}
