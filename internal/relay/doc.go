// Package relay is the music relay: a small HTTP service that turns the
// music service's player API into the flat now-playing payload the lamp
// polls.
//
// # Overview
//
// Each GET /playback makes two upstream calls (currently playing, then the
// queue), derives a track id, and for tracks asks FeatureCache for the tempo.
// Any upstream failure fails that request with 500 {"error": ...}; there is
// no retry inside the relay because the lamp polls again a few seconds later.
//
// # Components
//
//   - TokenCache: mints access tokens from a refresh token via
//     golang.org/x/oauth2 and reuses them until 10s before expiry
//   - FeatureCache: single-slot tempo cache, 5 minute lifetime, failures
//     logged and reported as unknown
//   - Upstream: bearer-token HTTP client for the player endpoints
//   - Relay: assembles the payload
//   - Server: routes, auth helper, Prometheus /metrics
//
// # Endpoints
//
//	GET /playback  now-playing payload, 503 until a refresh token is configured
//	GET /healthz   {"status":"ok","playback":bool}
//	GET /metrics   Prometheus exposition
//	GET /login     redirects to the provider's consent page
//	GET /callback  exchanges the code and shows the refresh token to save
//
// # Credentials
//
// Client id, client secret, and refresh token come only from configuration
// (relay.toml or SPOTIFY_* environment variables). There are no built-in
// defaults.
package relay
