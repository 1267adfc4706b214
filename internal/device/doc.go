// Package device is the HTTP client for the lamp's control API.
//
// The lamp exposes a small form-encoded API:
//
//	GET  /api/status  {mode, ip, apFallback, unlocked, partyHz}
//	GET  /api/music   now-playing payload relayed from the music relay
//	POST /api/mode    mode=<wifi|rgb|ltt|party|music|off>
//	POST /postRGB     r=<0-255>&g=<0-255>&b=<0-255>
//	POST /api/party   hz=<float>
//	POST /unlock      no body
//	POST /reset       no body
//
// Client follows the same conventions as the rest of lumen: every call takes a
// context, non-2xx responses surface as "api <path> returned status <n>", and
// decode failures are wrapped with "decode response". Optional numeric fields
// (partyHz, bpm) decode into pointers so callers can tell a missing value from
// zero.
package device
