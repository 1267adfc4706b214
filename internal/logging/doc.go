// Package logging builds the zap loggers used by the lumen binaries.
//
// The panel owns the terminal, so it logs JSON lines to a file that the
// diagnostics view tails. The relay and simulator log to stderr in console
// format.
package logging
