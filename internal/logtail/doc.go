// Package logtail reads the tail of the panel's log file for the in-app
// diagnostics view.
//
// Read extracts the last N lines of a file in one pass using a ring buffer,
// so memory stays O(N) however large the log grows. A missing file is not an
// error; the panel may not have logged anything yet.
//
// The panel logs with zap's JSON encoder. Parse turns one such line into an
// Entry (time, level, logger, message, and the remaining fields rendered as
// strings). Lines that are not JSON objects are kept verbatim in Entry.Raw so
// nothing written to the file is hidden. Entry.Format renders the compact
// single-line form shown in the diagnostics view:
//
//	21:01:05 WARN  status check failed error="api /api/status returned status 500"
package logtail
