// Package refresher keeps the status cache current.
//
// In background mode a cron job probes the gateway every interval and
// requests only read the cache. In on-demand mode each status request
// triggers a refresh and waits for it, bounded by a request timeout; requests
// that arrive while a refresh is running join it instead of starting another.
//
// Both modes run at most one refresh at a time and warm the cache with one
// refresh at start. A failed refresh never replaces a cached document.
package refresher
