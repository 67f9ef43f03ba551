// Package httputil downloads remote datasets.
//
// # Overview
//
//   - [Client]: fetches a URL with retries, caching the body in a [Store]
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// Response bodies are kept in any [Store] (the cache package's backends all
// qualify) under a key derived from the URL, so repeated runs against the
// same remote CSV do not hit the network:
//
//	client := httputil.NewClient(store, 24*time.Hour)
//	data, cached, err := client.Fetch(ctx, "https://example.com/spotify_songs.csv")
//
// # Retry
//
// [Retry] wraps operations with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other failures, including 4xx responses, are returned at once.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return httputil.Retryable(ping())
//	})
package httputil
