// Package httputil provides HTTP infrastructure shared by API clients.
//
// # Overview
//
// This package provides the plumbing used by the GitHub integration:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/bountyhub/)
// with configurable TTL. This keeps repeated repository and user lookups
// from counting against the GitHub API rate limit.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	var repo RepoInfo
//	ok, err := cache.Get("github:octocat/hello", &repo)  // Check cache
//	if !ok {
//	    repo = fetchFromAPI()
//	    cache.Set("github:octocat/hello", repo)          // Store for later
//	}
//
// Cache keys should be namespaced by resource type to avoid collisions.
//
// # Retry
//
// [Retry] wraps operations with automatic retry for transient failures.
// Only errors wrapped in [RetryableError] are retried (network errors,
// 5xx server errors); everything else fails immediately. The backoff
// delay doubles after each failed attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.fetch(url)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/bountyhub/
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `bountyhub cache clear` or by deleting
// the cache directory.
package httputil
