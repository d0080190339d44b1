// Package integrations provides HTTP clients for third-party APIs.
//
// # Overview
//
// This package contains the low-level HTTP plumbing shared by BountyHub's
// external API clients. The GitHub client lives in its own subpackage:
//
//   - [github]: GitHub REST API (OAuth, repositories, webhooks, issue comments)
//
// # Client Pattern
//
// API clients embed [Client], which handles:
//   - HTTP requests with retry for transient failures
//   - Response caching (file-based, configurable TTL)
//   - Default headers (Accept, Authorization)
//
// Read-only lookups go through [Client.Cached] so repeated repository and
// user fetches don't count against upstream rate limits. Mutating calls
// (webhook and comment management) go through [Client.Do] and are never
// cached.
//
// # Errors
//
// Clients translate HTTP status codes into sentinel errors: [ErrNotFound]
// for 404, [ErrUnauthorized] for 401/403, and [ErrNetwork] for everything
// else. 5xx responses are wrapped in [httputil.RetryableError] so the
// retry layer attempts them again.
//
// [github]: github.com/bountyhub/bountyhub/pkg/integrations/github
// [httputil.RetryableError]: github.com/bountyhub/bountyhub/pkg/httputil.RetryableError
package integrations
