// Package pkg provides the core libraries for BountyHub issue bounty tracking.
//
// # Overview
//
// BountyHub lets repository maintainers attach monetary bounties to GitHub
// issues and tracks each bounty from funding through merge and payout. The
// pkg directory is organized into four main areas:
//
//  1. [bounty] - Domain logic (bounty lifecycle, status comment rendering)
//  2. [storage] - Persistence backends (MongoDB, in-memory)
//  3. [integrations] - External API clients (GitHub REST, OAuth)
//  4. [session] - Session and OAuth state management (Redis, file, memory)
//
// # Architecture
//
// The typical flow through BountyHub:
//
//	GitHub OAuth login
//	         ↓
//	    [integrations/github] (repos, webhooks, issue comments)
//	         ↓
//	    [bounty] package (lifecycle: open → merged → paid)
//	         ↓
//	    [storage] package (MongoDB or memory)
//	         ↓
//	    status comment kept in sync on the bountied issue
//
// # Main Packages
//
// ## Domain Logic
//
// [bounty] - The bounty lifecycle state machine and the formatted status
// comment each bountied issue carries. Comments embed a hidden marker so
// updates are idempotent and deleted comments can be restored.
//
// ## Persistence
//
// [storage] - Bounty stores behind a single interface. MongoStore for
// deployments (unique partial index enforces one active bounty per issue),
// MemoryStore for tests and local runs.
//
// ## External Integrations
//
// [integrations] - Shared HTTP plumbing (caching, retry, error mapping)
// and the GitHub client: repository listing, webhook management, issue
// comments, OAuth web and device flows, and webhook signature verification.
//
// ## Infrastructure
//
// [session] - Browser sessions and single-use OAuth state tokens with
// memory, Redis, and file backends. The file backend serves the CLI's
// stored login.
//
// [httputil] - File-based response caching and retry with exponential
// backoff, shared by all API clients.
//
// [errors] - Structured errors with machine-readable codes, surfaced in
// API responses.
//
// [observability] - Optional hooks for webhook, cache, and HTTP events.
// No-op by default; backends are registered at startup.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/bounty/...   # Specific package
//
// [bounty]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/bounty
// [storage]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/storage
// [integrations]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/integrations
// [session]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/session
// [httputil]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/errors
// [observability]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/bountyhub/bountyhub/pkg/buildinfo
package pkg
