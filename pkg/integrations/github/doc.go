// Package github provides the GitHub REST API integration for BountyHub.
//
// # Overview
//
// This package is the single point of contact with GitHub
// (https://api.github.com). It covers everything the bounty tracker
// needs from the API:
//
//   - OAuth: authorization URLs, code/token exchange, and the device flow
//     for CLI login ([OAuthClient])
//   - Repositories: the authenticated user and the repositories they
//     administer ([Client.FetchUser], [Client.FetchAdminRepos])
//   - Webhooks: create, list, update, delete, and ping repository hooks
//     ([Client.CreateWebhook] and friends)
//   - Issue comments: create, update, and locate the bounty status
//     comment on an issue ([Client.UpsertComment])
//   - Webhook deliveries: signature verification and typed event payloads
//     ([VerifySignature], [ParseEvent])
//
// # Authentication
//
// All repository operations act on behalf of a repository administrator
// using an OAuth access token obtained via [OAuthClient]. Webhook
// installation requires the admin:repo_hook scope; commenting on private
// repositories requires repo.
//
// # Caching
//
// Repository metadata reads go through the shared response cache (see
// [integrations.Client.Cached]). Webhook and comment operations are
// mutations and always hit the API directly.
//
// # Idempotent comments
//
// BountyHub keeps exactly one status comment per bountied issue. The
// comment body carries an invisible HTML marker containing the bounty ID;
// [Client.UpsertComment] finds the existing comment by marker and edits
// it in place, creating it only when missing.
//
// [integrations.Client.Cached]: github.com/bountyhub/bountyhub/pkg/integrations.Client.Cached
package github
