// Package zendesk implements the Zendesk Support API client.
//
// The client handles the concerns every stream shares: authentication,
// rate limiting, retries and pagination. Streams in internal/streams
// compose its typed endpoint methods into extraction logic.
//
// # Authentication
//
// Two authentication methods are supported:
//
//   - OAuth: bearer tokens obtained via the OAuth 2.0 authorisation
//     code flow, refreshed transparently when a refresh token and
//     client credentials are configured.
//
//   - API token: account API tokens paired with an agent email,
//     transmitted as HTTP basic auth in the "{email}/token" form.
//
// OAuth takes precedence when both are configured.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to roughly
//     10 per second, staying under the 700-per-minute account limit
//     whilst maximising throughput.
//
//  2. Reactive handling: the client monitors X-Rate-Limit and
//     X-Rate-Limit-Remaining headers. When the quota runs low it waits
//     for the minute boundary; a 429 waits for the Retry-After period.
//
// # Pagination
//
// Three pagination styles are handled internally:
//
//   - Incremental exports: start_time cursors with end_of_stream
//     markers, walked page by page for checkpointing.
//   - Cursor pagination: page[size] with meta.has_more / links.next.
//   - Offset pagination: next_page links, still used by the search
//     API and followed when an endpoint answers in that form.
//
// # Error Handling
//
// Transient failures (502, 503, 504, 520 and transport errors) are
// retried up to five times with exponential backoff. Other API errors
// surface as [APIError]; rate limiting as [RateLimitError]. The
// IsNotFound, IsRateLimited, IsUnauthorized and IsForbidden helpers
// classify them.
package zendesk
