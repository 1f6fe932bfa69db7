// Package streams implements the built-in Zendesk streams.
//
// A stream extracts one Zendesk entity collection (tickets, users,
// organizations, ...) and emits records plus bookmark sentinels through
// the channel pair defined by [driven.Stream]. The [Registry] holds all
// fourteen streams in catalog order.
//
// # Replication
//
// Streams use the extraction strategy that fits their endpoint:
//
//   - Incremental export: tickets and organizations use the incremental
//     export API, which returns records changed since an epoch cursor
//     in generated_timestamp order.
//
//   - Ticket children: ticket_audits, ticket_comments and ticket_metrics
//     walk the ticket export and fetch each ticket's child records,
//     stamping them with the parent's generated_timestamp so they share
//     the tickets cursor.
//
//   - Windowed search: users and satisfaction_ratings query bounded time
//     windows. Windows halve when a window exceeds the API's result cap
//     and grow back once results fit, so dense periods still page
//     through completely.
//
//   - Listing: groups, group_memberships, macros, ticket_fields and
//     ticket_forms have no server-side time filter. The full collection
//     is fetched every run and filtered locally against the bookmark.
//
//   - Full table: tags and sla_policies carry no replication key and are
//     re-extracted in full every run.
//
// # Bookmarks
//
// Each stream keeps a working [domain.State] seeded from the bookmark
// it was started with. The bookmark advances one second past the newest
// record seen, so a resumed run re-fetches at most the records sharing
// that second. Streams whose endpoints return records out of order only
// report the bookmark once every record has been seen; ordered streams
// checkpoint at page boundaries so interrupted runs lose little work.
//
// # Custom Fields
//
// Zendesk accounts define their own user, organization and ticket
// fields. The tickets, users and organizations streams fetch the field
// definitions when building their schemas and graft a property per
// field onto the embedded base schema. Accounts whose credentials
// cannot read field definitions fall back to the base schema with a
// warning rather than failing discovery.
//
// # Cancellation
//
// Every channel send selects against the context, so cancelling a sync
// never leaks a stream goroutine. Terminal outcomes arrive on the error
// channel: a plain error for failure, [driven.SyncComplete] for
// success, with [driven.Checkpoint] marking resume points along the way.
package streams
