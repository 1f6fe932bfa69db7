package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Tickets extracts tickets through the incremental export API.
// Export pagination can repeat records, so tickets are deduplicated by
// id within a run. The legacy "fields" attribute duplicates
// "custom_fields" and is dropped before emission.
type Tickets struct {
	base
}

// NewTickets creates the tickets stream.
func NewTickets(client *zendesk.Client, settings domain.Settings) *Tickets {
	return &Tickets{base: base{
		name:              domain.StreamTickets,
		replicationMethod: domain.ReplicationIncremental,
		replicationKey:    "generated_timestamp",
		keyProperties:     defaultKeyProperties,
		client:            client,
		settings:          settings,
	}}
}

// Sync walks the ticket export from the bookmark, emitting tickets and
// advancing the bookmark per record. Each export page ends with a
// checkpoint.
func (s *Tickets) Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}
		st := seedState(s.name, bookmark)
		seen := make(map[int64]bool)

		err := s.client.EachTicketExportPage(ctx, bookmark.Value, func(page *zendesk.ExportPage) error {
			for _, ticket := range page.Records {
				if generated, ok := epochTime(ticket, "generated_timestamp"); ok {
					st.Advance(s.name, s.replicationKey, generated.Add(time.Second))
				}

				id, ok := recordID(ticket)
				if !ok || seen[id] {
					continue
				}
				seen[id] = true

				delete(ticket, "fields")
				if !out.send(s.name, ticket) {
					return ctx.Err()
				}
			}

			if !out.checkpoint(currentBookmark(st, s.name)) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			out.fail(fmt.Errorf("tickets: %w", err))
			return
		}

		out.complete(currentBookmark(st, s.name))
	}()

	return records, errs
}
