package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/logger"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// TicketChildren extracts per-ticket child records driven off the
// ticket export: audits, comments and metrics. Each child is stamped
// with its parent's generated timestamp so the bookmark tracks export
// progress rather than the child's own timestamps.
type TicketChildren struct {
	base

	// label names the child kind in progress logs.
	label string

	// skipDeleted skips tickets with status "deleted". Their audits and
	// comments cannot be retrieved.
	skipDeleted bool

	// warnMissing downgrades a per-ticket not-found to a warning.
	// Deleted and archived tickets have no metrics.
	warnMissing bool

	fetch func(ctx context.Context, ticketID int64) ([]map[string]any, error)
}

// NewTicketAudits creates the ticket_audits stream.
func NewTicketAudits(client *zendesk.Client, settings domain.Settings) *TicketChildren {
	return &TicketChildren{
		base:        childBase(domain.StreamTicketAudits, client, settings),
		label:       "audit",
		skipDeleted: true,
		fetch:       client.TicketAudits,
	}
}

// NewTicketComments creates the ticket_comments stream.
func NewTicketComments(client *zendesk.Client, settings domain.Settings) *TicketChildren {
	return &TicketChildren{
		base:        childBase(domain.StreamTicketComments, client, settings),
		label:       "comments",
		skipDeleted: true,
		fetch:       client.TicketComments,
	}
}

// NewTicketMetrics creates the ticket_metrics stream.
func NewTicketMetrics(client *zendesk.Client, settings domain.Settings) *TicketChildren {
	return &TicketChildren{
		base:        childBase(domain.StreamTicketMetrics, client, settings),
		label:       "metrics",
		warnMissing: true,
		fetch: func(ctx context.Context, ticketID int64) ([]map[string]any, error) {
			metric, err := client.TicketMetric(ctx, ticketID)
			if err != nil {
				return nil, err
			}
			if metric == nil {
				return nil, nil
			}
			return []map[string]any{metric}, nil
		},
	}
}

func childBase(name string, client *zendesk.Client, settings domain.Settings) base {
	return base{
		name:              name,
		replicationMethod: domain.ReplicationIncremental,
		replicationKey:    "ticket_generated_timestamp",
		keyProperties:     defaultKeyProperties,
		client:            client,
		settings:          settings,
	}
}

// Sync walks the ticket export from the bookmark and fetches each
// ticket's children. The bookmark advances with the parent ticket's
// generated timestamp.
func (s *TicketChildren) Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}
		st := seedState(s.name, bookmark)
		seen := make(map[int64]bool)
		ticketCount := 0

		err := s.client.EachTicketExportPage(ctx, bookmark.Value, func(page *zendesk.ExportPage) error {
			for _, ticket := range page.Records {
				if ticketCount%100 == 0 {
					logger.Info("Pushed %s records for %d tickets", s.label, ticketCount)
				}
				ticketCount++

				id, ok := recordID(ticket)
				if !ok || seen[id] {
					continue
				}
				if status, _ := ticket["status"].(string); s.skipDeleted && status == "deleted" {
					continue
				}
				seen[id] = true

				children, err := s.fetch(ctx, id)
				if err != nil {
					if s.warnMissing && zendesk.IsNotFound(err) {
						logger.Warn("Ticket %d not found, no %s records", id, s.label)
						continue
					}
					return err
				}

				generated := ticket["generated_timestamp"]
				generatedTime, hasGenerated := epochTime(ticket, "generated_timestamp")
				for _, child := range children {
					child["ticket_generated_timestamp"] = generated
					if hasGenerated {
						st.Advance(s.name, s.replicationKey, generatedTime.Add(time.Second))
					}
					if !out.send(s.name, child) {
						return ctx.Err()
					}
				}
			}
			return nil
		})
		if err != nil {
			out.fail(fmt.Errorf("%s: %w", s.name, err))
			return
		}

		out.complete(currentBookmark(st, s.name))
	}()

	return records, errs
}
