package streams

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/logger"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Listing covers the low-volume streams whose endpoints have no
// server-side time filter. Every record is fetched each run and
// filtered locally against the bookmark the run started with.
type Listing struct {
	base

	// Group memberships occasionally arrive without an updated_at.
	// Those records bypass the bookmark filter instead of failing
	// the stream.
	allowMissingUpdatedAt bool

	fetch func(ctx context.Context, fn func(page []map[string]any) error) error
}

// NewGroups creates the groups stream.
func NewGroups(client *zendesk.Client, settings domain.Settings) *Listing {
	l := newListing(domain.StreamGroups, client, settings)
	l.fetch = client.Groups
	return l
}

// NewGroupMemberships creates the group_memberships stream.
func NewGroupMemberships(client *zendesk.Client, settings domain.Settings) *Listing {
	l := newListing(domain.StreamGroupMemberships, client, settings)
	l.allowMissingUpdatedAt = true
	l.fetch = client.GroupMemberships
	return l
}

// NewMacros creates the macros stream.
func NewMacros(client *zendesk.Client, settings domain.Settings) *Listing {
	l := newListing(domain.StreamMacros, client, settings)
	l.fetch = client.Macros
	return l
}

// NewTicketFields creates the ticket_fields stream.
func NewTicketFields(client *zendesk.Client, settings domain.Settings) *Listing {
	l := newListing(domain.StreamTicketFields, client, settings)
	l.fetch = client.TicketFields
	return l
}

// NewTicketForms creates the ticket_forms stream.
func NewTicketForms(client *zendesk.Client, settings domain.Settings) *Listing {
	l := newListing(domain.StreamTicketForms, client, settings)
	l.fetch = client.TicketForms
	return l
}

func newListing(name string, client *zendesk.Client, settings domain.Settings) *Listing {
	return &Listing{
		base: base{
			name:              name,
			replicationMethod: domain.ReplicationIncremental,
			replicationKey:    "updated_at",
			keyProperties:     defaultKeyProperties,
			client:            client,
			settings:          settings,
		},
	}
}

// Sync fetches the full listing and emits records updated at or after
// the bookmark. These endpoints return records in no particular order,
// so the bookmark is only reported once every record has been seen.
func (s *Listing) Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}
		st := seedState(s.name, bookmark)

		err := s.fetch(ctx, func(page []map[string]any) error {
			for _, rec := range page {
				updated, ok := recordTime(rec, "updated_at")
				if !ok {
					if !s.allowMissingUpdatedAt {
						return fmt.Errorf("record missing updated_at")
					}
					if id, hasID := recordID(rec); hasID {
						logger.Info("%s record %d has no updated_at field so it will be synced", s.name, id)
						if !out.send(s.name, rec) {
							return ctx.Err()
						}
					} else {
						logger.Info("Received %s record with no id or updated_at, skipping", s.name)
					}
					continue
				}
				if updated.Before(bookmark.Value) {
					continue
				}
				st.Advance(s.name, s.replicationKey, updated)
				if !out.send(s.name, rec) {
					return ctx.Err()
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
