package streams

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// FullTable covers the streams whose records carry no replication key.
// Every run re-extracts the whole collection.
type FullTable struct {
	base

	fetch func(ctx context.Context, fn func(page []map[string]any) error) error
}

// NewTags creates the tags stream. Tags have no id, the name is the key.
func NewTags(client *zendesk.Client, settings domain.Settings) *FullTable {
	return &FullTable{
		base: base{
			name:              domain.StreamTags,
			replicationMethod: domain.ReplicationFullTable,
			keyProperties:     []string{"name"},
			client:            client,
			settings:          settings,
		},
		fetch: client.Tags,
	}
}

// NewSLAPolicies creates the sla_policies stream.
func NewSLAPolicies(client *zendesk.Client, settings domain.Settings) *FullTable {
	return &FullTable{
		base: base{
			name:              domain.StreamSLAPolicies,
			replicationMethod: domain.ReplicationFullTable,
			keyProperties:     defaultKeyProperties,
			client:            client,
			settings:          settings,
		},
		fetch: client.SLAPolicies,
	}
}

// Sync emits every record in the collection.
func (s *FullTable) Sync(ctx context.Context, _ domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}

		err := s.fetch(ctx, func(page []map[string]any) error {
			for _, rec := range page {
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

		out.complete(domain.Bookmark{})
	}()

	return records, errs
}
