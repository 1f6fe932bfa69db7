package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/logger"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Organizations extracts organizations through the incremental export
// API.
type Organizations struct {
	base
}

// NewOrganizations creates the organizations stream.
func NewOrganizations(client *zendesk.Client, settings domain.Settings) *Organizations {
	return &Organizations{base: base{
		name:              domain.StreamOrganizations,
		replicationMethod: domain.ReplicationIncremental,
		replicationKey:    "updated_at",
		keyProperties:     defaultKeyProperties,
		client:            client,
		settings:          settings,
	}}
}

// Schema returns the organization schema enriched with the account's
// custom organization fields.
func (s *Organizations) Schema(ctx context.Context) (*domain.Schema, error) {
	schema, err := loadSchema(s.name)
	if err != nil {
		return nil, err
	}

	fields, err := s.client.OrganizationFields(ctx)
	if err != nil {
		if isFieldAccessDenied(err) {
			logger.Warn("Account credentials have no access to %s custom fields", s.name)
			return schema, nil
		}
		return nil, fmt.Errorf("organizations: %w", err)
	}

	if err := enrichCustomFields(schema, "organization_fields", fields); err != nil {
		return nil, fmt.Errorf("organizations: %w", err)
	}
	return schema, nil
}

// Sync walks the organization export from the bookmark, advancing the
// bookmark one second past each record's updated_at.
func (s *Organizations) Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}
		st := seedState(s.name, bookmark)

		err := s.client.EachOrganizationExportPage(ctx, bookmark.Value, func(page *zendesk.ExportPage) error {
			for _, organization := range page.Records {
				if updated, ok := recordTime(organization, "updated_at"); ok {
					st.Advance(s.name, s.replicationKey, updated.Add(time.Second))
				}
				if !out.send(s.name, organization) {
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil {
			out.fail(fmt.Errorf("organizations: %w", err))
			return
		}

		out.complete(currentBookmark(st, s.name))
	}()

	return records, errs
}
