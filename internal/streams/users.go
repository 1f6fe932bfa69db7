package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/logger"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

const (
	// searchResultLimit is the hard cap on retrievable search results.
	// The API errors on the 1001st record, so windows shrink until the
	// count fits.
	searchResultLimit = 1000

	// consistencyWait is how long to wait before retrying a window that
	// returned records older than its start. The search index lags
	// writes.
	consistencyWait = 30 * time.Second

	// maxConsistencyRetries bounds the consistency wait at 30 minutes.
	maxConsistencyRetries = 60
)

// Users extracts users through the search API in time windows. The
// search result cap forces windowing: a window whose count exceeds the
// cap is halved until it fits, and grows back after successful windows.
type Users struct {
	base

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewUsers creates the users stream.
func NewUsers(client *zendesk.Client, settings domain.Settings) *Users {
	return &Users{
		base: base{
			name:              domain.StreamUsers,
			replicationMethod: domain.ReplicationIncremental,
			replicationKey:    "updated_at",
			keyProperties:     defaultKeyProperties,
			client:            client,
			settings:          settings,
		},
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Schema returns the user schema enriched with the account's custom
// user fields.
func (s *Users) Schema(ctx context.Context) (*domain.Schema, error) {
	schema, err := loadSchema(s.name)
	if err != nil {
		return nil, err
	}

	fields, err := s.client.UserFields(ctx)
	if err != nil {
		if isFieldAccessDenied(err) {
			logger.Warn("Account credentials have no access to %s custom fields", s.name)
			return schema, nil
		}
		return nil, fmt.Errorf("users: %w", err)
	}

	if err := enrichCustomFields(schema, "user_fields", fields); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return schema, nil
}

// Sync queries users updated inside [bookmark-1s, now-1m), one window
// at a time. The bookmark advances to each window's end, with a
// checkpoint per window.
func (s *Users) Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}
		st := seedState(s.name, bookmark)

		originalWindow := s.searchWindow()
		window := originalWindow
		start := bookmark.Value.Add(-time.Second)
		end := start.Add(windowDuration(window))
		syncEnd := s.now().UTC().Add(-time.Minute)
		retries := 0

		for start.Before(syncEnd) {
			if err := ctx.Err(); err != nil {
				out.fail(err)
				return
			}

			queryEnd := end
			if queryEnd.After(syncEnd) {
				queryEnd = syncEnd
			}

			logger.Info("Querying for users between %s and %s",
				formatWindowTime(start), formatWindowTime(queryEnd))
			count, err := s.client.SearchUsersCount(ctx, start, queryEnd)
			if err != nil {
				out.fail(fmt.Errorf("users: %w", err))
				return
			}

			if count > searchResultLimit {
				if window > 1 {
					window /= 2
					end = start.Add(windowDuration(window))
					logger.Info("users: %d results exceed the search cap, halving window to %d seconds", count, window)
					continue
				}
				out.fail(fmt.Errorf("%w: %d users updated within one second at %s",
					domain.ErrSearchWindowTooSmall, count, formatWindowTime(start)))
				return
			}

			users, err := s.collectWindow(ctx, start, queryEnd)
			if err != nil {
				out.fail(fmt.Errorf("users: %w", err))
				return
			}

			if early, found := earliestBefore(users, start); found {
				if retries < maxConsistencyRetries {
					retries++
					logger.Info("users: record updated %s precedes window start %s, waiting %s for search consistency (retry %d)",
						formatWindowTime(early), formatWindowTime(start), consistencyWait, retries)
					if err := s.sleep(ctx, consistencyWait); err != nil {
						out.fail(err)
						return
					}
					continue
				}
				out.fail(fmt.Errorf("users: record updated %s still precedes window start %s after %d consistency retries",
					formatWindowTime(early), formatWindowTime(start), maxConsistencyRetries))
				return
			}
			retries = 0

			for _, user := range users {
				updated, ok := recordTime(user, "updated_at")
				if !ok {
					continue
				}
				if !updated.Before(start) && !updated.After(queryEnd) {
					if !out.send(s.name, user) {
						return
					}
				}
			}

			st.Advance(s.name, s.replicationKey, queryEnd)
			if !out.checkpoint(currentBookmark(st, s.name)) {
				return
			}

			if window <= originalWindow/2 {
				window *= 2
				logger.Info("Successfully requested records, doubling search window to %d seconds", window)
			}
			start = end.Add(-time.Second)
			end = start.Add(windowDuration(window))
		}

		out.complete(currentBookmark(st, s.name))
	}()

	return records, errs
}

// collectWindow fetches every user in the window. The whole window is
// held in memory so it can be checked for out-of-order records before
// anything is emitted; the search cap bounds it at 1000 records.
func (s *Users) collectWindow(ctx context.Context, start, end time.Time) ([]map[string]any, error) {
	var users []map[string]any
	err := s.client.EachSearchUserPage(ctx, start, end, func(page []map[string]any) error {
		users = append(users, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// earliestBefore returns the earliest updated_at older than start.
func earliestBefore(records []map[string]any, start time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, record := range records {
		updated, ok := recordTime(record, "updated_at")
		if !ok {
			continue
		}
		if updated.Before(start) && (!found || updated.Before(earliest)) {
			earliest = updated
			found = true
		}
	}
	return earliest, found
}

// windowDuration converts a window size in seconds to a duration.
func windowDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// formatWindowTime formats a window boundary for logs.
func formatWindowTime(t time.Time) string {
	return t.UTC().Format(domain.BookmarkTimeFormat)
}
