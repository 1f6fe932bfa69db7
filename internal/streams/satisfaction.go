package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/logger"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// ratingsResultLimit caps how many ratings one window may hold. Large
// windows take so long that bookmarks would go unwritten for hours, so
// the window shrinks until the count fits.
const ratingsResultLimit = 50000

// SatisfactionRatings extracts satisfaction ratings in epoch-bounded
// time windows with the same halve-and-grow windowing as users.
type SatisfactionRatings struct {
	base

	now func() time.Time
}

// NewSatisfactionRatings creates the satisfaction_ratings stream.
func NewSatisfactionRatings(client *zendesk.Client, settings domain.Settings) *SatisfactionRatings {
	return &SatisfactionRatings{
		base: base{
			name:              domain.StreamSatisfactionRatings,
			replicationMethod: domain.ReplicationIncremental,
			replicationKey:    "updated_at",
			keyProperties:     defaultKeyProperties,
			client:            client,
			settings:          settings,
		},
		now: time.Now,
	}
}

// Sync queries ratings updated inside [bookmark, now-1m) window by
// window. Ratings arrive out of order within a window, so the bookmark
// only advances for in-window records and state is checkpointed after
// each complete window.
func (s *SatisfactionRatings) Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error) {
	records := make(chan domain.Record)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		out := &sender{ctx: ctx, records: records, errs: errs}
		st := seedState(s.name, bookmark)

		originalWindow := s.searchWindow()
		window := originalWindow
		start := bookmark.Value
		end := start.Add(windowDuration(window))
		syncEnd := s.now().UTC().Add(-time.Minute)

		for start.Before(syncEnd) {
			if err := ctx.Err(); err != nil {
				out.fail(err)
				return
			}

			queryEnd := end
			if queryEnd.After(syncEnd) {
				queryEnd = syncEnd
			}

			logger.Info("Querying for satisfaction ratings between %s and %s",
				formatWindowTime(start), formatWindowTime(queryEnd))
			count, err := s.client.SatisfactionRatingsCount(ctx, start, queryEnd)
			if err != nil {
				out.fail(fmt.Errorf("satisfaction_ratings: %w", err))
				return
			}

			if count > ratingsResultLimit {
				if window > 1 {
					window /= 2
					end = start.Add(windowDuration(window))
					logger.Info("satisfaction_ratings: %d results in this window, halving to %d seconds", count, window)
					continue
				}
				out.fail(fmt.Errorf("%w: %d ratings updated within one second at %s",
					domain.ErrSearchWindowTooSmall, count, formatWindowTime(start)))
				return
			}

			err = s.client.EachSatisfactionRatingPage(ctx, start, queryEnd, func(page []map[string]any) error {
				for _, rating := range page {
					updated, ok := recordTime(rating, "updated_at")
					if !ok {
						return fmt.Errorf("record missing updated_at")
					}
					if updated.Before(start) {
						return fmt.Errorf("record updated %s precedes window start %s",
							formatWindowTime(updated), formatWindowTime(start))
					}
					if updated.After(bookmark.Value) && !updated.After(end) {
						st.Advance(s.name, s.replicationKey, updated)
					}
					if !updated.After(end) {
						if !out.send(s.name, rating) {
							return ctx.Err()
						}
					}
				}
				return nil
			})
			if err != nil {
				out.fail(fmt.Errorf("satisfaction_ratings: %w", err))
				return
			}

			if window <= originalWindow/2 {
				window *= 2
				logger.Info("Successfully requested records, doubling search window to %d seconds", window)
			}
			if !out.checkpoint(currentBookmark(st, s.name)) {
				return
			}

			start = end.Add(-time.Second)
			end = start.Add(windowDuration(window))
		}

		out.complete(currentBookmark(st, s.name))
	}()

	return records, errs
}
