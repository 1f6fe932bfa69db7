package streams

import (
	"context"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// defaultKeyProperties is the primary key for every stream except tags.
var defaultKeyProperties = []string{"id"}

// base carries the identity shared by every stream implementation.
type base struct {
	name              string
	replicationMethod domain.ReplicationMethod
	replicationKey    string
	keyProperties     []string
	client            *zendesk.Client
	settings          domain.Settings
}

func (b *base) Name() string {
	return b.name
}

func (b *base) ReplicationMethod() domain.ReplicationMethod {
	return b.replicationMethod
}

func (b *base) ReplicationKey() string {
	return b.replicationKey
}

func (b *base) KeyProperties() []string {
	return b.keyProperties
}

// Schema loads the stream's embedded schema. Streams with
// account-specific custom fields override this.
func (b *base) Schema(_ context.Context) (*domain.Schema, error) {
	return loadSchema(b.name)
}

// searchWindow returns the configured search window in seconds.
func (b *base) searchWindow() int {
	if b.settings.SearchWindowSeconds > 0 {
		return b.settings.SearchWindowSeconds
	}
	return domain.DefaultSearchWindowSeconds
}

// seedState builds a working state holding the stream's starting
// bookmark. Streams advance it as they extract and report it back
// through Checkpoint and SyncComplete sentinels.
func seedState(name string, bookmark domain.Bookmark) *domain.State {
	st := domain.NewState()
	if !bookmark.Value.IsZero() {
		st.SetBookmark(name, bookmark.ReplicationKey, bookmark.Value)
	}
	return st
}

// currentBookmark reads the working state's bookmark for the stream.
func currentBookmark(st *domain.State, name string) domain.Bookmark {
	b, _ := st.Bookmark(name)
	return b
}

// sender pushes records and sentinels to the orchestrator, honouring
// cancellation so an abandoned sync cannot leak its goroutine.
type sender struct {
	ctx     context.Context
	records chan<- domain.Record
	errs    chan<- error
}

// send delivers one record. Returns false if the context is done.
func (s *sender) send(stream string, data map[string]any) bool {
	select {
	case <-s.ctx.Done():
		return false
	case s.records <- domain.NewRecord(stream, data):
		return true
	}
}

// checkpoint delivers a mid-sync resume point.
func (s *sender) checkpoint(bookmark domain.Bookmark) bool {
	select {
	case <-s.ctx.Done():
		return false
	case s.errs <- &driven.Checkpoint{Bookmark: bookmark}:
		return true
	}
}

// fail delivers a terminal error.
func (s *sender) fail(err error) {
	select {
	case <-s.ctx.Done():
	case s.errs <- err:
	}
}

// complete delivers the successful-completion sentinel.
func (s *sender) complete(bookmark domain.Bookmark) {
	select {
	case <-s.ctx.Done():
	case s.errs <- &driven.SyncComplete{Bookmark: bookmark}:
	}
}

// recordID reads a record's numeric id. JSON numbers decode to float64.
func recordID(data map[string]any) (int64, bool) {
	switch v := data["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// epochTime reads an epoch-seconds field as a UTC time.
func epochTime(data map[string]any, field string) (time.Time, bool) {
	switch v := data[field].(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case int:
		return time.Unix(int64(v), 0).UTC(), true
	}
	return time.Time{}, false
}

// recordTime parses a timestamp field such as updated_at.
func recordTime(data map[string]any, field string) (time.Time, bool) {
	s, ok := data[field].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := domain.ParseBookmarkTime(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// sleepContext waits for the duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
