package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// BookmarkTimeFormat is the wire format for bookmark values: UTC,
// second precision, trailing Z.
const BookmarkTimeFormat = "2006-01-02T15:04:05Z"

// Bookmark is a stream's incremental high-watermark: the replication
// key it tracks and the cursor value.
type Bookmark struct {
	// ReplicationKey is the record field the bookmark tracks.
	ReplicationKey string

	// Value is the cursor. Records at or after this instant are
	// extracted on the next run.
	Value time.Time
}

// IsZero returns true for an unset bookmark.
func (b Bookmark) IsZero() bool {
	return b.ReplicationKey == "" && b.Value.IsZero()
}

// MarshalJSON encodes the bookmark as {"<replication_key>": "<value>"}.
func (b Bookmark) MarshalJSON() ([]byte, error) {
	if b.ReplicationKey == "" {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string{
		b.ReplicationKey: b.Value.UTC().Format(BookmarkTimeFormat),
	})
}

// UnmarshalJSON decodes the {"<replication_key>": "<value>"} form.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing bookmark: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value, err := ParseBookmarkTime(raw[key])
		if err != nil {
			return fmt.Errorf("parsing bookmark %q: %w", key, err)
		}
		b.ReplicationKey = key
		b.Value = value
		return nil
	}
	*b = Bookmark{}
	return nil
}

// ParseBookmarkTime parses a bookmark value, accepting second and
// sub-second RFC3339 forms.
func ParseBookmarkTime(value string) (time.Time, error) {
	for _, layout := range []string{BookmarkTimeFormat, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrInvalidInput, value)
}

// State holds every stream's bookmark. The JSON form is
// {"bookmarks": {"tickets": {"generated_timestamp": "2024-01-02T03:04:05Z"}}}.
type State struct {
	Bookmarks map[string]Bookmark `json:"bookmarks"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Bookmarks: make(map[string]Bookmark)}
}

// Bookmark returns the named stream's bookmark.
func (s *State) Bookmark(stream string) (Bookmark, bool) {
	b, ok := s.Bookmarks[stream]
	return b, ok
}

// SetBookmark stores a bookmark verbatim, replacing any existing one.
func (s *State) SetBookmark(stream, replicationKey string, value time.Time) {
	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]Bookmark)
	}
	s.Bookmarks[stream] = Bookmark{ReplicationKey: replicationKey, Value: value.UTC()}
}

// Advance moves a stream's bookmark to candidate+1s if the candidate
// is later than the stored value. The +1s offset makes the stored
// cursor exclusive of the newest record seen, so re-runs do not
// re-extract it. Returns true if the bookmark moved.
func (s *State) Advance(stream, replicationKey string, candidate time.Time) bool {
	current, ok := s.Bookmarks[stream]
	if ok && !candidate.UTC().After(current.Value) {
		return false
	}
	s.SetBookmark(stream, replicationKey, candidate.UTC().Add(time.Second))
	return true
}

// Clone returns a deep copy, safe to mutate independently.
func (s *State) Clone() *State {
	clone := NewState()
	for stream, b := range s.Bookmarks {
		clone.Bookmarks[stream] = b
	}
	return clone
}

// Merge overlays the other state's bookmarks onto this one.
func (s *State) Merge(other *State) {
	if other == nil {
		return
	}
	for stream, b := range other.Bookmarks {
		s.SetBookmark(stream, b.ReplicationKey, b.Value)
	}
}
