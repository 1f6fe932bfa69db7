package domain

import "fmt"

// Field inclusion values used in catalog metadata.
const (
	// InclusionAutomatic marks fields that are always emitted
	// (key properties and the replication key).
	InclusionAutomatic = "automatic"

	// InclusionAvailable marks fields the downstream may deselect.
	InclusionAvailable = "available"
)

// MetadataValues holds the annotations attached to a stream or field.
type MetadataValues struct {
	// Inclusion is set on field breadcrumbs: automatic or available.
	Inclusion string `json:"inclusion,omitempty"`

	// Selected marks the stream for extraction. Only meaningful on the
	// stream-level (empty breadcrumb) entry.
	Selected *bool `json:"selected,omitempty"`

	// TableKeyProperties lists the fields forming the primary key.
	TableKeyProperties []string `json:"table-key-properties,omitempty"`

	// ForcedReplicationMethod fixes the stream's replication method.
	ForcedReplicationMethod string `json:"forced-replication-method,omitempty"`

	// ValidReplicationKeys lists fields usable as the incremental cursor.
	ValidReplicationKeys []string `json:"valid-replication-keys,omitempty"`
}

// Metadata pairs a breadcrumb with its annotations. The empty breadcrumb
// addresses the stream itself; ["properties", <field>] addresses a field.
type Metadata struct {
	Breadcrumb []string       `json:"breadcrumb"`
	Metadata   MetadataValues `json:"metadata"`
}

// CatalogEntry describes one discoverable stream.
type CatalogEntry struct {
	// Stream is the stream name.
	Stream string `json:"stream"`

	// TapStreamID is the stable identifier, equal to Stream for the
	// built-in streams.
	TapStreamID string `json:"tap_stream_id"`

	// Schema describes the record shape.
	Schema *Schema `json:"schema"`

	// Metadata holds stream- and field-level annotations.
	Metadata []Metadata `json:"metadata"`
}

// Catalog is the ordered set of discoverable streams.
type Catalog struct {
	Streams []CatalogEntry `json:"streams"`
}

// NewCatalogEntry builds an entry with standard metadata: stream-level
// key properties, replication method and key, plus per-field inclusion.
// Key properties and the replication key are marked automatic.
func NewCatalogEntry(stream string, schema *Schema, keyProperties []string, method ReplicationMethod, replicationKey string) CatalogEntry {
	streamMeta := MetadataValues{
		TableKeyProperties:      keyProperties,
		ForcedReplicationMethod: method.String(),
	}
	if replicationKey != "" {
		streamMeta.ValidReplicationKeys = []string{replicationKey}
	}

	metadata := []Metadata{{Breadcrumb: []string{}, Metadata: streamMeta}}

	automatic := make(map[string]bool, len(keyProperties)+1)
	for _, key := range keyProperties {
		automatic[key] = true
	}
	if replicationKey != "" {
		automatic[replicationKey] = true
	}

	for _, field := range schema.PropertyNames() {
		inclusion := InclusionAvailable
		if automatic[field] {
			inclusion = InclusionAutomatic
		}
		metadata = append(metadata, Metadata{
			Breadcrumb: []string{"properties", field},
			Metadata:   MetadataValues{Inclusion: inclusion},
		})
	}

	return CatalogEntry{
		Stream:      stream,
		TapStreamID: stream,
		Schema:      schema,
		Metadata:    metadata,
	}
}

// streamMetadata returns the stream-level (empty breadcrumb) annotations.
func (e *CatalogEntry) streamMetadata() *MetadataValues {
	for i := range e.Metadata {
		if len(e.Metadata[i].Breadcrumb) == 0 {
			return &e.Metadata[i].Metadata
		}
	}
	return nil
}

// KeyProperties returns the stream's primary key fields.
func (e *CatalogEntry) KeyProperties() []string {
	if m := e.streamMetadata(); m != nil {
		return m.TableKeyProperties
	}
	return nil
}

// ReplicationMethod returns the stream's replication method.
func (e *CatalogEntry) ReplicationMethod() ReplicationMethod {
	if m := e.streamMetadata(); m != nil {
		return ReplicationMethod(m.ForcedReplicationMethod)
	}
	return ""
}

// ReplicationKey returns the incremental cursor field, or "" for
// full-table streams.
func (e *CatalogEntry) ReplicationKey() string {
	if m := e.streamMetadata(); m != nil && len(m.ValidReplicationKeys) > 0 {
		return m.ValidReplicationKeys[0]
	}
	return ""
}

// IsSelected returns true if the stream-level metadata marks the entry
// selected.
func (e *CatalogEntry) IsSelected() bool {
	if m := e.streamMetadata(); m != nil && m.Selected != nil {
		return *m.Selected
	}
	return false
}

// SetSelected sets the stream-level selected flag.
func (e *CatalogEntry) SetSelected(selected bool) {
	if m := e.streamMetadata(); m != nil {
		m.Selected = &selected
		return
	}
	e.Metadata = append(e.Metadata, Metadata{
		Breadcrumb: []string{},
		Metadata:   MetadataValues{Selected: &selected},
	})
}

// Get returns the entry for the named stream.
func (c *Catalog) Get(stream string) (*CatalogEntry, bool) {
	for i := range c.Streams {
		if c.Streams[i].TapStreamID == stream {
			return &c.Streams[i], true
		}
	}
	return nil, false
}

// SelectedStreams returns the names of all selected streams in catalog
// order.
func (c *Catalog) SelectedStreams() []string {
	var names []string
	for i := range c.Streams {
		if c.Streams[i].IsSelected() {
			names = append(names, c.Streams[i].TapStreamID)
		}
	}
	return names
}

// Validate checks every entry names a known stream.
func (c *Catalog) Validate(known []string) error {
	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}
	for i := range c.Streams {
		if !knownSet[c.Streams[i].TapStreamID] {
			return fmt.Errorf("%w: %s", ErrUnknownStream, c.Streams[i].TapStreamID)
		}
	}
	return nil
}
