package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
)

// Compile-time interface checks.
var (
	_ driven.Emitter = (*Writer)(nil)
	_ driven.Emitter = (*Capture)(nil)
)

// Writer emits JSON-line messages on an io.Writer, one message per
// line. The CLI hands it stdout; everything else in the process logs to
// stderr so the message stream stays clean.
//
// Each message is flushed as soon as it is written. A state message
// sitting in a buffer when the process dies would roll the downstream
// consumer back further than necessary.
type Writer struct {
	mu  sync.Mutex
	out *bufio.Writer
}

// NewWriter creates a Writer emitting to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(out)}
}

// Schema writes a SCHEMA message for the catalog entry.
func (w *Writer) Schema(entry *domain.CatalogEntry) error {
	return w.write(newSchemaMessage(entry))
}

// Record writes a RECORD message.
func (w *Writer) Record(record domain.Record) error {
	return w.write(newRecordMessage(record))
}

// State writes a STATE message.
func (w *Writer) State(state *domain.State) error {
	return w.write(StateMessage{Type: TypeState, Value: state})
}

// write marshals one message and flushes it as a line.
func (w *Writer) write(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.out.WriteByte('\n'); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("flush message: %w", err)
	}
	return nil
}

// Capture is an in-memory emitter for tests. It records everything
// emitted, in order.
type Capture struct {
	mu       sync.Mutex
	schemas  []*domain.CatalogEntry
	records  []domain.Record
	states   []*domain.State
	sequence []string
}

// NewCapture creates an empty capture emitter.
func NewCapture() *Capture {
	return &Capture{}
}

// Schema records a schema emission.
func (c *Capture) Schema(entry *domain.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas = append(c.schemas, entry)
	c.sequence = append(c.sequence, TypeSchema+":"+entry.TapStreamID)
	return nil
}

// Record records a record emission.
func (c *Capture) Record(record domain.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	c.sequence = append(c.sequence, TypeRecord+":"+record.Stream)
	return nil
}

// State records a state emission. The state is cloned so later
// mutations by the caller do not rewrite history.
func (c *Capture) State(state *domain.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, state.Clone())
	c.sequence = append(c.sequence, TypeState)
	return nil
}

// Schemas returns the captured schema entries in emission order.
func (c *Capture) Schemas() []*domain.CatalogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.CatalogEntry(nil), c.schemas...)
}

// Records returns the captured records in emission order.
func (c *Capture) Records() []domain.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Record(nil), c.records...)
}

// RecordsFor returns the captured records for one stream.
func (c *Capture) RecordsFor(stream string) []domain.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	var records []domain.Record
	for _, record := range c.records {
		if record.Stream == stream {
			records = append(records, record)
		}
	}
	return records
}

// States returns the captured states in emission order.
func (c *Capture) States() []*domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.State(nil), c.states...)
}

// LastState returns the most recently captured state, or nil.
func (c *Capture) LastState() *domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.states) == 0 {
		return nil
	}
	return c.states[len(c.states)-1]
}

// Sequence returns the emission order as "TYPE" or "TYPE:stream" tags.
func (c *Capture) Sequence() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sequence...)
}
