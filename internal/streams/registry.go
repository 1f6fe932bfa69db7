package streams

import (
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Registry holds the built-in streams in catalog order.
type Registry struct {
	order   []string
	streams map[string]driven.Stream
}

var _ driven.StreamRegistry = (*Registry)(nil)

// NewRegistry builds every stream against the given client and settings.
func NewRegistry(client *zendesk.Client, settings domain.Settings) *Registry {
	all := []driven.Stream{
		NewTickets(client, settings),
		NewTicketAudits(client, settings),
		NewTicketComments(client, settings),
		NewTicketMetrics(client, settings),
		NewUsers(client, settings),
		NewOrganizations(client, settings),
		NewGroups(client, settings),
		NewGroupMemberships(client, settings),
		NewTicketFields(client, settings),
		NewTicketForms(client, settings),
		NewMacros(client, settings),
		NewSatisfactionRatings(client, settings),
		NewTags(client, settings),
		NewSLAPolicies(client, settings),
	}

	r := &Registry{streams: make(map[string]driven.Stream, len(all))}
	for _, s := range all {
		r.order = append(r.order, s.Name())
		r.streams[s.Name()] = s
	}
	return r
}

// Get returns the named stream.
func (r *Registry) Get(name string) (driven.Stream, error) {
	s, ok := r.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStream, name)
	}
	return s, nil
}

// List returns all streams in catalog order.
func (r *Registry) List() []driven.Stream {
	out := make([]driven.Stream, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.streams[name])
	}
	return out
}

// Names returns all stream names in catalog order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
