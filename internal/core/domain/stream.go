package domain

// ReplicationMethod defines how a stream extracts records.
type ReplicationMethod string

// Available replication methods.
const (
	// ReplicationIncremental extracts only records changed since the
	// stream's bookmark.
	ReplicationIncremental ReplicationMethod = "INCREMENTAL"

	// ReplicationFullTable extracts every record on every run.
	ReplicationFullTable ReplicationMethod = "FULL_TABLE"
)

// IsValid returns true if the replication method is recognised.
func (m ReplicationMethod) IsValid() bool {
	switch m {
	case ReplicationIncremental, ReplicationFullTable:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ReplicationMethod) String() string {
	return string(m)
}

// Stream names for the built-in Zendesk streams.
const (
	StreamTickets             = "tickets"
	StreamTicketAudits        = "ticket_audits"
	StreamTicketComments      = "ticket_comments"
	StreamTicketMetrics       = "ticket_metrics"
	StreamUsers               = "users"
	StreamOrganizations       = "organizations"
	StreamGroups              = "groups"
	StreamGroupMemberships    = "group_memberships"
	StreamTicketFields        = "ticket_fields"
	StreamTicketForms         = "ticket_forms"
	StreamMacros              = "macros"
	StreamSatisfactionRatings = "satisfaction_ratings"
	StreamTags                = "tags"
	StreamSLAPolicies         = "sla_policies"
)

// AllStreamNames returns the built-in stream names in catalog order.
func AllStreamNames() []string {
	return []string{
		StreamTickets,
		StreamTicketAudits,
		StreamTicketComments,
		StreamTicketMetrics,
		StreamUsers,
		StreamOrganizations,
		StreamGroups,
		StreamGroupMemberships,
		StreamTicketFields,
		StreamTicketForms,
		StreamMacros,
		StreamSatisfactionRatings,
		StreamTags,
		StreamSLAPolicies,
	}
}
