package zendesk

// ExportPage is one page of an incremental export.
type ExportPage struct {
	// Records are the decoded entity payloads.
	Records []map[string]any

	// EndTime is the export cursor for the next request, epoch seconds.
	EndTime int64

	// EndOfStream is true when the export has caught up.
	EndOfStream bool

	// Count is the number of records in this page.
	Count int

	// NextPage is the URL of the next page, empty at end of stream.
	NextPage string
}

// Marketplace header names forwarded on every request when configured.
const (
	HeaderMarketplaceName           = "X-Zendesk-Marketplace-Name"
	HeaderMarketplaceOrganizationID = "X-Zendesk-Marketplace-Organization-Id"
	HeaderMarketplaceAppID          = "X-Zendesk-Marketplace-App-Id"
)
