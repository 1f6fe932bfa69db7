package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 300 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 5

	// RetryDelay is the initial delay between retries; it doubles per
	// attempt.
	RetryDelay = time.Second

	// DefaultPageSize is the page size for cursor-paginated listings.
	DefaultPageSize = 100

	userAgent = "zensync"
)

// retryableStatus lists upstream statuses worth retrying.
var retryableStatus = map[int]bool{
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
	520:                           true, // origin error from the CDN
}

// Client wraps HTTP access to the Zendesk Support API with
// authentication, rate limiting, retries and pagination.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	auth        driven.Authenticator
	rateLimiter *RateLimiter
	marketplace domain.MarketplaceSettings
}

// NewClient creates a client for the account in settings.
func NewClient(settings domain.Settings, auth driven.Authenticator) *Client {
	timeout := settings.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     settings.BaseURL(),
		auth:        auth,
		rateLimiter: NewRateLimiter(),
		marketplace: settings.Marketplace,
	}
}

// NewClientWithBaseURL creates a client against an explicit API root.
// Useful for testing against a local server.
func NewClientWithBaseURL(baseURL string, auth driven.Authenticator) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		auth:        auth,
		rateLimiter: NewRateLimiter(),
	}
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// url joins a path and query onto the API root.
func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get performs a GET with rate limiting, authentication and retries,
// decoding the JSON response body into v.
func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; {
		if attempt > 0 {
			delay := RetryDelay << (attempt - 1)
			logger.Debug("Retrying %s in %s (attempt %d/%d)", rawURL, delay, attempt, MaxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		done, err := c.getOnce(ctx, rawURL, v)
		if done {
			return err
		}
		lastErr = err

		// The limiter has already waited out Retry-After for a rate
		// limited attempt, so it repeats without spending a retry or
		// backing off a second time.
		if IsRateLimited(err) {
			continue
		}
		attempt++
	}

	return fmt.Errorf("request failed after %d retries: %w", MaxRetries, lastErr)
}

// getOnce performs a single request attempt. The boolean is true when
// the result is final (success or a non-retryable error).
func (c *Client) getOnce(ctx context.Context, rawURL string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return true, fmt.Errorf("create request: %w", err)
	}

	authz, err := c.auth.Authorization(ctx)
	if err != nil {
		return true, fmt.Errorf("authorise request: %w", err)
	}
	req.Header.Set("Authorization", authz)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	c.applyMarketplaceHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		return false, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	c.recordRequestMetric(req.URL.Path, resp.StatusCode, time.Since(start))

	if rlErr := c.rateLimiter.CheckRateLimit(resp); rlErr != nil {
		logger.Warn("Rate limited, waiting until %s", c.rateLimiter.ResetTime().Format(time.RFC3339))
		if err := c.rateLimiter.WaitForReset(ctx); err != nil {
			return true, err
		}
		return false, rlErr
	}

	if retryableStatus[resp.StatusCode] {
		return false, c.errorFromResponse(resp)
	}

	if resp.StatusCode != http.StatusOK {
		return true, c.errorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return true, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

// applyMarketplaceHeaders forwards app listing identification.
func (c *Client) applyMarketplaceHeaders(req *http.Request) {
	if c.marketplace.Name != "" {
		req.Header.Set(HeaderMarketplaceName, c.marketplace.Name)
	}
	if c.marketplace.OrganizationID != "" {
		req.Header.Set(HeaderMarketplaceOrganizationID, c.marketplace.OrganizationID)
	}
	if c.marketplace.AppID != "" {
		req.Header.Set(HeaderMarketplaceAppID, c.marketplace.AppID)
	}
}

// recordRequestMetric logs a timer metric for the request.
func (c *Client) recordRequestMetric(path string, status int, elapsed time.Duration) {
	logger.Metric("timer", "http_request_duration", elapsed.Seconds(), map[string]any{
		"endpoint": path,
		"status":   status,
	})
}

// errorFromResponse converts a non-200 response into an error type.
func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := parseErrorMessage(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		URL:        resp.Request.URL.String(),
	}
}

// parseErrorMessage extracts a human-readable message from an API
// error body. The API uses a few shapes: {"error": "..."},
// {"error": {"title": ..., "message": ...}} and {"description": "..."}.
func parseErrorMessage(body []byte) string {
	var withDescription struct {
		Error       json.RawMessage `json:"error"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(body, &withDescription); err != nil {
		return strings.TrimSpace(string(body))
	}

	var parts []string
	if len(withDescription.Error) > 0 {
		var errString string
		if err := json.Unmarshal(withDescription.Error, &errString); err == nil {
			parts = append(parts, errString)
		} else {
			var errObject struct {
				Title   string `json:"title"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(withDescription.Error, &errObject); err == nil {
				if errObject.Title != "" {
					parts = append(parts, errObject.Title)
				}
				if errObject.Message != "" {
					parts = append(parts, errObject.Message)
				}
			}
		}
	}
	if withDescription.Description != "" {
		parts = append(parts, withDescription.Description)
	}
	return strings.Join(parts, ": ")
}

// unmarshalField decodes one named field out of a raw JSON object.
// Missing fields are left untouched.
func unmarshalField(payload map[string]json.RawMessage, key string, v any) error {
	raw, ok := payload[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// eachExportPage walks an incremental export from start until the
// end-of-stream marker, calling fn per page.
func (c *Client) eachExportPage(
	ctx context.Context, path, recordsKey string, start time.Time, fn func(*ExportPage) error,
) error {
	query := url.Values{}
	query.Set("start_time", strconv.FormatInt(start.Unix(), 10))
	next := c.url(path, query)

	for next != "" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var payload map[string]json.RawMessage
		if err := c.get(ctx, next, &payload); err != nil {
			return err
		}

		page := &ExportPage{}
		if err := unmarshalField(payload, recordsKey, &page.Records); err != nil {
			return err
		}
		if err := unmarshalField(payload, "end_time", &page.EndTime); err != nil {
			return err
		}
		if err := unmarshalField(payload, "end_of_stream", &page.EndOfStream); err != nil {
			return err
		}
		if err := unmarshalField(payload, "count", &page.Count); err != nil {
			return err
		}
		if err := unmarshalField(payload, "next_page", &page.NextPage); err != nil {
			return err
		}

		if err := fn(page); err != nil {
			return err
		}

		if page.EndOfStream {
			return nil
		}
		next = page.NextPage
	}

	return ErrExportInterrupted
}

// EachTicketExportPage walks the incremental ticket export from start.
func (c *Client) EachTicketExportPage(ctx context.Context, start time.Time, fn func(*ExportPage) error) error {
	return c.eachExportPage(ctx, "/incremental/tickets.json", "tickets", start, fn)
}

// EachOrganizationExportPage walks the incremental organization export
// from start.
func (c *Client) EachOrganizationExportPage(ctx context.Context, start time.Time, fn func(*ExportPage) error) error {
	return c.eachExportPage(ctx, "/incremental/organizations.json", "organizations", start, fn)
}

// eachListPage walks a paginated listing, calling fn per page of
// records. Cursor pagination (meta/links) is preferred; offset-style
// next_page links are followed when the endpoint still uses them.
func (c *Client) eachListPage(
	ctx context.Context, path, recordsKey string, query url.Values, fn func([]map[string]any) error,
) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("page[size]", strconv.Itoa(DefaultPageSize))
	next := c.url(path, query)

	for next != "" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var payload map[string]json.RawMessage
		if err := c.get(ctx, next, &payload); err != nil {
			return err
		}

		var records []map[string]any
		if err := unmarshalField(payload, recordsKey, &records); err != nil {
			return err
		}
		if err := fn(records); err != nil {
			return err
		}

		next = ""
		var meta struct {
			HasMore bool `json:"has_more"`
		}
		if err := unmarshalField(payload, "meta", &meta); err != nil {
			return err
		}
		if meta.HasMore {
			var links struct {
				Next string `json:"next"`
			}
			if err := unmarshalField(payload, "links", &links); err != nil {
				return err
			}
			next = links.Next
			continue
		}
		if _, ok := payload["meta"]; !ok {
			var nextPage string
			if err := unmarshalField(payload, "next_page", &nextPage); err != nil {
				return err
			}
			next = nextPage
		}
	}

	return nil
}

// Groups walks all groups.
func (c *Client) Groups(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/groups.json", "groups", nil, fn)
}

// GroupMemberships walks all group memberships.
func (c *Client) GroupMemberships(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/group_memberships.json", "group_memberships", nil, fn)
}

// Macros walks all macros.
func (c *Client) Macros(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/macros.json", "macros", nil, fn)
}

// TicketFields walks all ticket fields.
func (c *Client) TicketFields(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/ticket_fields.json", "ticket_fields", nil, fn)
}

// TicketForms walks all ticket forms.
func (c *Client) TicketForms(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/ticket_forms.json", "ticket_forms", nil, fn)
}

// Tags walks all tags.
func (c *Client) Tags(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/tags.json", "tags", nil, fn)
}

// SLAPolicies walks all SLA policies.
func (c *Client) SLAPolicies(ctx context.Context, fn func([]map[string]any) error) error {
	return c.eachListPage(ctx, "/slas/policies.json", "sla_policies", nil, fn)
}

// UserFields returns all custom user field definitions.
func (c *Client) UserFields(ctx context.Context) ([]map[string]any, error) {
	return c.collect(ctx, "/user_fields.json", "user_fields")
}

// OrganizationFields returns all custom organization field definitions.
func (c *Client) OrganizationFields(ctx context.Context) ([]map[string]any, error) {
	return c.collect(ctx, "/organization_fields.json", "organization_fields")
}

// collect accumulates every page of a listing into one slice.
func (c *Client) collect(ctx context.Context, path, recordsKey string) ([]map[string]any, error) {
	var all []map[string]any
	err := c.eachListPage(ctx, path, recordsKey, nil, func(records []map[string]any) error {
		all = append(all, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// TicketAudits returns all audits for a ticket.
func (c *Client) TicketAudits(ctx context.Context, ticketID int64) ([]map[string]any, error) {
	path := fmt.Sprintf("/tickets/%d/audits.json", ticketID)
	return c.collect(ctx, path, "audits")
}

// TicketComments returns all comments for a ticket.
func (c *Client) TicketComments(ctx context.Context, ticketID int64) ([]map[string]any, error) {
	path := fmt.Sprintf("/tickets/%d/comments.json", ticketID)
	return c.collect(ctx, path, "comments")
}

// TicketMetric returns the metric set for a ticket. Deleted and
// archived tickets have none; the API answers 404 and the error
// satisfies IsNotFound.
func (c *Client) TicketMetric(ctx context.Context, ticketID int64) (map[string]any, error) {
	var payload map[string]json.RawMessage
	if err := c.get(ctx, c.url(fmt.Sprintf("/tickets/%d/metrics.json", ticketID), nil), &payload); err != nil {
		return nil, err
	}
	var metric map[string]any
	if err := unmarshalField(payload, "ticket_metric", &metric); err != nil {
		return nil, err
	}
	return metric, nil
}

// searchTimeFormat is the timestamp form the search API accepts.
const searchTimeFormat = "2006-01-02T15:04:05Z"

// userSearchQuery builds the search expression for users updated
// inside the window.
func userSearchQuery(start, end time.Time) string {
	return fmt.Sprintf("type:user updated>%s updated<%s",
		start.UTC().Format(searchTimeFormat), end.UTC().Format(searchTimeFormat))
}

// SearchUsersCount returns the number of users updated inside the
// window. The search API caps retrievable results at 1000, so callers
// shrink the window until the count fits.
func (c *Client) SearchUsersCount(ctx context.Context, start, end time.Time) (int, error) {
	query := url.Values{}
	query.Set("query", userSearchQuery(start, end))
	query.Set("per_page", "1")

	var payload struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, c.url("/search.json", query), &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// EachSearchUserPage walks users updated inside the window.
func (c *Client) EachSearchUserPage(ctx context.Context, start, end time.Time, fn func([]map[string]any) error) error {
	query := url.Values{}
	query.Set("query", userSearchQuery(start, end))
	query.Set("per_page", strconv.Itoa(DefaultPageSize))
	next := c.url("/search.json", query)

	for next != "" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var payload struct {
			Results  []map[string]any `json:"results"`
			NextPage string           `json:"next_page"`
		}
		if err := c.get(ctx, next, &payload); err != nil {
			return err
		}
		if err := fn(payload.Results); err != nil {
			return err
		}
		next = payload.NextPage
	}

	return nil
}

// satisfactionQuery builds window parameters for satisfaction ratings.
func satisfactionQuery(start, end time.Time) url.Values {
	query := url.Values{}
	query.Set("start_time", strconv.FormatInt(start.Unix(), 10))
	query.Set("end_time", strconv.FormatInt(end.Unix(), 10))
	return query
}

// SatisfactionRatingsCount returns the number of ratings inside the
// epoch window.
func (c *Client) SatisfactionRatingsCount(ctx context.Context, start, end time.Time) (int, error) {
	query := satisfactionQuery(start, end)
	query.Set("per_page", "1")

	var payload struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, c.url("/satisfaction_ratings.json", query), &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// EachSatisfactionRatingPage walks ratings inside the epoch window.
func (c *Client) EachSatisfactionRatingPage(
	ctx context.Context, start, end time.Time, fn func([]map[string]any) error,
) error {
	return c.eachListPage(ctx, "/satisfaction_ratings.json", "satisfaction_ratings", satisfactionQuery(start, end), fn)
}

// CurrentUser returns the authenticated account. Used to validate
// credentials.
func (c *Client) CurrentUser(ctx context.Context) (*domain.Account, error) {
	var payload struct {
		User struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := c.get(ctx, c.url("/users/me.json", nil), &payload); err != nil {
		return nil, err
	}
	if payload.User.ID == 0 {
		return nil, fmt.Errorf("%w: token rejected", domain.ErrAuthInvalid)
	}
	return &domain.Account{
		ID:    payload.User.ID,
		Name:  payload.User.Name,
		Email: payload.User.Email,
		Role:  payload.User.Role,
	}, nil
}
