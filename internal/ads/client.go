package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
)

// GAQL search defaults. A query runs until the API stops returning a next
// page token or maxPages pages have been fetched, whichever comes first.
const (
	DefaultSearchPageSize = 1000
	DefaultSearchMaxPages = 10
)

// Keyword planner defaults: English, United States, search plus partners.
const (
	DefaultKeywordLanguageID  = "1000"
	DefaultKeywordGeoTargetID = "2840"
	DefaultKeywordNetwork     = "GOOGLE_SEARCH_AND_PARTNERS"
	DefaultKeywordPageSize    = 25
)

// Client issues authenticated Google Ads REST calls for one account.
type Client struct {
	config     *Config
	provider   google.TokenProvider
	account    string
	httpClient *http.Client
}

// NewClientForAccount creates an Ads client that authenticates with the
// token provider's credentials for the given account.
func NewClientForAccount(cfg *Config, provider google.TokenProvider, account string) *Client {
	return &Client{
		config:     cfg,
		provider:   provider,
		account:    account,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// WithLoginCustomerID returns a copy of the client that sends the given
// login-customer-id header, for calls that need a different manager context
// than the configured default.
func (c *Client) WithLoginCustomerID(id string) (*Client, error) {
	formatted, err := FormatCustomerID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid login customer ID: %w", err)
	}

	cfg := *c.config
	cfg.LoginCustomerID = formatted
	clone := *c
	clone.config = &cfg
	return &clone, nil
}

// do issues one REST call with the Ads API headers set. A nil body sends a
// GET, anything else a POST. Responses with status >= 400 are surfaced as
// *googleapi.Error so callers can inspect the HTTP code and API details.
func (c *Client) do(ctx context.Context, path string, body, out any) error {
	token, err := c.provider.GetTokenForAccount(ctx, c.account)
	if err != nil {
		return fmt.Errorf("no valid Google Ads token for account %s: %w", c.account, err)
	}

	method := http.MethodGet
	var reader *bytes.Reader
	if body != nil {
		method = http.MethodPost
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("developer-token", c.config.DeveloperToken)
	if c.config.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", c.config.LoginCustomerID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Google Ads API request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return fmt.Errorf("Google Ads API error: %w", err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Google Ads API response: %w", err)
	}
	return nil
}

// ListAccessibleCustomers returns the customer IDs directly accessible to
// the authenticated user, in canonical ten-digit form.
func (c *Client) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	var resp listAccessibleCustomersResponse
	if err := c.do(ctx, "customers:listAccessibleCustomers", nil, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.ResourceNames))
	for _, name := range resp.ResourceNames {
		// Resource names look like "customers/1234567890".
		id, err := FormatCustomerID(strings.TrimPrefix(name, "customers/"))
		if err != nil {
			return nil, fmt.Errorf("unexpected customer resource name %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Search runs one page of a GAQL query against a customer.
func (c *Client) search(ctx context.Context, customerID, query string, pageSize int, pageToken string) (*searchResponse, error) {
	req := searchRequest{
		Query:     query,
		PageSize:  pageSize,
		PageToken: pageToken,
	}

	var resp searchResponse
	path := fmt.Sprintf("customers/%s/googleAds:search", customerID)
	if err := c.do(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search runs a GAQL query, following page tokens until the API reports no
// more pages or maxPages pages have been fetched. Zero pageSize and
// maxPages select the defaults.
func (c *Client) Search(ctx context.Context, customerID, query string, pageSize, maxPages int) (*GAQLResult, error) {
	id, err := FormatCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultSearchPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultSearchMaxPages
	}

	result := &GAQLResult{
		CustomerID: id,
		Results:    []map[string]any{},
	}

	pageToken := ""
	for result.Pages < maxPages {
		page, err := c.search(ctx, id, query, pageSize, pageToken)
		if err != nil {
			return nil, err
		}

		result.Results = append(result.Results, page.Results...)
		result.Pages++

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	result.ResultCount = len(result.Results)
	return result, nil
}

// KeywordIdeaQuery describes one keyword planner request. Keywords, a page
// URL, or both seed the ideas; everything else falls back to the defaults
// when left zero.
type KeywordIdeaQuery struct {
	Keywords     []string
	PageURL      string
	LanguageID   string   // language constant criterion ID
	GeoTargetIDs []string // geo target constant criterion IDs
	Network      string
	IncludeAdult bool
	PageSize     int
}

// GenerateKeywordIdeas calls the keyword planner and reshapes the response
// to the fields that matter for planning.
func (c *Client) GenerateKeywordIdeas(ctx context.Context, customerID string, query KeywordIdeaQuery) ([]KeywordIdea, error) {
	id, err := FormatCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	if len(query.Keywords) == 0 && query.PageURL == "" {
		return nil, fmt.Errorf("at least one seed keyword or a page URL is required")
	}
	if query.LanguageID == "" {
		query.LanguageID = DefaultKeywordLanguageID
	}
	if len(query.GeoTargetIDs) == 0 {
		query.GeoTargetIDs = []string{DefaultKeywordGeoTargetID}
	}
	if query.Network == "" {
		query.Network = DefaultKeywordNetwork
	}
	if query.PageSize <= 0 {
		query.PageSize = DefaultKeywordPageSize
	}

	geos := make([]string, len(query.GeoTargetIDs))
	for i, g := range query.GeoTargetIDs {
		geos[i] = "geoTargetConstants/" + g
	}

	req := generateKeywordIdeasRequest{
		Language:             "languageConstants/" + query.LanguageID,
		GeoTargetConstants:   geos,
		KeywordPlanNetwork:   query.Network,
		PageSize:             query.PageSize,
		IncludeAdultKeywords: query.IncludeAdult,
	}
	switch {
	case len(query.Keywords) > 0 && query.PageURL != "":
		req.KeywordAndURLSeed = &keywordAndURLSeed{URL: query.PageURL, Keywords: query.Keywords}
	case len(query.Keywords) > 0:
		req.KeywordSeed = &keywordSeed{Keywords: query.Keywords}
	default:
		req.URLSeed = &urlSeed{URL: query.PageURL}
	}

	var resp generateKeywordIdeasResponse
	path := fmt.Sprintf("customers/%s:generateKeywordIdeas", id)
	if err := c.do(ctx, path, req, &resp); err != nil {
		return nil, err
	}

	ideas := make([]KeywordIdea, 0, len(resp.Results))
	for _, r := range resp.Results {
		idea := KeywordIdea{Text: r.Text}
		if m := r.KeywordIdeaMetrics; m != nil {
			idea.AvgMonthlySearches = m.AvgMonthlySearches
			idea.Competition = m.Competition
			idea.LowTopOfPageBidMicros = m.LowTopOfPageBidMicros
			idea.HighTopOfPageBidMicros = m.HighTopOfPageBidMicros
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}
