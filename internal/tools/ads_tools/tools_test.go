package ads_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ptmyrd/google-ads-mcp-server/internal/ads"
	"github.com/ptmyrd/google-ads-mcp-server/internal/server"
)

type noTokenProvider struct{}

func (noTokenProvider) GetTokenForAccount(context.Context, string) (*oauth2.Token, error) {
	return nil, errors.New("no token")
}

func (noTokenProvider) HasTokenForAccount(string) bool { return false }

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

// newTestContext returns a server context whose default account client
// talks to the given fake Ads API.
func newTestContext(t *testing.T, handler http.Handler) *server.ServerContext {
	t.Helper()

	sc, err := server.NewServerContext(context.Background(), &ads.Config{DeveloperToken: "dev"}, noTokenProvider{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)

		cfg := &ads.Config{APIBase: srv.URL, APIVersion: "v22", DeveloperToken: "dev"}
		sc.SetAdsClientForAccount("default", ads.NewClientForAccount(cfg, stubTokenProvider{}, "default"))
	}
	return sc
}

type stubTokenProvider struct{}

func (stubTokenProvider) GetTokenForAccount(context.Context, string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer"}, nil
}

func (stubTokenProvider) HasTokenForAccount(string) bool { return true }

func TestHandleRunGAQL_MissingArgs(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleRunGAQL(context.Background(), newRequest(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "customer_id is required")

	result, err = handleRunGAQL(context.Background(), newRequest(map[string]any{
		"customer_id": "1234567890",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "query is required")
}

func TestHandleRunGAQL_NoToken(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleRunGAQL(context.Background(), newRequest(map[string]any{
		"customer_id": "1234567890",
		"query":       "SELECT campaign.id FROM campaign",
		"account":     "missing",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "ads_get_auth_url")
}

func TestHandleRunGAQL_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22/customers/1234567890/googleAds:search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"campaign":{"id":"1"}}]}`)
	})
	sc := newTestContext(t, mux)

	result, err := handleRunGAQL(context.Background(), newRequest(map[string]any{
		"customer_id": "123-456-7890",
		"query":       "SELECT campaign.id FROM campaign",
		"page_size":   float64(10),
		"max_pages":   float64(1),
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out ads.GAQLResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "1234567890", out.CustomerID)
	assert.Equal(t, 1, out.ResultCount)
	assert.Equal(t, 1, out.Pages)
}

func TestHandleRunKeywordPlanner_Validation(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleRunKeywordPlanner(context.Background(), newRequest(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "customer_id is required")

	result, err = handleRunKeywordPlanner(context.Background(), newRequest(map[string]any{
		"customer_id": "1234567890",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "keywords or page_url is required")
}

func TestHandleRunKeywordPlanner_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22/customers/1234567890:generateKeywordIdeas", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"text":"running shoes","keywordIdeaMetrics":{
			"avgMonthlySearches":"450000","competition":"HIGH",
			"lowTopOfPageBidMicros":"310000","highTopOfPageBidMicros":"1200000"}}]}`)
	})
	sc := newTestContext(t, mux)

	result, err := handleRunKeywordPlanner(context.Background(), newRequest(map[string]any{
		"customer_id": "1234567890",
		"keywords":    []any{"running shoes"},
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		CustomerID string            `json:"customer_id"`
		Count      int               `json:"count"`
		Ideas      []ads.KeywordIdea `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Ideas, 1)
	assert.Equal(t, "running shoes", out.Ideas[0].Text)
	assert.Equal(t, int64(450000), out.Ideas[0].AvgMonthlySearches)
}

func TestHandleListAccounts_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22/customers:listAccessibleCustomers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resourceNames":["customers/1234567890"]}`)
	})
	mux.HandleFunc("/v22/customers/1234567890/googleAds:search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"customer":{"id":"1234567890","descriptiveName":"Test","currencyCode":"USD","timeZone":"America/New_York","manager":false}}]}`)
	})
	sc := newTestContext(t, mux)

	result, err := handleListAccounts(context.Background(), newRequest(map[string]any{}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var accounts []ads.Account
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "1234567890", accounts[0].CustomerID)
	assert.Equal(t, "Test", accounts[0].DescriptiveName)
}

func TestStringSlice(t *testing.T) {
	assert.Nil(t, stringSlice(nil))
	assert.Nil(t, stringSlice(""))
	assert.Equal(t, []string{"one"}, stringSlice("one"))
	assert.Equal(t, []string{"a", "b"}, stringSlice([]any{"a", "b"}))
	assert.Equal(t, []string{"a"}, stringSlice([]any{"a", 7, ""}))
	assert.Equal(t, []string{"x"}, stringSlice([]string{"x"}))
	assert.Nil(t, stringSlice(42))
}

func TestGAQLReferenceContent(t *testing.T) {
	assert.Contains(t, gaqlReference, "SELECT")
	assert.Contains(t, gaqlReference, "FROM campaign")
	assert.Contains(t, gaqlReference, "customer_client")
}
