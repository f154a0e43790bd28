package ads_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ptmyrd/google-ads-mcp-server/internal/ads"
	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
	"github.com/ptmyrd/google-ads-mcp-server/internal/instrumentation"
	"github.com/ptmyrd/google-ads-mcp-server/internal/server"
	"github.com/ptmyrd/google-ads-mcp-server/internal/tools/common"
)

// getAdsClient retrieves or creates an Ads client for the specified account.
// An optional login customer ID overrides the configured manager context for
// this call only.
func getAdsClient(account, loginCustomerID string, sc *server.ServerContext) (*ads.Client, error) {
	client := sc.AdsClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
	}
	if loginCustomerID != "" {
		return client.WithLoginCustomerID(loginCustomerID)
	}
	return client, nil
}

// RegisterAdsTools registers all Google Ads tools with the MCP server
func RegisterAdsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listAccountsTool := mcp.NewTool("list_accounts",
		mcp.WithDescription("List all Google Ads accounts accessible to the authenticated user, including sub-accounts under manager (MCC) accounts"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("login_customer_id",
			mcp.Description("Manager account ID to use as login-customer-id for this call"),
		),
	)

	s.AddTool(listAccountsTool, common.InstrumentedToolHandlerWithOperation(
		"list_accounts", instrumentation.OperationListAccessibleCustomers, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	runGAQLTool := mcp.NewTool("run_gaql",
		mcp.WithDescription("Run a GAQL (Google Ads Query Language) query against a customer account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("customer_id",
			mcp.Required(),
			mcp.Description("The Google Ads customer ID to query (with or without dashes)"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The GAQL query to run (e.g., 'SELECT campaign.id, campaign.name FROM campaign')"),
		),
		mcp.WithString("login_customer_id",
			mcp.Description("Manager account ID to use as login-customer-id for this call"),
		),
		mcp.WithNumber("page_size",
			mcp.Description(fmt.Sprintf("Results per page (default: %d)", ads.DefaultSearchPageSize)),
		),
		mcp.WithNumber("max_pages",
			mcp.Description(fmt.Sprintf("Maximum number of pages to fetch (default: %d)", ads.DefaultSearchMaxPages)),
		),
	)

	s.AddTool(runGAQLTool, common.InstrumentedToolHandlerWithOperation(
		"run_gaql", instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRunGAQL(ctx, request, sc)
		}))

	keywordPlannerTool := mcp.NewTool("run_keyword_planner",
		mcp.WithDescription("Generate keyword ideas with search volume and competition metrics from the Google Ads Keyword Planner"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("customer_id",
			mcp.Required(),
			mcp.Description("The Google Ads customer ID to plan for (with or without dashes)"),
		),
		mcp.WithArray("keywords",
			mcp.Description("Seed keywords to generate ideas from"),
			mcp.WithStringItems(),
		),
		mcp.WithString("page_url",
			mcp.Description("A page URL to seed ideas from, instead of or in addition to keywords"),
		),
		mcp.WithString("language_id",
			mcp.Description("Language constant criterion ID (default: '1000' for English)"),
		),
		mcp.WithArray("geo_target_constants",
			mcp.Description("Geo target constant criterion IDs (default: ['2840'] for United States)"),
			mcp.WithStringItems(),
		),
		mcp.WithString("keyword_plan_network",
			mcp.Description("Network to plan for: GOOGLE_SEARCH or GOOGLE_SEARCH_AND_PARTNERS (default)"),
		),
		mcp.WithBoolean("include_adult",
			mcp.Description("Include adult keywords (default: false)"),
		),
		mcp.WithString("login_customer_id",
			mcp.Description("Manager account ID to use as login-customer-id for this call"),
		),
		mcp.WithNumber("page_size",
			mcp.Description(fmt.Sprintf("Maximum number of ideas to return (default: %d)", ads.DefaultKeywordPageSize)),
		),
	)

	s.AddTool(keywordPlannerTool, common.InstrumentedToolHandlerWithOperation(
		"run_keyword_planner", instrumentation.OperationGenerateKeywordIdeas, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRunKeywordPlanner(ctx, request, sc)
		}))

	gaqlReferenceTool := mcp.NewTool("gaql_reference",
		mcp.WithDescription("Get a quick reference for GAQL (Google Ads Query Language) syntax, common resources, and example queries"),
	)

	s.AddTool(gaqlReferenceTool, common.InstrumentedToolHandler("gaql_reference", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(gaqlReference), nil
		}))

	return nil
}

func handleListAccounts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	loginCustomerID, _ := args["login_customer_id"].(string)

	client, err := getAdsClient(account, loginCustomerID, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	accounts, err := client.ListAccounts(ctx, sc.Logger())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
	}

	result, _ := json.MarshalIndent(accounts, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleRunGAQL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	customerID, ok := args["customer_id"].(string)
	if !ok || customerID == "" {
		return mcp.NewToolResultError("customer_id is required"), nil
	}
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	loginCustomerID, _ := args["login_customer_id"].(string)

	pageSize := 0
	if v, ok := args["page_size"].(float64); ok {
		pageSize = int(v)
	}
	maxPages := 0
	if v, ok := args["max_pages"].(float64); ok {
		maxPages = int(v)
	}

	client, err := getAdsClient(account, loginCustomerID, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Search(ctx, customerID, query, pageSize, maxPages)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run GAQL query: %v", err)), nil
	}

	if m := sc.Metrics(); m != nil {
		m.RecordSearchPages(ctx, result.Pages)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func handleRunKeywordPlanner(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	customerID, ok := args["customer_id"].(string)
	if !ok || customerID == "" {
		return mcp.NewToolResultError("customer_id is required"), nil
	}
	loginCustomerID, _ := args["login_customer_id"].(string)

	query := ads.KeywordIdeaQuery{}
	query.Keywords = stringSlice(args["keywords"])
	query.PageURL, _ = args["page_url"].(string)
	if len(query.Keywords) == 0 && query.PageURL == "" {
		return mcp.NewToolResultError("keywords or page_url is required"), nil
	}

	query.LanguageID, _ = args["language_id"].(string)
	query.GeoTargetIDs = stringSlice(args["geo_target_constants"])
	query.Network, _ = args["keyword_plan_network"].(string)
	query.IncludeAdult, _ = args["include_adult"].(bool)
	if v, ok := args["page_size"].(float64); ok {
		query.PageSize = int(v)
	}

	client, err := getAdsClient(account, loginCustomerID, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ideas, err := client.GenerateKeywordIdeas(ctx, customerID, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate keyword ideas: %v", err)), nil
	}

	out, _ := json.MarshalIndent(map[string]any{
		"customer_id": customerID,
		"count":       len(ideas),
		"ideas":       ideas,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// stringSlice converts a JSON argument into a string slice. A single string
// is accepted as a one-element slice.
func stringSlice(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	default:
		return nil
	}
}
