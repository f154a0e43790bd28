package auth_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
	"github.com/ptmyrd/google-ads-mcp-server/internal/instrumentation"
	"github.com/ptmyrd/google-ads-mcp-server/internal/logging"
	"github.com/ptmyrd/google-ads-mcp-server/internal/server"
	"github.com/ptmyrd/google-ads-mcp-server/internal/tools/common"
)

// RegisterAuthTools registers all OAuth token management tools with the MCP server
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool("ads_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Ads access for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("ads_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("ads_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google Ads authentication for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth (or the poll ID when using the auth relay)"),
		),
	)

	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("ads_save_auth_code", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	tokenStatusTool := mcp.NewTool("ads_token_status",
		mcp.WithDescription("Report the status of the cached Google Ads OAuth token for an account, including expiry"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(tokenStatusTool, common.InstrumentedToolHandler("ads_token_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTokenStatus(ctx, request, sc)
		}))

	refreshTokenTool := mcp.NewTool("ads_refresh_token",
		mcp.WithDescription("Force a refresh of the Google Ads OAuth access token for an account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(refreshTokenTool, common.InstrumentedToolHandler("ads_refresh_token", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRefreshToken(ctx, request, sc)
		}))

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	// With the relay strategy the consent flow runs on the relay's domain;
	// the user finishes it there and the poll ID stands in for the code.
	if relay := google.RelayProvider(sc.TokenProvider()); relay != nil {
		authURL, pollID, err := relay.BeginAuth(ctx, account)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to start relay authorization: %v", err)), nil
		}

		result := fmt.Sprintf(`To authorize Google Ads access for account %q:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Call the ads_save_auth_code tool with authCode=%q and account=%q to wait for completion`,
			account, authURL, pollID, account)
		return mcp.NewToolResultText(result), nil
	}

	authURL, err := google.GetAuthURLForAccount(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build auth URL: %v", err)), nil
	}

	result := fmt.Sprintf(`To authorize Google Ads access for account %q:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google Ads
4. Copy the authorization code

5. Call the ads_save_auth_code tool with the code and account name to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	authCode, ok := args["authCode"].(string)
	if !ok || authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	var err error
	strategy := google.StrategyFile
	if relay := google.RelayProvider(sc.TokenProvider()); relay != nil {
		strategy = google.StrategyRelay
		_, err = relay.PollToken(ctx, account, authCode)
	} else {
		err = google.SaveAuthCodeForAccount(ctx, account, authCode)
	}

	if m := sc.Metrics(); m != nil {
		result := instrumentation.OAuthResultSuccess
		if err != nil {
			result = instrumentation.OAuthResultFailure
		}
		m.RecordOAuthAuth(ctx, strategy, result)
	}

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to complete authorization for account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account %q. Google Ads token saved. All Ads tools are now available for this account.", account)), nil
}

func handleTokenStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	provider := sc.TokenProvider()
	status := map[string]any{
		"account":   account,
		"has_token": provider.HasTokenForAccount(account),
	}

	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		status["valid"] = false
		status["error"] = err.Error()
	} else {
		status["valid"] = true
		status["access_token"] = logging.SanitizeToken(token.AccessToken)
		if !token.Expiry.IsZero() {
			remaining := time.Until(token.Expiry)
			status["expiry"] = token.Expiry.Format(time.RFC3339)
			status["remaining"] = remaining.Truncate(time.Second).String()
			status["expires_soon"] = remaining < google.TokenExpiryMargin
		}
	}

	out, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func handleRefreshToken(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	refresher, ok := sc.TokenProvider().(google.TokenRefresher)
	if !ok {
		return mcp.NewToolResultError("the active token strategy does not support forced refresh"), nil
	}

	token, err := refresher.RefreshToken(ctx, account)

	if m := sc.Metrics(); m != nil {
		result := instrumentation.OAuthResultSuccess
		if err != nil {
			result = instrumentation.OAuthResultFailure
		}
		m.RecordOAuthTokenRefresh(ctx, result)
	}

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to refresh token for account %s: %v", account, err)), nil
	}

	out, _ := json.MarshalIndent(map[string]any{
		"account":      account,
		"access_token": logging.SanitizeToken(token.AccessToken),
		"expiry":       token.Expiry.Format(time.RFC3339),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
