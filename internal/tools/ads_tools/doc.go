// Package ads_tools provides MCP tools for Google Ads: account listing,
// GAQL search, and keyword planning.
package ads_tools
