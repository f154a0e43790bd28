// Package ads is a thin REST client for the Google Ads API. It covers the
// three surfaces the MCP tools need: listAccessibleCustomers, GAQL search
// with pagination, and keyword idea generation. Authentication is delegated
// to a google.TokenProvider so the same client works under every token
// strategy.
package ads
