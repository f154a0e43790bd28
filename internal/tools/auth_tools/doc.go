// Package auth_tools provides MCP tools for managing Google Ads OAuth
// tokens: starting the consent flow, saving authorization codes, and
// inspecting or refreshing the cached token.
package auth_tools
