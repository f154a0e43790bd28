// Package oauth secures the streamable-http transport with Google OAuth.
//
// The server acts as an OAuth 2.1 protected resource (RFC 9728): MCP
// clients discover Google as the authorization server via the protected
// resource metadata endpoint, obtain a Google access token themselves, and
// present it as a Bearer token. The middleware validates each token against
// Google's userinfo endpoint, caches it keyed by the user's email, and
// makes both available to tool handlers through the request context.
package oauth
