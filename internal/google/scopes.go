package google

// ScopeAdWords is the OAuth scope for the Google Ads API.
const ScopeAdWords = "https://www.googleapis.com/auth/adwords"

// DefaultOAuthScopes are the Google OAuth scopes requested by all token
// acquisition strategies. The OpenID Connect scopes are needed by the HTTP
// transport's OAuth proxy to identify the authenticated user; the adwords
// scope is what every Ads REST call requires.
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	ScopeAdWords,
}
