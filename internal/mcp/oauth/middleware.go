package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// contextKey is the type for context keys
type contextKey string

const (
	// userContextKey is the key for storing the user info in the request context
	userContextKey contextKey = "oauth_user"

	// tokenContextKey is the key for storing the Google token in the request context
	tokenContextKey contextKey = "google_token"
)

// ValidateGoogleToken is middleware that validates Google OAuth Bearer
// tokens against Google's userinfo endpoint. On success the user info and
// token are stored in the request context and the token is cached keyed by
// the user's email.
func (h *Handler) ValidateGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="%s"`,
				h.config.Resource, protectedResourceWellKnown,
			))
			h.writeError(w, "missing_token", "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="%s", error="invalid_token", error_description="Invalid Authorization header format"`,
				h.config.Resource, protectedResourceWellKnown,
			))
			h.writeError(w, "invalid_token", "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		token := &oauth2.Token{
			AccessToken: parts[1],
			TokenType:   "Bearer",
		}

		userInfo, err := h.getUserInfoFromGoogle(r.Context(), token)
		if err != nil {
			errorDesc := actionableErrorMessage(err)
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="%s", error="invalid_token", error_description="%s"`,
				h.config.Resource, protectedResourceWellKnown, errorDesc,
			))
			h.writeError(w, "invalid_token", errorDesc, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, userInfo)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		// Cache the token so Ads API clients can use it for this user.
		if err := h.store.SaveGoogleToken(ctx, userInfo.Email, token); err != nil {
			h.logger.Warn("failed to cache Google token", "user", userInfo.Email, "error", err)
		}
		if err := h.store.SaveUserInfo(userInfo.Email, userInfo); err != nil {
			h.logger.Warn("failed to cache user info", "user", userInfo.Email, "error", err)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextWithUserInfo returns a context carrying the given Google user
// info, as the OAuth middleware would set it.
func ContextWithUserInfo(ctx context.Context, userInfo *GoogleUserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// GetUserFromContext retrieves the Google user info from the request context.
func GetUserFromContext(ctx context.Context) (*GoogleUserInfo, bool) {
	userInfo, ok := ctx.Value(userContextKey).(*GoogleUserInfo)
	return userInfo, ok
}

// GetGoogleTokenFromContext retrieves the Google token from the request context.
func GetGoogleTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return token, ok
}

// actionableErrorMessage converts technical validation errors into guidance
// the MCP client can surface to the user.
func actionableErrorMessage(err error) string {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "Unauthorized"):
		return "Google token is invalid or expired. Please re-authenticate through your MCP client to continue."
	case strings.Contains(errStr, "403") || strings.Contains(errStr, "Forbidden"):
		return "Access denied by Google. Please ensure your token has the required scopes and re-authenticate through your MCP client."
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit"):
		return "Google API rate limit exceeded. Please wait a moment and try again."
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "timeout") || strings.Contains(errStr, "dial"):
		return "Unable to verify token with Google due to network issues. Please try again in a moment."
	default:
		return fmt.Sprintf("Token validation failed: %v. Please re-authenticate through your MCP client.", err)
	}
}
