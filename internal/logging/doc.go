// Package logging provides slog helpers used across the server: shared
// attribute-key constants, safe error attributes, and PII-aware helpers
// for logging user identities and OAuth tokens.
package logging
