// Package cmd implements the command-line interface for google-ads-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Ads tools for AI assistants
//   - login: Run the installed-app OAuth flow and cache a token locally
//   - accounts: List the Google Ads accounts accessible to the cached token
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
