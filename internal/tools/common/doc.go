// Package common provides shared helpers for MCP tool handlers, such as
// account resolution and instrumentation wrappers.
package common
