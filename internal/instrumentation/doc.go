// Package instrumentation wires OpenTelemetry metrics and tracing for the
// Google Ads MCP server.
//
// Metrics cover four surfaces: HTTP requests (streamable-http transport),
// Ads API operations, OAuth token handling, and MCP tool invocations. The
// default exporter is Prometheus, served by the metrics HTTP server; OTLP
// and stdout exporters can be selected via METRICS_EXPORTER.
//
// Tracing is off by default (TRACING_EXPORTER=none) and supports otlp and
// stdout exporters with parent-based ratio sampling.
//
// User identifiers are high-cardinality and may be PII. Metrics only ever
// carry the email domain; full addresses appear in audit logs alone, and
// only when AUDIT_LOGGING_INCLUDE_PII is set.
package instrumentation
