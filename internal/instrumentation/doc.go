// Package instrumentation provides OpenTelemetry instrumentation for handoff.
//
// This package enables observability through:
//   - OpenTelemetry metrics for HTTP requests, Google API calls and workflow steps
//   - Distributed tracing for scans, provisioning, submissions and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support
//   - An audit log of every side effect (folders, permissions, records, emails)
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// Workflow Metrics:
//   - handoff_scans_total / handoff_scan_duration_seconds
//   - handoff_events_total: events by outcome (provisioned, skipped, failed)
//   - handoff_provisions_total: provisioning results by outcome
//   - handoff_submissions_total / handoff_submission_duration_seconds
//   - identity_store_operations_total / identity_store_operation_duration_seconds
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for:
//   - workflow steps (handoff.scan, handoff.provision, handoff.submission)
//   - MCP tool invocations (tool.<name>)
//   - Google API calls (google.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: handoff)
//   - AUDIT_LOGGING_ENABLED / AUDIT_LOGGING_INCLUDE_PII: audit log behavior
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordGoogleAPIOperation(ctx, "drive", "create", "success", time.Since(start))
//	metrics.RecordProvision(ctx, "created")
package instrumentation
