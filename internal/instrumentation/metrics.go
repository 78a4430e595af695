package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrOutcome   = "outcome"
	attrTool      = "tool"
	attrDomain    = "domain"
)

// Event outcomes recorded by RecordEvent.
const (
	EventOutcomeProvisioned = "provisioned"
	EventOutcomeSkipped     = "skipped"
	EventOutcomeFailed      = "failed"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// Handoff workflow metrics
	eventsTotal         metric.Int64Counter
	provisionsTotal     metric.Int64Counter
	submissionsTotal    metric.Int64Counter
	submissionDuration  metric.Float64Histogram
	scansTotal          metric.Int64Counter
	scanDuration        metric.Float64Histogram
	identityOpsTotal    metric.Int64Counter
	identityOpsDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	// Handoff Metrics
	m.eventsTotal, err = meter.Int64Counter(
		"handoff_events_total",
		metric.WithDescription("Calendar events processed by scans"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff_events_total counter: %w", err)
	}

	m.provisionsTotal, err = meter.Int64Counter(
		"handoff_provisions_total",
		metric.WithDescription("Folder provisioning results"),
		metric.WithUnit("{provision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff_provisions_total counter: %w", err)
	}

	m.submissionsTotal, err = meter.Int64Counter(
		"handoff_submissions_total",
		metric.WithDescription("Form submissions processed"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff_submissions_total counter: %w", err)
	}

	m.submissionDuration, err = meter.Float64Histogram(
		"handoff_submission_duration_seconds",
		metric.WithDescription("Submission processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff_submission_duration_seconds histogram: %w", err)
	}

	m.scansTotal, err = meter.Int64Counter(
		"handoff_scans_total",
		metric.WithDescription("Calendar scans run"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff_scans_total counter: %w", err)
	}

	m.scanDuration, err = meter.Float64Histogram(
		"handoff_scan_duration_seconds",
		metric.WithDescription("Calendar scan duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handoff_scan_duration_seconds histogram: %w", err)
	}

	m.identityOpsTotal, err = meter.Int64Counter(
		"identity_store_operations_total",
		metric.WithDescription("Identity store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity_store_operations_total counter: %w", err)
	}

	m.identityOpsDuration, err = meter.Float64Histogram(
		"identity_store_operation_duration_seconds",
		metric.WithDescription("Identity store operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity_store_operation_duration_seconds histogram: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (calendar, drive, docs, gmail)
//   - operation: Operation type (list, get, create, copy, export, send, etc.)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordEvent counts one calendar event handled by a scan.
// Outcome is one of the EventOutcome constants.
func (m *Metrics) RecordEvent(ctx context.Context, outcome string) {
	if m == nil || m.eventsTotal == nil {
		return
	}
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, boundedLabel(outcome, eventOutcomes))))
}

// RecordProvision counts one provisioning result (existing, created, recreated,
// repaired or failed).
func (m *Metrics) RecordProvision(ctx context.Context, outcome string) {
	if m == nil || m.provisionsTotal == nil {
		return
	}
	m.provisionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, boundedLabel(outcome, provisionOutcomes))))
}

// RecordSubmission records a processed submission. The respondent's domain is
// only attached when detailed labels are enabled.
func (m *Metrics) RecordSubmission(ctx context.Context, status, respondent string, duration time.Duration) {
	if m == nil || m.submissionsTotal == nil || m.submissionDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && respondent != "" {
		attrs = append(attrs, attribute.String(attrDomain, EmailDomain(respondent)))
	}

	m.submissionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.submissionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordScan records a completed (or failed) calendar scan.
func (m *Metrics) RecordScan(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.scansTotal == nil || m.scanDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.scansTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.scanDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordIdentityOperation records an identity store operation
// (lookup, save, forget, list).
func (m *Metrics) RecordIdentityOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.identityOpsTotal == nil || m.identityOpsDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.identityOpsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.identityOpsDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "handoff_scan_calendar")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
