package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/handoff/internal/logging"
)

// Action names a side effect recorded in the audit log.
type Action string

// Side effects performed by the handoff workflow.
const (
	ActionFolderCreated    Action = "folder_created"
	ActionFolderTrashed    Action = "folder_trashed"
	ActionAccessGranted    Action = "access_granted"
	ActionRecordSaved      Action = "record_saved"
	ActionRecordRepaired   Action = "record_repaired"
	ActionRecordPruned     Action = "record_pruned"
	ActionArtifactFiled    Action = "artifact_filed"
	ActionCopyDiscarded    Action = "copy_discarded"
	ActionNotificationSent Action = "notification_sent"
)

// SideEffect describes one externally visible change.
//
// # Privacy Considerations
//
// Participant contains PII. It is anonymized by the AuditLogger unless
// IncludePII is configured.
type SideEffect struct {
	Action Action

	// Participant is the Participant B email the change belongs to.
	Participant string

	// Target is the affected resource (folder ID, file ID, recipient).
	Target string

	// Detail is a short free-form description.
	Detail string

	// Tracing context
	TraceID string
	SpanID  string
}

// ToolInvocation captures one MCP tool call for audit logging.
type ToolInvocation struct {
	Tool      string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithSpanContext extracts the trace ID from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = err == nil
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// AuditLogger writes the audit trail of side effects and tool calls.
// A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs (anonymized identifiers are used instead).
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

func (al *AuditLogger) active() bool {
	return al != nil && al.enabled
}

func (al *AuditLogger) participant(email string) string {
	if al.includePII {
		return email
	}
	return logging.AnonymizeEmail(email)
}

// Record logs a side effect, attaching the trace context from ctx.
func (al *AuditLogger) Record(ctx context.Context, effect SideEffect) {
	if !al.active() {
		return
	}

	span := trace.SpanFromContext(ctx)
	if effect.TraceID == "" && span.SpanContext().IsValid() {
		effect.TraceID = span.SpanContext().TraceID().String()
		effect.SpanID = span.SpanContext().SpanID().String()
	}

	args := []any{
		slog.String("action", string(effect.Action)),
	}
	if effect.Participant != "" {
		args = append(args, slog.String(logging.KeyParticipant, al.participant(effect.Participant)))
	}
	if effect.Target != "" {
		args = append(args, slog.String("target", effect.Target))
	}
	if effect.Detail != "" {
		args = append(args, slog.String("detail", effect.Detail))
	}
	if effect.TraceID != "" {
		args = append(args, slog.String("trace_id", effect.TraceID))
	}
	if effect.SpanID != "" {
		args = append(args, slog.String("span_id", effect.SpanID))
	}

	al.logger.InfoContext(ctx, "audit", args...)
}

// LogToolInvocation logs a completed tool invocation.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.active() {
		return
	}

	args := []any{
		slog.String(logging.KeyTool, ti.Tool),
		slog.Duration(logging.KeyDuration, ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.TraceID != "" {
		args = append(args, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		args = append(args, slog.String(logging.KeyError, ti.Error))
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
