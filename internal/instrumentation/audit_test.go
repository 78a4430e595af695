package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testEmail = "b@example.com"
	testTool  = "handoff_scan_calendar"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return out
}

func TestAuditLogger_Record_Anonymized(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLogger(logger)

	al.Record(context.Background(), SideEffect{
		Action:      ActionFolderCreated,
		Participant: testEmail,
		Target:      "folder1",
	})

	entry := decodeLine(t, buf)
	if entry["msg"] != "audit" {
		t.Errorf("msg = %v, want audit", entry["msg"])
	}
	if entry["action"] != string(ActionFolderCreated) {
		t.Errorf("action = %v, want %s", entry["action"], ActionFolderCreated)
	}
	if entry["target"] != "folder1" {
		t.Errorf("target = %v, want folder1", entry["target"])
	}
	participant, _ := entry["participant"].(string)
	if participant == testEmail || !strings.HasPrefix(participant, "user:") {
		t.Errorf("participant should be anonymized, got %q", participant)
	}
	if entry["component"] != "audit" {
		t.Errorf("component = %v, want audit", entry["component"])
	}
}

func TestAuditLogger_Record_IncludePII(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludePII: true})

	al.Record(context.Background(), SideEffect{Action: ActionNotificationSent, Participant: testEmail})

	entry := decodeLine(t, buf)
	if entry["participant"] != testEmail {
		t.Errorf("participant = %v, want %s", entry["participant"], testEmail)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})

	al.Record(context.Background(), SideEffect{Action: ActionRecordSaved})
	al.LogToolInvocation(NewToolInvocation(testTool).Complete(nil))

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}

func TestAuditLogger_NilIsSafe(t *testing.T) {
	var al *AuditLogger

	// Should not panic
	al.Record(context.Background(), SideEffect{Action: ActionRecordPruned})
	al.LogToolInvocation(NewToolInvocation(testTool).Complete(nil))
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	logger, buf := newBufferLogger()
	al := NewAuditLogger(logger)

	al.LogToolInvocation(NewToolInvocation(testTool).Complete(nil))
	entry := decodeLine(t, buf)
	if entry["msg"] != "tool_executed" {
		t.Errorf("msg = %v, want tool_executed", entry["msg"])
	}
	if entry["tool"] != testTool {
		t.Errorf("tool = %v, want %s", entry["tool"], testTool)
	}

	buf.Reset()
	al.LogToolInvocation(NewToolInvocation(testTool).Complete(errors.New("permission denied")))
	entry = decodeLine(t, buf)
	if entry["msg"] != "tool_failed" {
		t.Errorf("msg = %v, want tool_failed", entry["msg"])
	}
	if entry["error"] != "permission denied" {
		t.Errorf("error = %v, want permission denied", entry["error"])
	}
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation(testTool)
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.Complete(nil)
	if !ti.Success || ti.Status() != StatusSuccess {
		t.Error("expected success")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}

	ti = NewToolInvocation(testTool).Complete(errors.New("boom"))
	if ti.Success || ti.Status() != StatusError {
		t.Error("expected error status")
	}
	if ti.Error != "boom" {
		t.Errorf("Error = %q, want boom", ti.Error)
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation(testTool).WithSpanContext(context.Background())
	if ti.TraceID != "" {
		t.Errorf("TraceID should be empty without span, got %q", ti.TraceID)
	}
}
