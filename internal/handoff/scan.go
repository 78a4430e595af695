package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
)

// Per-event statuses in a ScanReport.
const (
	EventStatusProvisioned = instrumentation.EventOutcomeProvisioned
	EventStatusSkipped     = instrumentation.EventOutcomeSkipped
	EventStatusFailed      = instrumentation.EventOutcomeFailed
)

// EventResult is the outcome of one event in a scan.
type EventResult struct {
	EventID  string           `json:"eventId,omitempty"`
	Summary  string           `json:"summary"`
	Status   string           `json:"status"`
	Pair     *ParticipantPair `json:"pair,omitempty"`
	Outcome  Outcome          `json:"outcome,omitempty"`
	FolderID string           `json:"folderId,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// ScanReport aggregates the results of one calendar scan.
type ScanReport struct {
	// RunID identifies the scan in logs and audit entries.
	RunID      string        `json:"runId"`
	CalendarID string        `json:"calendarId"`
	Window     Window        `json:"window"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`

	Total     int `json:"total"`
	Created   int `json:"created"`
	Recreated int `json:"recreated"`
	Repaired  int `json:"repaired"`
	Existing  int `json:"existing"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	Events []EventResult `json:"events"`
}

func (r *ScanReport) add(res EventResult) {
	r.Total++
	switch res.Status {
	case EventStatusSkipped:
		r.Skipped++
	case EventStatusFailed:
		r.Failed++
	default:
		switch res.Outcome {
		case OutcomeCreated:
			r.Created++
		case OutcomeRecreated:
			r.Recreated++
		case OutcomeRepaired:
			r.Repaired++
		default:
			r.Existing++
		}
	}
	r.Events = append(r.Events, res)
}

// JSON returns the indented JSON form of the report.
func (r *ScanReport) JSON() string {
	b, _ := json.MarshalIndent(r, "", "  ")
	return string(b)
}

// Summary returns a one-line description of the report.
func (r *ScanReport) Summary() string {
	return fmt.Sprintf("%d events: %d created, %d recreated, %d repaired, %d existing, %d skipped, %d failed",
		r.Total, r.Created, r.Recreated, r.Repaired, r.Existing, r.Skipped, r.Failed)
}

// Scanner provisions folders for every event in a calendar window.
type Scanner struct {
	calendar    CalendarSource
	provisioner *Provisioner
	options
}

// NewScanner creates a Scanner.
func NewScanner(calendar CalendarSource, provisioner *Provisioner, opts ...Option) *Scanner {
	return &Scanner{
		calendar:    calendar,
		provisioner: provisioner,
		options:     buildOptions(opts),
	}
}

// Scan lists the events of calendarID in window and provisions a folder for
// each resolvable pair, in event order. A failing event is recorded in the
// report and does not stop the scan. Only a failure to list events or a
// cancelled context is returned as an error; on cancellation the partial
// report is returned with it.
func (s *Scanner) Scan(ctx context.Context, calendarID string, window Window) (report *ScanReport, err error) {
	start := s.now()

	ctx, span := instrumentation.StartHandoffSpan(ctx, "scan")
	defer span.End()

	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		s.metrics.RecordScan(ctx, status, time.Since(start))
	}()

	if err := window.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithRunID(runID).Build()...)
	logger := logging.WithOperation(s.logger, "scan").With("calendar_id", calendarID, "run_id", runID)

	events, err := s.calendar.ListEvents(ctx, calendarID, window)
	if err != nil {
		err = externalError("calendar", "list_events", err)
		logger.Error("Failed to list calendar events", logging.Err(err))
		return nil, err
	}

	report = &ScanReport{
		RunID:      runID,
		CalendarID: calendarID,
		Window:     window,
		StartedAt:  start,
		Events:     make([]EventResult, 0, len(events)),
	}

	if len(events) == 0 {
		logger.Info("No events found",
			"from", window.Start.Format(time.RFC3339),
			"to", window.End.Format(time.RFC3339))
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			report.Duration = time.Since(start)
			return report, ctx.Err()
		}
		// A started event runs to completion; cancellation only stops
		// the scan between events.
		res := s.scanEvent(context.WithoutCancel(ctx), ev)
		s.metrics.RecordEvent(ctx, res.Status)
		report.add(res)
	}

	report.Duration = time.Since(start)
	logger.Info("Calendar scan completed", "summary", report.Summary())

	return report, nil
}

func (s *Scanner) scanEvent(ctx context.Context, ev CalendarEvent) (res EventResult) {
	ctx, span := instrumentation.StartHandoffSpan(ctx, "event",
		instrumentation.NewSpanAttributeBuilder().WithEvent(ev.ID).Build()...)
	defer span.End()
	defer func() {
		instrumentation.SetSpanOutcome(span, res.Status)
		if res.Status == EventStatusFailed {
			instrumentation.SetSpanError(span, errors.New(res.Error))
			return
		}
		instrumentation.SetSpanSuccess(span)
	}()

	res = EventResult{EventID: ev.ID, Summary: ev.Summary}
	logger := s.logger.With(logging.Event(ev.Summary))

	pair, err := ResolvePair(ev)
	if err != nil {
		res.Error = err.Error()
		if !IsSkip(err) {
			logger.Error("Error resolving event", logging.Err(err))
			res.Status = EventStatusFailed
			return res
		}
		logger.Info("Skipping event", "reason", err.Error())
		res.Status = EventStatusSkipped
		return res
	}
	res.Pair = &pair

	pr, err := s.provisioner.Provision(ctx, pair)
	if err != nil {
		logger.Error("Error processing event", logging.Participant(pair.ParticipantB), logging.Err(err))
		res.Status = EventStatusFailed
		res.Error = err.Error()
		return res
	}

	res.Status = EventStatusProvisioned
	res.Outcome = pr.Outcome
	res.FolderID = pr.FolderID
	return res
}
