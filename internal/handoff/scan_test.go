package handoff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
)

var testWindow = NewWindow(fixedNow, 7*24*time.Hour)

func newTestScanner(events []CalendarEvent) (*Scanner, *fakeCalendar, *fakeStorage, *countingBackend) {
	cal := &fakeCalendar{events: events}
	storage := newFakeStorage()
	backend := newCountingBackend()
	prov := NewProvisioner(identity.NewStore(backend), storage)
	return NewScanner(cal, prov, WithClock(fixedClock)), cal, storage, backend
}

func TestScan_SkipsUnresolvableEventsWithoutWrites(t *testing.T) {
	events := []CalendarEvent{
		{Summary: "no organizer", AttendeeEmails: []string{"b@x.com"}},
		{Summary: "no attendees", OrganizerEmail: "a@x.com"},
		{Summary: "solo", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"a@x.com"}},
	}
	s, _, storage, backend := newTestScanner(events)

	report, err := s.Scan(context.Background(), "primary", testWindow)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 0, storage.createCalls)
	assert.Equal(t, 0, backend.sets)
	for _, ev := range report.Events {
		assert.Equal(t, EventStatusSkipped, ev.Status)
		assert.NotEmpty(t, ev.Error)
	}
}

func TestScan_FaultIsolation(t *testing.T) {
	events := []CalendarEvent{
		{ID: "1", Summary: "first", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"b@x.com"}},
		{ID: "2", Summary: "broken", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"c@x.com"}},
		{ID: "3", Summary: "third", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"d@x.com"}},
	}
	s, _, storage, _ := newTestScanner(events)

	// Fail only the second folder creation.
	failing := &failNthCreate{fakeStorage: storage, n: 2}
	s.provisioner.storage = failing

	report, err := s.Scan(context.Background(), "primary", testWindow)
	require.NoError(t, err)

	require.Len(t, report.Events, 3)
	assert.Equal(t, EventStatusProvisioned, report.Events[0].Status)
	assert.Equal(t, EventStatusFailed, report.Events[1].Status)
	assert.Contains(t, report.Events[1].Error, "create_folder")
	assert.Equal(t, EventStatusProvisioned, report.Events[2].Status)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
}

type failNthCreate struct {
	*fakeStorage
	n     int
	calls int
}

func (f *failNthCreate) CreateFolder(ctx context.Context, name string) (string, error) {
	f.calls++
	if f.calls == f.n {
		return "", errors.New("backend unavailable")
	}
	return f.fakeStorage.CreateFolder(ctx, name)
}

func TestScan_RepeatedRunsAreIdempotent(t *testing.T) {
	events := []CalendarEvent{
		{Summary: "weekly", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"a@x.com", "b@x.com"}},
		{Summary: "weekly again", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"b@x.com", "a@x.com"}},
	}
	s, _, storage, _ := newTestScanner(events)

	first, err := s.Scan(context.Background(), "primary", testWindow)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, first.Existing)

	second, err := s.Scan(context.Background(), "primary", testWindow)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Existing)
	assert.Len(t, storage.liveFolders(), 1)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestScan_ListFailureIsReturned(t *testing.T) {
	s, cal, _, _ := newTestScanner(nil)
	cal.err = errors.New("calendar unavailable")

	report, err := s.Scan(context.Background(), "primary", testWindow)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrExternalCall)
}

func TestScan_EmptyCalendar(t *testing.T) {
	s, cal, _, _ := newTestScanner(nil)

	report, err := s.Scan(context.Background(), "team@group.calendar.google.com", testWindow)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, "team@group.calendar.google.com", cal.lastID)
	assert.Equal(t, testWindow, cal.lastW)
}

func TestScan_InvalidWindow(t *testing.T) {
	s, cal, _, _ := newTestScanner(nil)

	_, err := s.Scan(context.Background(), "primary", Window{Start: fixedNow, End: fixedNow})
	assert.Error(t, err)
	assert.Equal(t, 0, cal.calls)
}

func TestScan_CancelledContextReturnsPartialReport(t *testing.T) {
	events := []CalendarEvent{
		{Summary: "one", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"b@x.com"}},
	}
	s, _, storage, _ := newTestScanner(events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.Scan(ctx, "primary", testWindow)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, storage.createCalls)
}

func TestScan_CancelDuringEventFinishesThatEvent(t *testing.T) {
	events := []CalendarEvent{
		{ID: "1", Summary: "first", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"b@x.com"}},
		{ID: "2", Summary: "second", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"c@x.com"}},
	}
	s, _, storage, backend := newTestScanner(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	storage.afterCreate = cancel

	report, err := s.Scan(ctx, "primary", testWindow)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	require.Len(t, report.Events, 1)
	assert.Equal(t, EventStatusProvisioned, report.Events[0].Status)
	assert.Equal(t, []string{report.Events[0].FolderID}, storage.liveFolders())
	assert.Equal(t, []string{"a@x.com"}, storage.folder(report.Events[0].FolderID).editors)

	v, ok, _ := backend.Get(context.Background(), "folder_b@x.com")
	assert.True(t, ok)
	assert.Equal(t, report.Events[0].FolderID, v)
	assert.Equal(t, 1, storage.createCalls)
}

func TestScanReport_SummaryAndJSON(t *testing.T) {
	r := &ScanReport{}
	r.add(EventResult{Status: EventStatusProvisioned, Outcome: OutcomeCreated})
	r.add(EventResult{Status: EventStatusProvisioned, Outcome: OutcomeExisting})
	r.add(EventResult{Status: EventStatusProvisioned, Outcome: OutcomeRecreated})
	r.add(EventResult{Status: EventStatusProvisioned, Outcome: OutcomeRepaired})
	r.add(EventResult{Status: EventStatusSkipped})
	r.add(EventResult{Status: EventStatusFailed})

	assert.Equal(t, "6 events: 1 created, 1 recreated, 1 repaired, 1 existing, 1 skipped, 1 failed", r.Summary())
	assert.True(t, strings.Contains(r.JSON(), `"failed": 1`))
}

func TestWindow_Validate(t *testing.T) {
	assert.NoError(t, testWindow.Validate())
	assert.Error(t, Window{}.Validate())
	assert.Error(t, Window{Start: fixedNow, End: fixedNow.Add(-time.Hour)}.Validate())
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestScan_EventAndFolderSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	events := []CalendarEvent{
		{ID: "ev-1", Summary: "pair", OrganizerEmail: "a@x.com", AttendeeEmails: []string{"b@x.com"}},
		{ID: "ev-2", Summary: "solo", OrganizerEmail: "a@x.com"},
	}
	s, _, _, _ := newTestScanner(events)

	report, err := s.Scan(context.Background(), "primary", testWindow)
	require.NoError(t, err)
	require.Len(t, report.Events, 2)

	byEvent := map[string]sdktrace.ReadOnlySpan{}
	var provision sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		switch span.Name() {
		case "handoff.event":
			byEvent[spanAttr(span, instrumentation.SpanAttrEventID)] = span
		case "handoff.provision":
			provision = span
		}
	}

	require.Contains(t, byEvent, "ev-1")
	require.Contains(t, byEvent, "ev-2")
	assert.Equal(t, EventStatusProvisioned, spanAttr(byEvent["ev-1"], instrumentation.SpanAttrOutcome))
	assert.Equal(t, EventStatusSkipped, spanAttr(byEvent["ev-2"], instrumentation.SpanAttrOutcome))

	require.NotNil(t, provision)
	assert.Equal(t, report.Events[0].FolderID, spanAttr(provision, instrumentation.SpanAttrFolderID))
	assert.Equal(t, byEvent["ev-1"].SpanContext().SpanID(), provision.Parent().SpanID())
}
