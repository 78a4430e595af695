package server

import (
	"context"
	"sync"
	"time"

	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/identity"
)

var fixedNow = time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)

type fakeWorkflow struct {
	mu sync.Mutex

	scanReport *handoff.ScanReport
	scanErr    error
	scans      []scanCall

	subResult *handoff.SubmissionResult
	subErr    error
	subs      []handoff.Submission

	records map[string]identity.Record
}

type scanCall struct {
	calendarID string
	window     handoff.Window
}

func (f *fakeWorkflow) CalendarID() string { return "primary" }

func (f *fakeWorkflow) Scan(_ context.Context, calendarID string, window handoff.Window) (*handoff.ScanReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, scanCall{calendarID, window})
	if f.scanReport == nil && f.scanErr == nil {
		return &handoff.ScanReport{CalendarID: calendarID, Window: window}, nil
	}
	return f.scanReport, f.scanErr
}

func (f *fakeWorkflow) ProcessSubmission(_ context.Context, sub handoff.Submission) (*handoff.SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	return f.subResult, f.subErr
}

func (f *fakeWorkflow) Lookup(_ context.Context, participantB string) (identity.Record, error) {
	rec, ok := f.records[participantB]
	if !ok {
		return identity.Record{}, identity.ErrNotFound
	}
	return rec, nil
}

func (f *fakeWorkflow) Mappings(context.Context) ([]identity.Mapping, error) {
	var out []identity.Mapping
	for b, rec := range f.records {
		out = append(out, identity.Mapping{ParticipantB: b, Record: rec})
	}
	return out, nil
}

func (f *fakeWorkflow) Forget(_ context.Context, participantB string) error {
	delete(f.records, participantB)
	return nil
}

func (f *fakeWorkflow) scanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scans)
}

func newTestContext(wf Workflow) *ServerContext {
	return NewServerContext(context.Background(), wf, Options{
		Now: func() time.Time { return fixedNow },
	})
}
