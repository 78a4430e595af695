package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
)

// DefaultScanWindow is the look-ahead of scans that name no window.
const DefaultScanWindow = 7 * 24 * time.Hour

// Workflow is the handoff entry point served by this package.
// *handoff.Service implements it.
type Workflow interface {
	CalendarID() string
	Scan(ctx context.Context, calendarID string, window handoff.Window) (*handoff.ScanReport, error)
	ProcessSubmission(ctx context.Context, sub handoff.Submission) (*handoff.SubmissionResult, error)
	Lookup(ctx context.Context, participantB string) (identity.Record, error)
	Mappings(ctx context.Context) ([]identity.Mapping, error)
	Forget(ctx context.Context, participantB string) error
}

var _ Workflow = (*handoff.Service)(nil)

// Options configures a ServerContext.
type Options struct {
	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger

	// ScanWindow is the default look-ahead of scans (default: DefaultScanWindow).
	ScanWindow time.Duration

	// Now overrides the clock.
	Now func() time.Time
}

// LastScan describes the most recent scan run by this process.
type LastScan struct {
	Report   *handoff.ScanReport
	Error    string
	Finished time.Time
}

// ServerContext holds the state shared by the server components
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	workflow Workflow

	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger
	scanWindow time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	shutdown bool
	lastScan *LastScan
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, workflow Workflow, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ScanWindow <= 0 {
		opts.ScanWindow = DefaultScanWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		workflow:   workflow,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		audit:      opts.AuditLogger,
		scanWindow: opts.ScanWindow,
		now:        opts.Now,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// RequestContext returns the base context of served requests. It keeps the
// values of Context but is not cancelled by Shutdown, so draining requests
// finish their external calls.
func (sc *ServerContext) RequestContext() context.Context {
	return context.WithoutCancel(sc.ctx)
}

// Workflow returns the handoff workflow.
func (sc *ServerContext) Workflow() Workflow {
	return sc.workflow
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder (may be nil).
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger (may be nil).
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// DefaultWindow returns the scan window starting now.
func (sc *ServerContext) DefaultWindow() handoff.Window {
	return handoff.NewWindow(sc.now(), sc.scanWindow)
}

// RunScan runs a scan and remembers its outcome as the last scan.
func (sc *ServerContext) RunScan(ctx context.Context, calendarID string, window handoff.Window) (*handoff.ScanReport, error) {
	report, err := sc.workflow.Scan(ctx, calendarID, window)

	last := &LastScan{Report: report, Finished: sc.now()}
	if err != nil {
		last.Error = err.Error()
	}
	sc.mu.Lock()
	sc.lastScan = last
	sc.mu.Unlock()

	return report, err
}

// LastScan returns the most recent scan, or nil before the first one.
func (sc *ServerContext) LastScan() *LastScan {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastScan
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
