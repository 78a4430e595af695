package handoff

import (
	"context"
	"sync"

	"github.com/teemow/handoff/internal/identity"
)

// Service is the entry point used by the CLI, the webhook server and the MCP
// tools. Scans and submissions run one at a time, so a single process never
// writes the identity store concurrently.
type Service struct {
	mu sync.Mutex

	calendarID string
	scanner    *Scanner
	processor  *Processor
	store      *identity.Store
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	CalendarID string
	Store      *identity.Store
	Calendar   CalendarSource
	Storage    FolderStorage
	Templates  TemplateEngine
	Notifier   Notifier
	Processor  ProcessorConfig
}

// NewService builds the provisioner, scanner and processor from cfg. The
// processor is only built when cfg.Processor names a template; without one
// the service scans but rejects submissions with ErrSubmissionsDisabled.
func NewService(cfg ServiceConfig, opts ...Option) (*Service, error) {
	provisioner := NewProvisioner(cfg.Store, cfg.Storage, opts...)

	var processor *Processor
	if cfg.Processor.TemplateID != "" {
		var err error
		processor, err = NewProcessor(cfg.Store, cfg.Storage, cfg.Templates, cfg.Notifier, cfg.Processor, opts...)
		if err != nil {
			return nil, err
		}
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Service{
		calendarID: calendarID,
		scanner:    NewScanner(cfg.Calendar, provisioner, opts...),
		processor:  processor,
		store:      cfg.Store,
	}, nil
}

// CalendarID returns the default calendar scanned by Scan.
func (s *Service) CalendarID() string {
	return s.calendarID
}

// Scan runs a calendar scan. An empty calendarID uses the default.
func (s *Service) Scan(ctx context.Context, calendarID string, window Window) (*ScanReport, error) {
	if calendarID == "" {
		calendarID = s.calendarID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanner.Scan(ctx, calendarID, window)
}

// AcceptsSubmissions reports whether a template is configured.
func (s *Service) AcceptsSubmissions() bool {
	return s.processor != nil
}

// ProcessSubmission processes one form submission.
func (s *Service) ProcessSubmission(ctx context.Context, sub Submission) (*SubmissionResult, error) {
	if s.processor == nil {
		return nil, ErrSubmissionsDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processor.Process(ctx, sub)
}

// Lookup returns the identity record of participantB.
func (s *Service) Lookup(ctx context.Context, participantB string) (identity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Lookup(ctx, participantB)
}

// Mappings lists all identity records.
func (s *Service) Mappings(ctx context.Context) ([]identity.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List(ctx)
}

// Forget removes the identity record of participantB.
func (s *Service) Forget(ctx context.Context, participantB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Forget(ctx, participantB)
}
