package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/teemow/handoff/internal/google"
	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
	"github.com/teemow/handoff/internal/workspace"
)

// app holds what a command needs to run the workflow.
type app struct {
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	store   *identity.Store
	service *handoff.Service
}

// newLogger builds the process logger from the global options.
func newLogger(o *GlobalOptions) *slog.Logger {
	logger := logging.New(logging.Options{
		Level:      o.LogLevel,
		Format:     o.LogFormat,
		Writer:     os.Stderr,
		IncludePII: o.LogPII,
	})
	slog.SetDefault(logger)
	return logger
}

// newAuditLogger builds the audit logger from the environment configuration.
// --log-pii also reveals participants in the audit trail.
func newAuditLogger(logger *slog.Logger, o *GlobalOptions) *instrumentation.AuditLogger {
	cfg := instrumentation.DefaultConfig().AuditLogging
	if o.LogPII {
		cfg.IncludePII = true
	}
	return instrumentation.NewAuditLoggerWithConfig(logger, cfg)
}

// openStore opens the configured identity store.
func openStore(ctx context.Context, o *GlobalOptions) (*identity.Store, error) {
	store, err := identity.Open(ctx, o.identityConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open identity store: %w", err)
	}
	return store, nil
}

// newTokenProvider selects the Google credentials.
func newTokenProvider(o *GlobalOptions) (google.TokenProvider, error) {
	if o.ServiceAccountKey == "" && o.Impersonate != "" {
		return nil, fmt.Errorf("--impersonate requires --service-account-key")
	}
	return google.NewTokenProvider(o.Account, o.ServiceAccountKey, o.Impersonate)
}

// requireTemplate fails commands that render submissions without a template.
func requireTemplate(o *GlobalOptions) error {
	if o.TemplateID == "" {
		return fmt.Errorf("a document template is required (--template or HANDOFF_TEMPLATE_ID)")
	}
	return nil
}

// newApp opens the store and wires the workflow over Google Workspace.
func newApp(ctx context.Context, o *GlobalOptions, logger *slog.Logger, metrics *instrumentation.Metrics) (*app, error) {
	loc, err := o.location()
	if err != nil {
		return nil, err
	}

	provider, err := newTokenProvider(o)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, o)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.New(ctx, provider, metrics, workspace.Config{ParentFolderID: o.ParentFolderID})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create Google Workspace clients: %w", err)
	}

	audit := newAuditLogger(logger, o)
	service, err := handoff.NewService(handoff.ServiceConfig{
		CalendarID: o.CalendarID,
		Store:      store,
		Calendar:   ws.Calendar,
		Storage:    ws.Storage,
		Templates:  ws.Templates,
		Notifier:   ws.Notifier,
		Processor: handoff.ProcessorConfig{
			TemplateID: o.TemplateID,
			Location:   loc,
		},
	},
		handoff.WithLogger(logger),
		handoff.WithMetrics(metrics),
		handoff.WithAuditLogger(audit),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logging.WithAccount(logger, provider.Account()).Debug("Workflow ready",
		"calendar", o.CalendarID,
		"submissions", service.AcceptsSubmissions(),
		"store", o.Storage.Type)

	return &app{
		logger:  logger,
		metrics: metrics,
		audit:   audit,
		store:   store,
		service: service,
	}, nil
}

// Close releases the identity store.
func (a *app) Close() error {
	return a.store.Close()
}
