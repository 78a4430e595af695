package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
)

// Outcome describes what Provision did.
type Outcome string

const (
	// OutcomeExisting means the recorded folder is live; nothing was written.
	OutcomeExisting Outcome = "existing"

	// OutcomeCreated means a folder was created for a first-seen participant.
	OutcomeCreated Outcome = "created"

	// OutcomeRecreated means the recorded folder was gone, the record was
	// pruned and a new folder was created.
	OutcomeRecreated Outcome = "recreated"

	// OutcomeRepaired means the folder was live but its owner record was
	// missing and has been rewritten.
	OutcomeRepaired Outcome = "repaired"

	outcomeFailed = "failed"
)

// ProvisionResult reports the folder provisioned for a pair.
type ProvisionResult struct {
	Pair          ParticipantPair `json:"pair"`
	FolderID      string          `json:"folderId"`
	FolderName    string          `json:"folderName,omitempty"`
	Outcome       Outcome         `json:"outcome"`
	StaleFolderID string          `json:"staleFolderId,omitempty"`
}

// Provisioner ensures exactly one live folder exists per Participant B.
type Provisioner struct {
	store   *identity.Store
	storage FolderStorage
	options
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(store *identity.Store, storage FolderStorage, opts ...Option) *Provisioner {
	return &Provisioner{
		store:   store,
		storage: storage,
		options: buildOptions(opts),
	}
}

// Provision makes sure pair.ParticipantB has a live folder shared with
// pair.ParticipantA.
//
// A live recorded folder is left alone. A recorded folder that no longer
// resolves has its record pruned and is replaced within the same call.
// Any other failure to resolve the folder leaves the record untouched.
func (p *Provisioner) Provision(ctx context.Context, pair ParticipantPair) (result *ProvisionResult, err error) {
	ctx, span := instrumentation.StartHandoffSpan(ctx, "provision",
		instrumentation.NewSpanAttributeBuilder().
			WithParticipant(logging.AnonymizeEmail(pair.ParticipantB)).
			Build()...)
	defer span.End()

	logger := logging.WithOperation(p.logger, "provision").With(logging.Participant(pair.ParticipantB))

	defer func() {
		if err != nil {
			instrumentation.SetSpanError(span, err)
			p.metrics.RecordProvision(ctx, outcomeFailed)
			return
		}
		span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithFolder(result.FolderID).Build()...)
		instrumentation.SetSpanOutcome(span, string(result.Outcome))
		instrumentation.SetSpanSuccess(span)
		p.metrics.RecordProvision(ctx, string(result.Outcome))
	}()

	if pair.ParticipantA == "" || pair.ParticipantB == "" {
		return nil, fmt.Errorf("%w: participant pair is incomplete", ErrMissingIdentity)
	}

	rec, err := p.lookup(ctx, pair.ParticipantB)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		return p.create(ctx, pair, OutcomeCreated, "")
	case err != nil:
		return nil, externalError("identity", "lookup", err)
	}

	err = p.storage.ResolveFolder(ctx, rec.FolderID)
	switch {
	case err == nil:
		if rec.OwnerEmail == "" {
			logger.Warn("Folder record has no owner, repairing", logging.Folder(rec.FolderID))
			if err := p.store.SaveOwner(ctx, pair.ParticipantB, pair.ParticipantA); err != nil {
				return nil, externalError("identity", "save_owner", err)
			}
			p.audit.Record(ctx, instrumentation.SideEffect{
				Action:      instrumentation.ActionRecordRepaired,
				Participant: pair.ParticipantB,
				Target:      rec.FolderID,
			})
			return &ProvisionResult{Pair: pair, FolderID: rec.FolderID, Outcome: OutcomeRepaired}, nil
		}
		logger.Debug("Folder already exists", logging.Folder(rec.FolderID))
		return &ProvisionResult{Pair: pair, FolderID: rec.FolderID, Outcome: OutcomeExisting}, nil

	case errors.Is(err, ErrFolderNotFound):
		logger.Info("Recorded folder is gone, pruning record", logging.Folder(rec.FolderID))
		if err := p.forget(ctx, pair.ParticipantB); err != nil {
			return nil, externalError("identity", "forget", err)
		}
		p.audit.Record(ctx, instrumentation.SideEffect{
			Action:      instrumentation.ActionRecordPruned,
			Participant: pair.ParticipantB,
			Target:      rec.FolderID,
		})
		return p.create(ctx, pair, OutcomeRecreated, rec.FolderID)

	default:
		return nil, externalError("storage", "resolve_folder", err)
	}
}

func (p *Provisioner) create(ctx context.Context, pair ParticipantPair, outcome Outcome, staleID string) (*ProvisionResult, error) {
	name := FolderName(pair)
	logger := logging.WithOperation(p.logger, "provision").With(logging.Participant(pair.ParticipantB))

	folderID, err := p.storage.CreateFolder(ctx, name)
	if err != nil {
		return nil, externalError("storage", "create_folder", err)
	}
	p.audit.Record(ctx, instrumentation.SideEffect{
		Action:      instrumentation.ActionFolderCreated,
		Participant: pair.ParticipantB,
		Target:      folderID,
		Detail:      name,
	})

	if err := p.storage.GrantEditAccess(ctx, folderID, pair.ParticipantA); err != nil {
		p.abandon(ctx, pair, folderID)
		return nil, externalError("storage", "grant_edit_access", err)
	}
	p.audit.Record(ctx, instrumentation.SideEffect{
		Action:      instrumentation.ActionAccessGranted,
		Participant: pair.ParticipantB,
		Target:      folderID,
		Detail:      "writer: " + logging.AnonymizeEmail(pair.ParticipantA),
	})

	start := time.Now()
	err = p.store.Save(ctx, pair.ParticipantB, identity.Record{FolderID: folderID, OwnerEmail: pair.ParticipantA})
	recordIdentityOp(ctx, p.metrics, "save", start, err)
	if err != nil {
		p.abandon(ctx, pair, folderID)
		return nil, externalError("identity", "save", err)
	}
	p.audit.Record(ctx, instrumentation.SideEffect{
		Action:      instrumentation.ActionRecordSaved,
		Participant: pair.ParticipantB,
		Target:      folderID,
	})

	logger.Info("Created folder", logging.Folder(folderID), "name", name, "outcome", string(outcome))

	return &ProvisionResult{
		Pair:          pair,
		FolderID:      folderID,
		FolderName:    name,
		Outcome:       outcome,
		StaleFolderID: staleID,
	}, nil
}

// cleanupTimeout bounds cleanup calls that outlive the caller's context.
const cleanupTimeout = 30 * time.Second

// cleanupContext keeps the values of ctx but not its cancellation, so a
// cancelled request still removes what it created.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

// abandon trashes a folder that could not be registered. Failures are only
// logged: the caller already returns the original error.
func (p *Provisioner) abandon(ctx context.Context, pair ParticipantPair, folderID string) {
	ctx, cancel := cleanupContext(ctx)
	defer cancel()

	if err := p.storage.RemoveFolder(ctx, folderID); err != nil {
		p.logger.Warn("Failed to trash unregistered folder",
			logging.Participant(pair.ParticipantB), logging.Folder(folderID), logging.Err(err))
		return
	}
	p.audit.Record(ctx, instrumentation.SideEffect{
		Action:      instrumentation.ActionFolderTrashed,
		Participant: pair.ParticipantB,
		Target:      folderID,
	})
}

func (p *Provisioner) lookup(ctx context.Context, participantB string) (identity.Record, error) {
	start := time.Now()
	rec, err := p.store.Lookup(ctx, participantB)
	if errors.Is(err, identity.ErrNotFound) {
		recordIdentityOp(ctx, p.metrics, "lookup", start, nil)
	} else {
		recordIdentityOp(ctx, p.metrics, "lookup", start, err)
	}
	return rec, err
}

func (p *Provisioner) forget(ctx context.Context, participantB string) error {
	start := time.Now()
	err := p.store.Forget(ctx, participantB)
	recordIdentityOp(ctx, p.metrics, "forget", start, err)
	return err
}

func recordIdentityOp(ctx context.Context, m *instrumentation.Metrics, op string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	m.RecordIdentityOperation(ctx, op, status, time.Since(start))
}
