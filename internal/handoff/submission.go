package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
)

// Email texts sent by the Processor.
const (
	SubmissionSubject  = "Handoff: Your Form Submission"
	SubmissionBody     = "Hello,\n\nAttached is the PDF version of your recent form submission.\n\nThank you."
	OwnerNoticeSubject = "Handoff: Form Submission Processed"
)

// QuestionPlaceholders is the number of {QuestionN} tokens filled in.
const QuestionPlaceholders = 6

// DefaultTimestampLayout renders {Timestamp} like "2/4/2025, 10:00:00 AM".
const DefaultTimestampLayout = "1/2/2006, 3:04:05 PM"

// PDFMimeType is the type of rendered artifacts.
const PDFMimeType = "application/pdf"

// ProcessorConfig configures a Processor.
type ProcessorConfig struct {
	// TemplateID is the document copied for every submission.
	TemplateID string

	// TimestampLayout formats {Timestamp} (default: DefaultTimestampLayout).
	TimestampLayout string

	// Location is the time zone for {Timestamp} (default: time.Local).
	Location *time.Location
}

// SubmissionResult reports what a processed submission produced.
type SubmissionResult struct {
	Respondent     string `json:"respondent"`
	FolderID       string `json:"folderId"`
	ArtifactID     string `json:"artifactId,omitempty"`
	ArtifactName   string `json:"artifactName,omitempty"`
	RespondentSent bool   `json:"respondentSent"`
	OwnerNotified  bool   `json:"ownerNotified"`
}

// Processor renders submissions into PDFs filed in the respondent's folder.
type Processor struct {
	store     *identity.Store
	storage   FolderStorage
	templates TemplateEngine
	notifier  Notifier
	config    ProcessorConfig
	options
}

// NewProcessor creates a Processor.
func NewProcessor(store *identity.Store, storage FolderStorage, templates TemplateEngine, notifier Notifier, config ProcessorConfig, opts ...Option) (*Processor, error) {
	if config.TemplateID == "" {
		return nil, fmt.Errorf("template ID is required")
	}
	if config.TimestampLayout == "" {
		config.TimestampLayout = DefaultTimestampLayout
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Processor{
		store:     store,
		storage:   storage,
		templates: templates,
		notifier:  notifier,
		config:    config,
		options:   buildOptions(opts),
	}, nil
}

// ArtifactName returns the file name of the PDF rendered for respondent.
func ArtifactName(respondent string) string {
	return "Form Submission - " + respondent + ".pdf"
}

// OwnerNoticeBody returns the notice sent to Participant A.
func OwnerNoticeBody(respondent string) string {
	return "A form submission from " + respondent + " has been processed and the PDF was emailed to Participant B."
}

// Placeholders builds the token replacements for sub. Question titles are
// matched with all whitespace removed, so "Question 1" fills {Question1}.
// Missing answers become empty strings.
func Placeholders(sub Submission, timestamp string) []Placeholder {
	answers := make(map[string]string, len(sub.Answers))
	for _, a := range sub.Answers {
		answers[strings.Join(strings.Fields(a.Question), "")] = a.Value
	}

	out := make([]Placeholder, 0, QuestionPlaceholders+2)
	out = append(out,
		Placeholder{Token: "{Timestamp}", Value: timestamp},
		Placeholder{Token: "{Email}", Value: sub.RespondentEmail},
	)
	for i := 1; i <= QuestionPlaceholders; i++ {
		key := fmt.Sprintf("Question%d", i)
		out = append(out, Placeholder{Token: "{" + key + "}", Value: answers[key]})
	}
	return out
}

// Process turns one submission into a filed PDF, emails it to the respondent
// and notifies the folder owner when one is recorded.
//
// The identity record is never modified here: a folder that no longer
// resolves is reported as ErrStaleReference and left for the next scan.
func (p *Processor) Process(ctx context.Context, sub Submission) (result *SubmissionResult, err error) {
	start := p.now()
	respondent := sub.RespondentEmail

	ctx, span := instrumentation.StartHandoffSpan(ctx, "submission",
		instrumentation.NewSpanAttributeBuilder().
			WithParticipant(logging.AnonymizeEmail(respondent)).
			Build()...)
	defer span.End()

	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		p.metrics.RecordSubmission(ctx, status, respondent, time.Since(start))
	}()

	if respondent == "" {
		return nil, fmt.Errorf("%w: submission has no respondent email", ErrMissingIdentity)
	}

	logger := logging.WithOperation(p.logger, "submission").With(logging.Participant(respondent))

	lookupStart := time.Now()
	rec, err := p.store.Lookup(ctx, respondent)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		recordIdentityOp(ctx, p.metrics, "lookup", lookupStart, nil)
		return nil, ErrUnknownParticipant
	case err != nil:
		recordIdentityOp(ctx, p.metrics, "lookup", lookupStart, err)
		return nil, externalError("identity", "lookup", err)
	}
	recordIdentityOp(ctx, p.metrics, "lookup", lookupStart, nil)

	if rec.OwnerEmail == "" {
		logger.Warn("Folder record has no owner, owner notice will be skipped", logging.Folder(rec.FolderID))
	}

	if err := p.storage.ResolveFolder(ctx, rec.FolderID); err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return nil, fmt.Errorf("%w: folder %s", ErrStaleReference, rec.FolderID)
		}
		return nil, externalError("storage", "resolve_folder", err)
	}

	result = &SubmissionResult{Respondent: respondent, FolderID: rec.FolderID}

	timestamp := sub.Timestamp
	if timestamp.IsZero() {
		timestamp = start
	}

	pdf, fileID, err := p.materialize(ctx, sub, rec.FolderID, start, timestamp)
	if err != nil {
		return nil, err
	}
	result.ArtifactID = fileID
	result.ArtifactName = pdf.Name

	err = p.notifier.Send(ctx, Message{
		To:          respondent,
		Subject:     SubmissionSubject,
		Body:        SubmissionBody,
		Attachments: []Blob{pdf},
	})
	if err != nil {
		return result, externalError("notifier", "send_respondent", err)
	}
	result.RespondentSent = true
	p.audit.Record(ctx, instrumentation.SideEffect{
		Action:      instrumentation.ActionNotificationSent,
		Participant: respondent,
		Target:      "respondent",
		Detail:      pdf.Name,
	})

	if rec.OwnerEmail != "" {
		err = p.notifier.Send(ctx, Message{
			To:      rec.OwnerEmail,
			Subject: OwnerNoticeSubject,
			Body:    OwnerNoticeBody(respondent),
		})
		if err != nil {
			return result, externalError("notifier", "send_owner", err)
		}
		result.OwnerNotified = true
		p.audit.Record(ctx, instrumentation.SideEffect{
			Action:      instrumentation.ActionNotificationSent,
			Participant: respondent,
			Target:      "owner",
		})
	}

	logger.Info("Processed form submission",
		logging.Folder(rec.FolderID),
		"artifact_id", fileID,
		"owner_notified", result.OwnerNotified)

	return result, nil
}

// materialize copies the template, fills it, renders the PDF and files it.
// The working copy is discarded on every path once it exists.
func (p *Processor) materialize(ctx context.Context, sub Submission, folderID string, now, timestamp time.Time) (pdf Blob, fileID string, err error) {
	copyName := fmt.Sprintf("Submission %s %s", sub.RespondentEmail, now.UTC().Format(time.RFC3339))

	doc, err := p.templates.CopyTemplate(ctx, p.config.TemplateID, folderID, copyName)
	if err != nil {
		return Blob{}, "", externalError("template", "copy", err)
	}
	defer func() {
		ctx, cancel := cleanupContext(ctx)
		defer cancel()

		if derr := p.templates.Discard(ctx, doc); derr != nil {
			p.logger.Warn("Failed to discard working copy",
				logging.Participant(sub.RespondentEmail), "document_id", doc.ID, logging.Err(derr))
			return
		}
		p.audit.Record(ctx, instrumentation.SideEffect{
			Action:      instrumentation.ActionCopyDiscarded,
			Participant: sub.RespondentEmail,
			Target:      doc.ID,
		})
	}()

	ts := timestamp.In(p.config.Location).Format(p.config.TimestampLayout)
	if err := p.templates.ReplacePlaceholders(ctx, doc, Placeholders(sub, ts)); err != nil {
		return Blob{}, "", externalError("template", "replace_placeholders", err)
	}

	pdf, err = p.templates.Render(ctx, doc, ArtifactName(sub.RespondentEmail))
	if err != nil {
		return Blob{}, "", externalError("template", "render", err)
	}
	if pdf.Name == "" {
		pdf.Name = ArtifactName(sub.RespondentEmail)
	}
	if pdf.MimeType == "" {
		pdf.MimeType = PDFMimeType
	}

	fileID, err = p.storage.CreateFile(ctx, folderID, pdf)
	if err != nil {
		return Blob{}, "", externalError("storage", "create_file", err)
	}
	p.audit.Record(ctx, instrumentation.SideEffect{
		Action:      instrumentation.ActionArtifactFiled,
		Participant: sub.RespondentEmail,
		Target:      fileID,
		Detail:      pdf.Name,
	})

	return pdf, fileID, nil
}
