package handoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/handoff/internal/identity"
)

type processorFixture struct {
	processor *Processor
	store     *identity.Store
	storage   *fakeStorage
	templates *fakeTemplates
	notifier  *fakeNotifier
	folderID  string
}

func newProcessorFixture(t *testing.T, withOwner bool) *processorFixture {
	t.Helper()
	ctx := context.Background()

	f := &processorFixture{
		store:     identity.NewStore(identity.NewMemoryBackend()),
		storage:   newFakeStorage(),
		templates: newFakeTemplates(),
		notifier:  &fakeNotifier{},
	}

	id, err := f.storage.CreateFolder(ctx, "a b Handoff")
	require.NoError(t, err)
	f.folderID = id

	if withOwner {
		require.NoError(t, f.store.Save(ctx, "b@x.com", identity.Record{FolderID: id, OwnerEmail: "a@x.com"}))
	} else {
		require.NoError(t, f.store.Backend().Set(ctx, identity.Entry{Key: identity.FolderKey("b@x.com"), Value: id}))
	}

	p, err := NewProcessor(f.store, f.storage, f.templates, f.notifier,
		ProcessorConfig{TemplateID: "tmpl-1", Location: time.UTC},
		WithClock(fixedClock))
	require.NoError(t, err)
	f.processor = p
	return f
}

func sixAnswers() []Answer {
	return []Answer{
		{Question: "Question 1", Value: "one"},
		{Question: "Question 2", Value: "two"},
		{Question: "Question 3", Value: "three"},
		{Question: "Question 4", Value: "four"},
		{Question: "Question 5", Value: "five"},
		{Question: "Question 6", Value: "six"},
	}
}

func TestProcess_Success(t *testing.T) {
	f := newProcessorFixture(t, true)

	res, err := f.processor.Process(context.Background(), Submission{
		RespondentEmail: "b@x.com",
		Answers:         sixAnswers(),
	})
	require.NoError(t, err)

	assert.Equal(t, f.folderID, res.FolderID)
	assert.Equal(t, "Form Submission - b@x.com.pdf", res.ArtifactName)
	assert.True(t, res.RespondentSent)
	assert.True(t, res.OwnerNotified)

	files := f.storage.folder(f.folderID).files
	require.Len(t, files, 1)
	assert.Equal(t, "Form Submission - b@x.com.pdf", files[0].Name)
	assert.Equal(t, PDFMimeType, files[0].MimeType)

	doc := f.templates.only()
	require.NotNil(t, doc)
	assert.Equal(t, "tmpl-1", doc.templateID)
	assert.Equal(t, f.folderID, doc.folderID)
	assert.Equal(t, "Submission b@x.com 2025-02-04T10:00:00Z", doc.name)
	assert.True(t, doc.discarded, "working copy must be discarded")

	require.Len(t, f.notifier.sent, 2)
	toB := f.notifier.sent[0]
	assert.Equal(t, "b@x.com", toB.To)
	assert.Equal(t, SubmissionSubject, toB.Subject)
	assert.Equal(t, SubmissionBody, toB.Body)
	require.Len(t, toB.Attachments, 1)
	assert.Equal(t, files[0].Name, toB.Attachments[0].Name)

	toA := f.notifier.sent[1]
	assert.Equal(t, "a@x.com", toA.To)
	assert.Equal(t, OwnerNoticeSubject, toA.Subject)
	assert.Contains(t, toA.Body, "b@x.com")
	assert.Empty(t, toA.Attachments)
}

func TestProcess_Placeholders(t *testing.T) {
	f := newProcessorFixture(t, true)

	_, err := f.processor.Process(context.Background(), Submission{
		RespondentEmail: "b@x.com",
		Timestamp:       time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC),
		Answers: []Answer{
			{Question: "Question 2", Value: "second"},
			{Question: " Question\t1 ", Value: "first"},
			{Question: "Unrelated", Value: "ignored"},
		},
	})
	require.NoError(t, err)

	got := map[string]string{}
	for _, p := range f.templates.only().placeholders {
		got[p.Token] = p.Value
	}
	assert.Equal(t, map[string]string{
		"{Timestamp}": "3/1/2025, 2:05:09 PM",
		"{Email}":     "b@x.com",
		"{Question1}": "first",
		"{Question2}": "second",
		"{Question3}": "",
		"{Question4}": "",
		"{Question5}": "",
		"{Question6}": "",
	}, got)
}

func TestProcess_MissingRespondent(t *testing.T) {
	f := newProcessorFixture(t, true)

	_, err := f.processor.Process(context.Background(), Submission{Answers: sixAnswers()})
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Empty(t, f.templates.docs)
	assert.Empty(t, f.notifier.sent)
}

func TestProcess_UnknownParticipant(t *testing.T) {
	f := newProcessorFixture(t, true)

	_, err := f.processor.Process(context.Background(), Submission{RespondentEmail: "stranger@x.com", Answers: sixAnswers()})
	assert.ErrorIs(t, err, ErrUnknownParticipant)
	assert.Empty(t, f.templates.docs, "no working copy created")
	assert.Empty(t, f.storage.folder(f.folderID).files, "no artifact filed")
	assert.Empty(t, f.notifier.sent, "no email sent")
}

func TestProcess_StaleFolderKeepsRecord(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(t, true)
	f.storage.deleteExternally(f.folderID)

	_, err := f.processor.Process(ctx, Submission{RespondentEmail: "b@x.com", Answers: sixAnswers()})
	assert.ErrorIs(t, err, ErrStaleReference)
	assert.Empty(t, f.notifier.sent)

	rec, err := f.store.Lookup(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, f.folderID, rec.FolderID)
}

func TestProcess_NoOwnerRecordSkipsNotice(t *testing.T) {
	f := newProcessorFixture(t, false)

	res, err := f.processor.Process(context.Background(), Submission{RespondentEmail: "b@x.com", Answers: sixAnswers()})
	require.NoError(t, err)
	assert.False(t, res.OwnerNotified)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "b@x.com", f.notifier.sent[0].To)
}

func TestProcess_FailuresDiscardWorkingCopy(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *processorFixture)
		op    string
	}{
		{"replace", func(f *processorFixture) { f.templates.replaceErr = errors.New("doc locked") }, "replace_placeholders"},
		{"render", func(f *processorFixture) { f.templates.renderErr = errors.New("export failed") }, "render"},
		{"file", func(f *processorFixture) { f.storage.createFileErr = errors.New("quota") }, "create_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProcessorFixture(t, true)
			tt.setup(f)

			_, err := f.processor.Process(context.Background(), Submission{RespondentEmail: "b@x.com", Answers: sixAnswers()})
			require.Error(t, err)

			var ece *ExternalCallError
			require.ErrorAs(t, err, &ece)
			assert.Equal(t, tt.op, ece.Op)

			assert.True(t, f.templates.only().discarded)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestProcess_CancelledAfterCopyStillDiscardsWorkingCopy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newProcessorFixture(t, true)
	f.templates.afterCopy = cancel

	_, err := f.processor.Process(ctx, Submission{RespondentEmail: "b@x.com", Answers: sixAnswers()})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.True(t, f.templates.only().discarded)
	assert.Empty(t, f.storage.folder(f.folderID).files)
	assert.Empty(t, f.notifier.sent)
}

func TestProcess_CopyFailure(t *testing.T) {
	f := newProcessorFixture(t, true)
	f.templates.copyErr = errors.New("template missing")

	_, err := f.processor.Process(context.Background(), Submission{RespondentEmail: "b@x.com"})
	assert.ErrorIs(t, err, ErrExternalCall)
	assert.Empty(t, f.storage.folder(f.folderID).files)
}

func TestProcess_OwnerNoticeFailure(t *testing.T) {
	f := newProcessorFixture(t, true)
	f.notifier.err = errors.New("smtp down")
	f.notifier.failTo = "a@x.com"

	res, err := f.processor.Process(context.Background(), Submission{RespondentEmail: "b@x.com", Answers: sixAnswers()})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.True(t, res.RespondentSent)
	assert.False(t, res.OwnerNotified)
	assert.Len(t, f.notifier.sent, 1)
}

func TestProcess_DiscardFailureDoesNotFailSubmission(t *testing.T) {
	f := newProcessorFixture(t, true)
	f.templates.discardErr = errors.New("trash failed")

	_, err := f.processor.Process(context.Background(), Submission{RespondentEmail: "b@x.com", Answers: sixAnswers()})
	assert.NoError(t, err)
}

func TestNewProcessor_RequiresTemplate(t *testing.T) {
	_, err := NewProcessor(identity.NewStore(identity.NewMemoryBackend()), newFakeStorage(), newFakeTemplates(), &fakeNotifier{}, ProcessorConfig{})
	assert.Error(t, err)
}

func TestPlaceholders_DuplicateQuestionLastWins(t *testing.T) {
	got := Placeholders(Submission{
		RespondentEmail: "b@x.com",
		Answers: []Answer{
			{Question: "Question 1", Value: "old"},
			{Question: "Question1", Value: "new"},
		},
	}, "ts")

	require.Len(t, got, 8)
	assert.Equal(t, Placeholder{Token: "{Timestamp}", Value: "ts"}, got[0])
	assert.Equal(t, Placeholder{Token: "{Question1}", Value: "new"}, got[2])
}
