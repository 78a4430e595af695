package workspace

import (
	"context"

	"github.com/teemow/handoff/internal/docs"
	"github.com/teemow/handoff/internal/drive"
	"github.com/teemow/handoff/internal/handoff"
)

// Templates implements handoff.TemplateEngine with a Google Docs template
// copied through Drive.
type Templates struct {
	drive DriveAPI
	docs  DocsAPI
}

// NewTemplates creates Templates.
func NewTemplates(driveAPI DriveAPI, docsAPI DocsAPI) *Templates {
	return &Templates{drive: driveAPI, docs: docsAPI}
}

// CopyTemplate implements handoff.TemplateEngine.
func (t *Templates) CopyTemplate(ctx context.Context, templateID, folderID, name string) (handoff.Document, error) {
	info, err := t.drive.CopyFile(ctx, templateID, name, folderID)
	if err != nil {
		return handoff.Document{}, err
	}
	return handoff.Document{ID: info.ID, Name: info.Name}, nil
}

// ReplacePlaceholders implements handoff.TemplateEngine.
func (t *Templates) ReplacePlaceholders(ctx context.Context, doc handoff.Document, placeholders []handoff.Placeholder) error {
	replacements := make([]docs.Replacement, 0, len(placeholders))
	for _, p := range placeholders {
		replacements = append(replacements, docs.Replacement{Find: p.Token, Replace: p.Value})
	}
	_, err := t.docs.ReplaceAllText(ctx, doc.ID, replacements)
	return err
}

// Render implements handoff.TemplateEngine by exporting the document as PDF.
func (t *Templates) Render(ctx context.Context, doc handoff.Document, name string) (handoff.Blob, error) {
	data, err := t.drive.ExportFile(ctx, doc.ID, drive.PDFMimeType)
	if err != nil {
		return handoff.Blob{}, err
	}
	return handoff.Blob{Name: name, MimeType: drive.PDFMimeType, Data: data}, nil
}

// Discard implements handoff.TemplateEngine.
func (t *Templates) Discard(ctx context.Context, doc handoff.Document) error {
	return t.drive.TrashFile(ctx, doc.ID)
}
