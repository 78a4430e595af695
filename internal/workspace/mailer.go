package workspace

import (
	"context"

	"github.com/teemow/handoff/internal/gmail"
	"github.com/teemow/handoff/internal/handoff"
)

// Mailer implements handoff.Notifier with Gmail.
type Mailer struct {
	api GmailAPI
}

// NewMailer creates a Mailer.
func NewMailer(api GmailAPI) *Mailer {
	return &Mailer{api: api}
}

// Send implements handoff.Notifier.
func (m *Mailer) Send(ctx context.Context, msg handoff.Message) error {
	email := &gmail.EmailMessage{
		To:      []string{msg.To},
		Subject: msg.Subject,
		Body:    msg.Body,
	}
	for _, a := range msg.Attachments {
		email.Attachments = append(email.Attachments, gmail.Attachment{
			Filename: a.Name,
			MimeType: a.MimeType,
			Data:     a.Data,
		})
	}
	_, err := m.api.SendEmail(ctx, email)
	return err
}
