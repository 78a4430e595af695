// Package gmail sends the notification emails of the handoff workflow
// through the Gmail API.
//
// Messages are built as RFC 2822 text. A message without attachments is a
// single text/plain part; attachments turn it into multipart/mixed with
// base64 encoded parts. Non-ASCII subjects and file names are RFC 2047
// encoded.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, google.NewFileTokenProvider("default"), metrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	id, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      []string{"bob@example.com"},
//	    Subject: "Handoff: Your Form Submission",
//	    Body:    "Hello,",
//	    Attachments: []gmail.Attachment{{Filename: "form.pdf", MimeType: "application/pdf", Data: pdf}},
//	})
package gmail
