package gmail

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To          []string
	Cc          []string
	Subject     string
	Body        string
	IsHTML      bool
	Attachments []Attachment
}

// Attachment is a file attached to an EmailMessage
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}
