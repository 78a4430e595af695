package handoff

import (
	"fmt"
	"time"
)

// CalendarEvent is the subset of a calendar event the workflow needs.
type CalendarEvent struct {
	ID             string    `json:"id"`
	Summary        string    `json:"summary"`
	OrganizerEmail string    `json:"organizerEmail"`
	AttendeeEmails []string  `json:"attendeeEmails"`
	Start          time.Time `json:"start"`
}

// ParticipantPair links an organizer to the counterpart attendee.
type ParticipantPair struct {
	ParticipantA string `json:"participantA"`
	ParticipantB string `json:"participantB"`
}

// Window is a half-open time range [Start, End) used to list events.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow returns the window of the given length starting at start.
func NewWindow(start time.Time, length time.Duration) Window {
	return Window{Start: start, End: start.Add(length)}
}

// Validate checks that the window is not empty or inverted.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("window start and end are required")
	}
	if !w.End.After(w.Start) {
		return fmt.Errorf("window end %s must be after start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Answer is one question/answer pair of a form submission.
type Answer struct {
	Question string `json:"question"`
	Value    string `json:"value"`
}

// Submission is one form response.
type Submission struct {
	RespondentEmail string    `json:"respondentEmail"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
	Answers         []Answer  `json:"answers"`
}

// Blob is a named binary payload (a rendered PDF, an attachment).
type Blob struct {
	Name     string
	MimeType string
	Data     []byte
}

// Document is a handle to an editable working copy of the template.
type Document struct {
	ID   string
	Name string
}

// Placeholder is a literal token to replace in a document.
type Placeholder struct {
	Token string
	Value string
}

// Message is an email to send.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Blob
}
