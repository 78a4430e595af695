package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventSummary represents a simplified calendar event for listing
type EventSummary struct {
	ID        string
	Summary   string
	Start     time.Time
	End       time.Time
	AllDay    bool
	Organizer string
	Status    string
	Attendees []AttendeeInfo
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
	Organizer      bool
	Resource       bool
}

// AttendeeEmails returns the attendee emails in list order, excluding
// resources such as meeting rooms.
func (e EventSummary) AttendeeEmails() []string {
	out := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		if a.Resource {
			continue
		}
		out = append(out, a.Email)
	}
	return out
}

func parseEventTime(dt *calendar.EventDateTime) (t time.Time, allDay bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t, false
		}
	} else if dt.Date != "" {
		if t, err := time.Parse("2006-01-02", dt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:      event.Id,
		Summary: event.Summary,
		Status:  event.Status,
	}
	summary.Start, summary.AllDay = parseEventTime(event.Start)
	summary.End, _ = parseEventTime(event.End)

	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Organizer:      att.Organizer,
			Resource:       att.Resource,
		})
	}

	return summary
}
