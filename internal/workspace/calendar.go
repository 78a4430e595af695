package workspace

import (
	"context"

	"github.com/teemow/handoff/internal/handoff"
)

// cancelledStatus marks deleted instances of recurring events.
const cancelledStatus = "cancelled"

// Calendar implements handoff.CalendarSource.
type Calendar struct {
	api CalendarAPI
}

// NewCalendar creates a Calendar.
func NewCalendar(api CalendarAPI) *Calendar {
	return &Calendar{api: api}
}

// ListEvents implements handoff.CalendarSource. Cancelled instances are
// dropped.
func (c *Calendar) ListEvents(ctx context.Context, calendarID string, window handoff.Window) ([]handoff.CalendarEvent, error) {
	summaries, err := c.api.ListEvents(ctx, calendarID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	events := make([]handoff.CalendarEvent, 0, len(summaries))
	for _, s := range summaries {
		if s.Status == cancelledStatus {
			continue
		}
		events = append(events, handoff.CalendarEvent{
			ID:             s.ID,
			Summary:        s.Summary,
			OrganizerEmail: s.Organizer,
			AttendeeEmails: s.AttendeeEmails(),
			Start:          s.Start,
		})
	}
	return events, nil
}
