package handoff

import (
	"fmt"
	"strings"
)

// ResolvePair derives the participant pair of an event.
//
// Participant A is the organizer. Participant B is the first attendee, in
// calendar order, with a non-empty email different from the organizer's;
// further attendees are ignored. Emails are compared exactly.
func ResolvePair(ev CalendarEvent) (ParticipantPair, error) {
	organizer := ev.OrganizerEmail
	if organizer == "" {
		return ParticipantPair{}, fmt.Errorf("%w: event has no organizer", ErrMissingIdentity)
	}
	if len(ev.AttendeeEmails) == 0 {
		return ParticipantPair{}, fmt.Errorf("%w: event has no attendees", ErrUnresolvedParticipant)
	}

	for _, attendee := range ev.AttendeeEmails {
		if attendee != "" && attendee != organizer {
			return ParticipantPair{ParticipantA: organizer, ParticipantB: attendee}, nil
		}
	}
	return ParticipantPair{}, fmt.Errorf("%w: no attendee other than the organizer", ErrUnresolvedParticipant)
}

// FolderName returns "<local A> <local B> Handoff".
func FolderName(pair ParticipantPair) string {
	return localPart(pair.ParticipantA) + " " + localPart(pair.ParticipantB) + " Handoff"
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
