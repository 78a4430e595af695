package handoff

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentity means an event has no organizer or a submission has
	// no respondent email.
	ErrMissingIdentity = errors.New("missing identity")

	// ErrUnresolvedParticipant means no attendee qualifies as Participant B.
	ErrUnresolvedParticipant = errors.New("no counterpart attendee")

	// ErrUnknownParticipant means a submission arrived for a respondent with
	// no provisioned folder.
	ErrUnknownParticipant = errors.New("no folder mapping for participant")

	// ErrStaleReference means a recorded folder no longer resolves.
	ErrStaleReference = errors.New("recorded folder no longer exists")

	// ErrFolderNotFound is returned by FolderStorage.ResolveFolder for
	// deleted or trashed folders.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrSubmissionsDisabled means no document template is configured.
	ErrSubmissionsDisabled = errors.New("submissions are disabled: no document template configured")

	// ErrExternalCall matches every *ExternalCallError.
	ErrExternalCall = errors.New("external call failed")
)

// ExternalCallError wraps a failed collaborator call.
type ExternalCallError struct {
	// Service is the collaborator: calendar, storage, template, notifier or identity.
	Service string

	// Op is the operation that failed, e.g. "create_folder".
	Op string

	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExternalCall.
func (e *ExternalCallError) Is(target error) bool {
	return target == ErrExternalCall
}

func externalError(service, op string, err error) error {
	var ece *ExternalCallError
	if errors.As(err, &ece) {
		return err
	}
	return &ExternalCallError{Service: service, Op: op, Err: err}
}

// IsSkip reports whether err only means the event does not describe a pair.
func IsSkip(err error) bool {
	return errors.Is(err, ErrMissingIdentity) || errors.Is(err, ErrUnresolvedParticipant)
}
