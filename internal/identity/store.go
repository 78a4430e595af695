package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// FolderKeyPrefix prefixes the key holding a participant's folder ID.
	FolderKeyPrefix = "folder_"

	// OwnerKeyPrefix prefixes the key holding the folder owner's email.
	OwnerKeyPrefix = "participantA_"
)

// ErrNotFound is returned by Lookup when no folder is recorded for a participant.
var ErrNotFound = errors.New("no mapping recorded for participant")

// FolderKey returns the backend key of the folder record for participantB.
func FolderKey(participantB string) string {
	return FolderKeyPrefix + participantB
}

// OwnerKey returns the backend key of the owner record for participantB.
func OwnerKey(participantB string) string {
	return OwnerKeyPrefix + participantB
}

// Record is everything known about one participant's handoff folder.
type Record struct {
	// FolderID is the Drive folder provisioned for the pair.
	FolderID string `json:"folderId"`

	// OwnerEmail is the organizer (Participant A) with edit access.
	// Empty when the owner key was lost.
	OwnerEmail string `json:"ownerEmail,omitempty"`
}

// Complete reports whether both halves of the record are present.
func (r Record) Complete() bool {
	return r.FolderID != "" && r.OwnerEmail != ""
}

// Mapping pairs a participant with its record, for listings.
type Mapping struct {
	ParticipantB string `json:"participantB"`
	Record
}

// Store reads and writes participant records on top of a Backend.
type Store struct {
	backend Backend
}

// NewStore creates a Store over backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend returns the underlying key-value backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Lookup returns the record for participantB, or ErrNotFound when no folder
// is recorded. A record whose owner key is missing is returned with an empty
// OwnerEmail; callers decide how to treat it (see Record.Complete).
func (s *Store) Lookup(ctx context.Context, participantB string) (Record, error) {
	if participantB == "" {
		return Record{}, fmt.Errorf("participant email is required")
	}

	folderID, ok, err := s.backend.Get(ctx, FolderKey(participantB))
	if err != nil {
		return Record{}, fmt.Errorf("failed to read folder record: %w", err)
	}
	if !ok || folderID == "" {
		return Record{}, ErrNotFound
	}

	owner, _, err := s.backend.Get(ctx, OwnerKey(participantB))
	if err != nil {
		return Record{}, fmt.Errorf("failed to read owner record: %w", err)
	}

	return Record{FolderID: folderID, OwnerEmail: owner}, nil
}

// Save writes both keys of rec for participantB. The owner key is written
// first, so a backend that fails halfway leaves at worst an orphaned owner.
func (s *Store) Save(ctx context.Context, participantB string, rec Record) error {
	if participantB == "" {
		return fmt.Errorf("participant email is required")
	}
	if !rec.Complete() {
		return fmt.Errorf("record for %s is incomplete: folder and owner are required", participantB)
	}

	err := s.backend.Set(ctx,
		Entry{Key: OwnerKey(participantB), Value: rec.OwnerEmail},
		Entry{Key: FolderKey(participantB), Value: rec.FolderID},
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// SaveOwner rewrites only the owner key. Used to repair a partial record.
func (s *Store) SaveOwner(ctx context.Context, participantB, ownerEmail string) error {
	if participantB == "" || ownerEmail == "" {
		return fmt.Errorf("participant and owner email are required")
	}
	if err := s.backend.Set(ctx, Entry{Key: OwnerKey(participantB), Value: ownerEmail}); err != nil {
		return fmt.Errorf("failed to save owner record: %w", err)
	}
	return nil
}

// Forget deletes both keys for participantB, folder key first.
func (s *Store) Forget(ctx context.Context, participantB string) error {
	if participantB == "" {
		return fmt.Errorf("participant email is required")
	}
	if err := s.backend.Delete(ctx, FolderKey(participantB), OwnerKey(participantB)); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// List returns all participants that have a folder record, sorted by email.
func (s *Store) List(ctx context.Context) ([]Mapping, error) {
	keys, err := s.backend.Keys(ctx, FolderKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	mappings := make([]Mapping, 0, len(keys))
	for _, key := range keys {
		participant := strings.TrimPrefix(key, FolderKeyPrefix)
		rec, err := s.Lookup(ctx, participant)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, Mapping{ParticipantB: participant, Record: rec})
	}
	return mappings, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
