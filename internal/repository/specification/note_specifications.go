package specification

import "github.com/google/uuid"

// OwnedNote is the compound (note id, owner id) filter every note lookup,
// mutation and delete goes through.
func OwnedNote(noteID, userID uuid.UUID) []Specification {
	return []Specification{
		ByID{ID: noteID},
		UserOwnedBy{UserID: userID},
	}
}
