package notes

import "context"

// Repository is the persistence contract for patient notes. Absence is
// reported through Delete's boolean, not through a sentinel error.
type Repository interface {
	// Insert stores a note and assigns its id.
	Insert(ctx context.Context, n *PatientNote) error

	// FindByPatient returns all notes for a patient, newest first.
	FindByPatient(ctx context.Context, patientID int64) ([]*PatientNote, error)

	// SearchText runs a full-text match over note content, newest first.
	SearchText(ctx context.Context, term string) ([]*PatientNote, error)

	// Delete removes a note by id, reporting whether one existed.
	Delete(ctx context.Context, id string) (bool, error)
}
