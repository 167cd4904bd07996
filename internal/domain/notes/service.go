package notes

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Service is the clinical notes facade: validation and defaults in front of
// the document store.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// AddNote validates the note, fills defaults, and persists it. On success the
// note carries its assigned id and creation timestamp.
func (s *Service) AddNote(ctx context.Context, n *PatientNote) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		s.log.Error().Err(err).Int64("patient_id", n.PatientID).Msg("insert note failed")
		return err
	}
	return nil
}

// GetNotesForPatient returns a patient's notes, newest first.
func (s *Service) GetNotesForPatient(ctx context.Context, patientID int64) ([]*PatientNote, error) {
	if patientID <= 0 {
		return nil, &ValidationError{Field: "patient_id", Reason: "must be positive"}
	}
	return s.repo.FindByPatient(ctx, patientID)
}

// Search runs a full-text match over note content. A blank term matches
// nothing rather than everything.
func (s *Service) Search(ctx context.Context, term string) ([]*PatientNote, error) {
	if strings.TrimSpace(term) == "" {
		return []*PatientNote{}, nil
	}
	return s.repo.SearchText(ctx, term)
}

// Delete removes a note by id, reporting whether one existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, &ValidationError{Field: "id", Reason: "required"}
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return removed, nil
}
