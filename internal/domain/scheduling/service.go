package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Service orchestrates appointment booking: field validation, the advisory
// slot conflict check, and persistence. The conflict check is advisory only;
// the store-level unique index is what makes booking safe under concurrent
// creates for the same slot.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates the appointment, rejects an occupied slot, and persists.
// On success the appointment carries its generated id and creation timestamp.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	taken, err := s.repo.ExistsDoctorSlot(ctx, a.DoctorID, a.AppointmentDate)
	if err != nil {
		s.log.Error().Err(err).Int64("doctor_id", a.DoctorID).
			Time("appointment_date", a.AppointmentDate).Msg("slot check failed")
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if !errors.Is(err, ErrSlotTaken) {
			s.log.Error().Err(err).Int64("doctor_id", a.DoctorID).
				Int64("patient_id", a.PatientID).Msg("create appointment failed")
		}
		return err
	}
	return nil
}

// Update re-validates all fields and overwrites the row. It deliberately does
// not repeat the advisory conflict check; an edit that lands on an occupied
// slot is caught by the unique index and reported as ErrSlotTaken.
func (s *Service) Update(ctx context.Context, a *Appointment) (bool, error) {
	if a.ID <= 0 {
		return false, &ValidationError{Field: "id", Reason: "required for update"}
	}
	if err := a.Validate(); err != nil {
		return false, err
	}
	found, err := s.repo.Update(ctx, a)
	if err != nil && !errors.Is(err, ErrSlotTaken) {
		s.log.Error().Err(err).Int64("appointment_id", a.ID).Msg("update appointment failed")
	}
	return found, err
}

// Remove hard-deletes the appointment. Clinical notes referencing the same
// patient live in a separate store and are not cascaded.
func (s *Service) Remove(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, &ValidationError{Field: "id", Reason: "a valid id is required"}
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("appointment_id", id).Msg("delete appointment failed")
	}
	return found, err
}

// UpdateStatus overwrites the status without checking transition legality:
// the source system allows any overwrite among the known statuses, and
// callers depend on re-opening cancelled slots this way.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	if id <= 0 {
		return false, &ValidationError{Field: "id", Reason: "a valid id is required"}
	}
	if status == "" {
		return false, &ValidationError{Field: "status", Reason: "required"}
	}
	if !validStatuses[status] {
		return false, &ValidationError{Field: "status", Reason: "unknown status " + status}
	}
	found, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil && !errors.Is(err, ErrSlotTaken) {
		s.log.Error().Err(err).Int64("appointment_id", id).Str("status", status).
			Msg("update appointment status failed")
	}
	return found, err
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "id", Reason: "a valid id is required"}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) FindByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	return s.repo.FindByDate(ctx, day)
}

func (s *Service) FindByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error) {
	return s.repo.FindByDoctor(ctx, doctorID, from, to)
}

func (s *Service) FindByPatient(ctx context.Context, patientID int64, from, to time.Time) ([]*Appointment, error) {
	return s.repo.FindByPatient(ctx, patientID, from, to)
}

// IsSlotTaken reports whether a non-cancelled appointment occupies the exact
// (doctor, timestamp) pair. Equality is exact; bookings one minute apart do
// not conflict.
func (s *Service) IsSlotTaken(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
	return s.repo.ExistsDoctorSlot(ctx, doctorID, at)
}
