package scheduling

import (
	"context"
	"errors"
	"time"
)

// ErrSlotTaken is returned when a doctor already has a non-cancelled
// appointment at the exact requested timestamp. The appointments table
// enforces this with a partial unique index, so the error also surfaces from
// concurrent creates that pass the advisory pre-check.
var ErrSlotTaken = errors.New("doctor already has an appointment at this time")

// ErrNotFound is returned by reads for ids that do not exist. Writes report
// a missing id through their boolean result instead.
var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	// Create persists a new appointment and fills in the generated id and
	// server-assigned creation timestamp.
	Create(ctx context.Context, a *Appointment) error
	// Update overwrites all mutable columns; false when the id is unknown.
	Update(ctx context.Context, a *Appointment) (bool, error)
	// UpdateStatus overwrites only the status column; false when the id is
	// unknown.
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
	// Delete hard-deletes the row; false when the id is unknown.
	Delete(ctx context.Context, id int64) (bool, error)

	GetByID(ctx context.Context, id int64) (*Appointment, error)
	// List returns all appointments most recent first, with the total count.
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	// FindByDate returns the appointments falling on the given calendar day,
	// earliest first.
	FindByDate(ctx context.Context, day time.Time) ([]*Appointment, error)
	// FindByDoctor returns a doctor's appointments within the inclusive
	// [from, to] day range, earliest first.
	FindByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error)
	// FindByPatient returns a patient's appointments within the inclusive
	// [from, to] day range, earliest first.
	FindByPatient(ctx context.Context, patientID int64, from, to time.Time) ([]*Appointment, error)

	// ExistsDoctorSlot reports whether a non-cancelled appointment occupies
	// the exact (doctor, timestamp) slot.
	ExistsDoctorSlot(ctx context.Context, doctorID int64, at time.Time) (bool, error)
}
