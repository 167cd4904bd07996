package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Appointment statuses. SCHEDULED is the initial state; COMPLETED and
// CANCELLED are terminal. Slot uniqueness only binds non-cancelled rows.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// MaxReasonLen matches the reason column width.
const MaxReasonLen = 255

// Appointment maps to the appointments table. AppointmentDate is a wall-clock
// timestamp without timezone, minute precision.
type Appointment struct {
	ID              int64     `db:"appointment_id" json:"id"`
	PatientID       int64     `db:"patient_id" json:"patient_id"`
	DoctorID        int64     `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Status          string    `db:"status" json:"status"`
	Reason          string    `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ValidationError reports a rejected field before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks required fields and normalizes the status default. The
// not-in-the-past rule compares calendar dates only: an appointment earlier
// today than the current time is still accepted.
func (a *Appointment) Validate() error {
	if a.PatientID <= 0 {
		return &ValidationError{Field: "patient_id", Reason: "a valid patient is required"}
	}
	if a.DoctorID <= 0 {
		return &ValidationError{Field: "doctor_id", Reason: "a valid doctor is required"}
	}
	if a.AppointmentDate.IsZero() {
		return &ValidationError{Field: "appointment_date", Reason: "date/time is required"}
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", a.Status)}
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.AppointmentDate.Location())
	if a.AppointmentDate.Before(today) {
		return &ValidationError{Field: "appointment_date", Reason: "cannot be in the past"}
	}

	if len(a.Reason) > MaxReasonLen {
		return &ValidationError{Field: "reason", Reason: fmt.Sprintf("must be at most %d characters", MaxReasonLen)}
	}
	return nil
}

// CombineDateTime builds an appointment timestamp from a calendar date and an
// HH:mm time-of-day string, the two parts callers typically collect
// separately.
func CombineDateTime(day time.Time, hhmm string) (time.Time, error) {
	if day.IsZero() {
		return time.Time{}, &ValidationError{Field: "appointment_date", Reason: "date is required"}
	}
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return time.Time{}, &ValidationError{Field: "appointment_time", Reason: "time is required (HH:mm)"}
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "appointment_time", Reason: "malformed time, want HH:mm"}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
