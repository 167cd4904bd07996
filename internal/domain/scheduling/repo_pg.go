package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// slotIndexName is the partial unique index on (doctor_id, appointment_date)
// excluding cancelled rows. Violations of it mean the slot is taken.
const slotIndexName = "uq_appointments_doctor_slot"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `appointment_id, patient_id, doctor_id, appointment_date, status, reason, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate,
		&a.Status, &a.Reason, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, status, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING appointment_id, created_at`,
		a.PatientID, a.DoctorID, a.AppointmentDate, a.Status, a.Reason).
		Scan(&a.ID, &a.CreatedAt)
	if isSlotViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			patient_id = $2, doctor_id = $3, appointment_date = $4, status = $5, reason = $6
		WHERE appointment_id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.Status, a.Reason)
	if isSlotViolation(err) {
		return false, ErrSlotTaken
	}
	if err != nil {
		return false, fmt.Errorf("update appointment %d: %w", a.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $2 WHERE appointment_id = $1`, id, status)
	if isSlotViolation(err) {
		// Re-activating a cancelled appointment whose slot has been rebooked.
		return false, ErrSlotTaken
	}
	if err != nil {
		return false, fmt.Errorf("update appointment %d status: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE appointment_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE appointment_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	return a, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		ORDER BY appointment_date DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) FindByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE appointment_date >= $1::date
		  AND appointment_date < ($1::date + INTERVAL '1 day')
		ORDER BY appointment_date ASC`, day)
	if err != nil {
		return nil, fmt.Errorf("find appointments by date: %w", err)
	}
	return collectAppointments(rows)
}

func (r *repoPG) FindByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE doctor_id = $1
		  AND appointment_date >= $2::date
		  AND appointment_date < ($3::date + INTERVAL '1 day')
		ORDER BY appointment_date ASC`, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find appointments by doctor %d: %w", doctorID, err)
	}
	return collectAppointments(rows)
}

func (r *repoPG) FindByPatient(ctx context.Context, patientID int64, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE patient_id = $1
		  AND appointment_date >= $2::date
		  AND appointment_date < ($3::date + INTERVAL '1 day')
		ORDER BY appointment_date ASC`, patientID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find appointments by patient %d: %w", patientID, err)
	}
	return collectAppointments(rows)
}

func (r *repoPG) ExistsDoctorSlot(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND appointment_date = $2
			  AND status <> $3
		)`, doctorID, at, StatusCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check doctor slot: %w", err)
	}
	return exists, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return items, nil
}

func isSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == slotIndexName
}
