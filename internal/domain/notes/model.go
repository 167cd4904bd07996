package notes

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultNoteType is applied when a note arrives without a type.
const DefaultNoteType = "General"

// CreatedAtLayout is the wall-clock layout notes are stamped with. The
// document store keeps it as a plain string so lexicographic order matches
// chronological order.
const CreatedAtLayout = "2006-01-02T15:04:05"

// PatientNote is a free-form clinical note attached to a patient. The patient
// id is a soft reference into the relational side and is never verified here.
type PatientNote struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	PatientID int64         `json:"patient_id" bson:"patientId"`
	DoctorID  int64         `json:"doctor_id,omitempty" bson:"doctorId,omitempty"`
	NoteType  string        `json:"note_type" bson:"noteType"`
	Content   string        `json:"content" bson:"content"`
	Tags      []string      `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedAt string        `json:"created_at" bson:"createdAt"`
}

// ValidationError reports a note rejected before reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks required fields and fills defaults in place.
func (n *PatientNote) Validate() error {
	if n.PatientID <= 0 {
		return &ValidationError{Field: "patient_id", Reason: "must be positive"}
	}
	if strings.TrimSpace(n.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be blank"}
	}
	if strings.TrimSpace(n.NoteType) == "" {
		n.NoteType = DefaultNoteType
	}
	if n.CreatedAt == "" {
		n.CreatedAt = time.Now().Format(CreatedAtLayout)
	}
	return nil
}
