package notes

import (
	"errors"
	"testing"
	"time"
)

func TestValidate_Defaults(t *testing.T) {
	n := &PatientNote{PatientID: 1, Content: "follow-up in two weeks"}
	if err := n.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.NoteType != DefaultNoteType {
		t.Errorf("expected default note type %q, got %q", DefaultNoteType, n.NoteType)
	}
	for _, noteType := range []string{"   ", "\t\n"} {
		n := &PatientNote{PatientID: 1, Content: "follow-up", NoteType: noteType}
		if err := n.Validate(); err != nil {
			t.Fatalf("noteType %q: unexpected error: %v", noteType, err)
		}
		if n.NoteType != DefaultNoteType {
			t.Errorf("noteType %q: expected default %q, got %q", noteType, DefaultNoteType, n.NoteType)
		}
	}
	if n.CreatedAt == "" {
		t.Error("expected createdAt to be defaulted")
	}
	if _, err := time.Parse(CreatedAtLayout, n.CreatedAt); err != nil {
		t.Errorf("createdAt not in expected layout: %v", err)
	}
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	n := &PatientNote{
		PatientID: 1,
		Content:   "bp stable",
		NoteType:  "Vitals",
		CreatedAt: "2025-01-15T09:30:00",
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.NoteType != "Vitals" {
		t.Errorf("explicit note type overwritten: %q", n.NoteType)
	}
	padded := &PatientNote{PatientID: 1, Content: "bp stable", NoteType: " Vitals "}
	if err := padded.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if padded.NoteType != " Vitals " {
		t.Errorf("non-blank note type overwritten: %q", padded.NoteType)
	}
	if n.CreatedAt != "2025-01-15T09:30:00" {
		t.Errorf("explicit createdAt overwritten: %q", n.CreatedAt)
	}
}

func TestValidate_PatientIDRequired(t *testing.T) {
	n := &PatientNote{Content: "something"}
	err := n.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "patient_id" {
		t.Errorf("expected patient_id field, got %q", ve.Field)
	}
}

func TestValidate_BlankContentRejected(t *testing.T) {
	for _, content := range []string{"", "   ", "\t\n"} {
		n := &PatientNote{PatientID: 1, Content: content}
		err := n.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("content %q: expected ValidationError, got %v", content, err)
		}
		if ve.Field != "content" {
			t.Errorf("content %q: expected content field, got %q", content, ve.Field)
		}
	}
}

func TestCreatedAtLayout_SortsLexicographically(t *testing.T) {
	earlier := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Format(CreatedAtLayout)
	later := time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC).Format(CreatedAtLayout)
	if !(earlier < later) {
		t.Errorf("layout does not sort chronologically: %q vs %q", earlier, later)
	}
}
