package models

import (
	"errors"
	"testing"
)

func TestAdmissionStatus(t *testing.T) {
	if Pending().IsApproved() || Pending().String() != StatusPending {
		t.Fatal("zero status must be pending")
	}

	if _, err := Approved(0); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("Approved(0) err = %v", err)
	}

	s, err := Approved(120)
	if err != nil {
		t.Fatalf("Approved: %v", err)
	}
	if !s.IsApproved() || s.StudentID() != 120 || s.String() != StatusApproved {
		t.Fatalf("status = %+v", s)
	}
}

func TestParseAdmissionStatus(t *testing.T) {
	cases := []struct {
		label    string
		id       int
		approved bool
	}{
		{"approved", 120, true},
		{"approved", 0, false},
		{"pending", 120, false},
		{"", 0, false},
		{"APPROVED", 5, false},
	}
	for _, c := range cases {
		if got := ParseAdmissionStatus(c.label, c.id).IsApproved(); got != c.approved {
			t.Errorf("ParseAdmissionStatus(%q, %d) approved = %v", c.label, c.id, got)
		}
	}
}

func TestMarksheetAverage(t *testing.T) {
	m := Marksheet{Entries: []SubjectScore{{Score: 3}, {Score: 4}}}
	if m.Average() != 3.5 {
		t.Fatalf("average = %v", m.Average())
	}
	if (Marksheet{}).Average() != 0 {
		t.Fatal("empty marksheet average must be 0")
	}
}
