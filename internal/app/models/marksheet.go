package models

// SubjectScore is one graded subject on a marksheet
type SubjectScore struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
}

// Marksheet holds the subjects of one semester for one student
type Marksheet struct {
	StudentID     int            `json:"studentId"`
	SemesterLabel string         `json:"semesterLabel"`
	Entries       []SubjectScore `json:"entries"`
}

// Average returns the mean score, or 0 for an empty marksheet
func (m Marksheet) Average() float64 {
	if len(m.Entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range m.Entries {
		total += e.Score
	}
	return total / float64(len(m.Entries))
}
