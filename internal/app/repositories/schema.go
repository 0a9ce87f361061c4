package repositories

import (
	"strconv"
	"strings"

	"github.com/yigit/sims/internal/recordstore"
)

// Persisted tables
var (
	StudentsTable = recordstore.Table{
		Name:      "students",
		File:      "students.txt",
		Fields:    []string{"id", "name", "department", "semester", "cgpa"},
		MinFields: 5,
		IDFloor:   120,
	}

	LoginsTable = recordstore.Table{
		Name:      "logins",
		File:      "logins.txt",
		Fields:    []string{"username", "password", "role", "studentId"},
		MinFields: 4,
	}

	// Rows written before status tracking carry only the first seven fields
	// and read as pending.
	AdmissionsTable = recordstore.Table{
		Name:      "admissions",
		File:      "admission_requests.txt",
		Fields:    []string{"tempId", "name", "department", "semester", "email", "username", "password", "status", "studentId"},
		MinFields: 7,
		IDFloor:   1001,
	}

	// Marksheet rows are studentId, semesterLabel, then (subject, score, grade) triples.
	MarksheetsTable = recordstore.Table{
		Name:      "marksheets",
		File:      "marksheets.txt",
		Fields:    []string{"studentId", "semesterLabel"},
		MinFields: 2,
	}
)

// Column positions
const (
	studentColID         = 0
	studentColName       = 1
	studentColDepartment = 2
	studentColSemester   = 3
	studentColCGPA       = 4

	loginColUsername  = 0
	loginColPassword  = 1
	loginColRole      = 2
	loginColStudentID = 3

	admissionColTempID     = 0
	admissionColName       = 1
	admissionColDepartment = 2
	admissionColSemester   = 3
	admissionColEmail      = 4
	admissionColUsername   = 5
	admissionColPassword   = 6
	admissionColStatus     = 7
	admissionColStudentID  = 8

	marksheetColStudentID = 0
	marksheetColSemester  = 1
	marksheetFirstEntry   = 2
)

// leadingInt parses the integer prefix of s the way hand-edited tables are
// read: surrounding spaces are ignored and trailing garbage is dropped. A
// field without digits counts as 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// parseFloat reads a numeric field, treating garbage as 0
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func formatTwoDecimals(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// idEquals matches records whose field holds id. Zero and negative ids never match.
func idEquals(field, id int) recordstore.MatchFunc {
	return func(r recordstore.Record) bool {
		return id > 0 && leadingInt(r.Field(field)) == id
	}
}
