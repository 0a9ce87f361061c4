package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/recordstore"
)

// MarksheetRepository handles the marksheets table
type MarksheetRepository struct {
	store recordstore.Store
}

// NewMarksheetRepository creates a new MarksheetRepository
func NewMarksheetRepository(store recordstore.Store) *MarksheetRepository {
	return &MarksheetRepository{store: store}
}

func encodeMarksheet(m models.Marksheet) []string {
	fields := make([]string, 0, marksheetFirstEntry+3*len(m.Entries))
	fields = append(fields, strconv.Itoa(m.StudentID), m.SemesterLabel)
	for _, e := range m.Entries {
		fields = append(fields, e.Subject, formatTwoDecimals(e.Score), e.Grade)
	}
	return fields
}

// decodeMarksheet reads complete triples and ignores a trailing partial one
func decodeMarksheet(r recordstore.Record) models.Marksheet {
	m := models.Marksheet{
		StudentID:     leadingInt(r.Field(marksheetColStudentID)),
		SemesterLabel: r.Field(marksheetColSemester),
		Entries:       make([]models.SubjectScore, 0),
	}
	for i := marksheetFirstEntry; i+2 < len(r.Fields); i += 3 {
		m.Entries = append(m.Entries, models.SubjectScore{
			Subject: r.Fields[i],
			Score:   parseFloat(r.Fields[i+1]),
			Grade:   r.Fields[i+2],
		})
	}
	return m
}

// Create appends a marksheet row
func (r *MarksheetRepository) Create(ctx context.Context, m models.Marksheet) error {
	if err := r.store.Append(ctx, MarksheetsTable, encodeMarksheet(m)); err != nil {
		logger.Error().Err(err).Int("studentId", m.StudentID).Msg("Error appending marksheet")
		return fmt.Errorf("error creating marksheet: %w", err)
	}
	return nil
}

// ListByStudentID returns every marksheet of a student in table order
func (r *MarksheetRepository) ListByStudentID(ctx context.Context, studentID int) ([]models.Marksheet, error) {
	sheets := make([]models.Marksheet, 0)
	match := idEquals(marksheetColStudentID, studentID)
	err := r.store.Scan(ctx, MarksheetsTable, func(rec recordstore.Record) error {
		if !rec.Malformed && match(rec) {
			sheets = append(sheets, decodeMarksheet(rec))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading marksheets: %w", err)
	}
	return sheets, nil
}

// DeleteByStudentID removes every marksheet of a student and returns how many went
func (r *MarksheetRepository) DeleteByStudentID(ctx context.Context, studentID int) (int, error) {
	res, err := r.store.RewriteWhere(ctx, MarksheetsTable, idEquals(marksheetColStudentID, studentID),
		func(recordstore.Record) (recordstore.Replacement, error) {
			return recordstore.Drop(), nil
		})
	if err != nil {
		return res.Deleted, fmt.Errorf("error deleting marksheets: %w", err)
	}
	return res.Deleted, nil
}
