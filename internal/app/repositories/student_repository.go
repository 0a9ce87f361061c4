package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/recordstore"
)

// StudentRepository handles the students table
type StudentRepository struct {
	store recordstore.Store
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(store recordstore.Store) *StudentRepository {
	return &StudentRepository{store: store}
}

func encodeStudent(s models.Student) []string {
	return []string{
		strconv.Itoa(s.ID),
		s.Name,
		s.Department,
		strconv.Itoa(s.Semester),
		formatTwoDecimals(s.CGPA),
	}
}

func decodeStudent(r recordstore.Record) models.Student {
	return models.Student{
		ID:         leadingInt(r.Field(studentColID)),
		Name:       r.Field(studentColName),
		Department: r.Field(studentColDepartment),
		Semester:   leadingInt(r.Field(studentColSemester)),
		CGPA:       parseFloat(r.Field(studentColCGPA)),
	}
}

// Create appends a student. The id must not be in use.
func (r *StudentRepository) Create(ctx context.Context, s models.Student) error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: student id must be positive", apperrors.ErrValidationFailed)
	}
	exists, err := r.Exists(ctx, s.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists,
			fmt.Sprintf("student %d already exists", s.ID))
	}

	if err := r.store.Append(ctx, StudentsTable, encodeStudent(s)); err != nil {
		logger.Error().Err(err).Int("studentId", s.ID).Msg("Error appending student")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// GetByID returns the first student with id
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*models.Student, error) {
	var (
		student models.Student
		found   bool
	)
	match := idEquals(studentColID, id)
	err := r.store.Scan(ctx, StudentsTable, func(rec recordstore.Record) error {
		if rec.Malformed || !match(rec) {
			return nil
		}
		student, found = decodeStudent(rec), true
		return recordstore.ErrStopScan
	})
	if err != nil {
		return nil, fmt.Errorf("error reading students: %w", err)
	}
	if !found {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("student %d not found", id))
	}
	return &student, nil
}

// Exists reports whether a student with id is stored
func (r *StudentRepository) Exists(ctx context.Context, id int) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return false, nil
	}
	return false, err
}

// List returns every well-formed student in table order
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	err := r.store.Scan(ctx, StudentsTable, func(rec recordstore.Record) error {
		if rec.Malformed {
			logger.Warn().Int("line", rec.LineNo).Str("table", StudentsTable.Name).Msg("Skipping malformed row")
			return nil
		}
		students = append(students, decodeStudent(rec))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// Update rewrites the student with s.ID
func (r *StudentRepository) Update(ctx context.Context, s models.Student) error {
	res, err := r.store.RewriteWhere(ctx, StudentsTable, idEquals(studentColID, s.ID),
		func(recordstore.Record) (recordstore.Replacement, error) {
			return recordstore.Replace(encodeStudent(s)...), nil
		})
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}
	if res.Matched == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("student %d not found", s.ID))
	}
	return nil
}

// Delete removes every row holding id
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	res, err := r.store.RewriteWhere(ctx, StudentsTable, idEquals(studentColID, id),
		func(recordstore.Record) (recordstore.Replacement, error) {
			return recordstore.Drop(), nil
		})
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	if res.Deleted == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("student %d not found", id))
	}
	return nil
}
