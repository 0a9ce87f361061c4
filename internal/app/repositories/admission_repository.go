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

// AdmissionRepository handles the admission requests table
type AdmissionRepository struct {
	store recordstore.Store
}

// NewAdmissionRepository creates a new AdmissionRepository
func NewAdmissionRepository(store recordstore.Store) *AdmissionRepository {
	return &AdmissionRepository{store: store}
}

func encodeAdmission(a models.AdmissionRequest) []string {
	return []string{
		strconv.Itoa(a.TempID),
		a.Name,
		a.Department,
		strconv.Itoa(a.Semester),
		a.Email,
		a.Username,
		a.Password,
		a.Status.String(),
		strconv.Itoa(a.Status.StudentID()),
	}
}

// decodeAdmission reads rows of seven to nine fields. A missing status reads
// as pending.
func decodeAdmission(r recordstore.Record) models.AdmissionRequest {
	return models.AdmissionRequest{
		TempID:     leadingInt(r.Field(admissionColTempID)),
		Name:       r.Field(admissionColName),
		Department: r.Field(admissionColDepartment),
		Semester:   leadingInt(r.Field(admissionColSemester)),
		Email:      r.Field(admissionColEmail),
		Username:   r.Field(admissionColUsername),
		Password:   r.Field(admissionColPassword),
		Status: models.ParseAdmissionStatus(
			r.Field(admissionColStatus),
			leadingInt(r.Field(admissionColStudentID)),
		),
	}
}

// Create appends a request as given
func (r *AdmissionRepository) Create(ctx context.Context, a models.AdmissionRequest) error {
	if err := r.store.Append(ctx, AdmissionsTable, encodeAdmission(a)); err != nil {
		logger.Error().Err(err).Int("tempId", a.TempID).Msg("Error appending admission request")
		return fmt.Errorf("error creating admission request: %w", err)
	}
	return nil
}

// GetByTempID returns the first request with tempID
func (r *AdmissionRepository) GetByTempID(ctx context.Context, tempID int) (*models.AdmissionRequest, error) {
	var (
		req   models.AdmissionRequest
		found bool
	)
	match := idEquals(admissionColTempID, tempID)
	err := r.store.Scan(ctx, AdmissionsTable, func(rec recordstore.Record) error {
		if rec.Malformed || !match(rec) {
			return nil
		}
		req, found = decodeAdmission(rec), true
		return recordstore.ErrStopScan
	})
	if err != nil {
		return nil, fmt.Errorf("error reading admission requests: %w", err)
	}
	if !found {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("admission request %d not found", tempID))
	}
	return &req, nil
}

// List returns well-formed requests in table order
func (r *AdmissionRepository) List(ctx context.Context) ([]models.AdmissionRequest, error) {
	reqs := make([]models.AdmissionRequest, 0)
	err := r.store.Scan(ctx, AdmissionsTable, func(rec recordstore.Record) error {
		if rec.Malformed {
			logger.Warn().Int("line", rec.LineNo).Str("table", AdmissionsTable.Name).Msg("Skipping malformed row")
			return nil
		}
		reqs = append(reqs, decodeAdmission(rec))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing admission requests: %w", err)
	}
	return reqs, nil
}

// MarkApproved moves the pending request tempID to approved with studentID.
// Rows already approved are left alone.
func (r *AdmissionRepository) MarkApproved(ctx context.Context, tempID, studentID int) error {
	status, err := models.Approved(studentID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}

	match := idEquals(admissionColTempID, tempID)
	res, err := r.store.RewriteWhere(ctx, AdmissionsTable,
		func(rec recordstore.Record) bool {
			return match(rec) && !decodeAdmission(rec).Status.IsApproved()
		},
		func(rec recordstore.Record) (recordstore.Replacement, error) {
			req := decodeAdmission(rec)
			req.Status = status
			return recordstore.Replace(encodeAdmission(req)...), nil
		})
	if err != nil {
		return fmt.Errorf("error approving admission request: %w", err)
	}
	if res.Replaced == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("pending admission request %d not found", tempID))
	}
	return nil
}
