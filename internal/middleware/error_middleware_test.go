package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func respond(t *testing.T, err error) (int, dto.ErrorDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, err)

	var body struct {
		Error dto.ErrorDetail `json:"error"`
	}
	if e := json.Unmarshal(rec.Body.Bytes(), &body); e != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), e)
	}
	return rec.Code, body.Error
}

func TestHandleAPIErrorApprovalWrapsCause(t *testing.T) {
	causes := map[string]error{
		"login step":         apperrors.NewCustomError(apperrors.ErrUsernameTaken, `username "gina" already has a login`),
		"mark approved step": apperrors.NewResourceNotFoundError("pending admission request 1001 not found"),
	}
	for name, cause := range causes {
		t.Run(name, func(t *testing.T) {
			err := fmt.Errorf("%w: %w", apperrors.ErrApprovalFailed, cause)

			status, detail := respond(t, err)
			if status != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", status)
			}
			if detail.Code != dto.ErrorCodeApprovalFailed {
				t.Fatalf("code = %q, want %q", detail.Code, dto.ErrorCodeApprovalFailed)
			}
			if detail.Message != "Approval failed and was rolled back" {
				t.Fatalf("message = %q", detail.Message)
			}
		})
	}
}

func TestHandleAPIErrorPartialCascadeWrapsStorage(t *testing.T) {
	cascade := apperrors.NewCustomError(apperrors.ErrPartialCascadeFailure, "marksheets for student 120 remain")
	err := fmt.Errorf("deleting student: %w", fmt.Errorf("%w: %w", cascade, apperrors.ErrIOFailure))

	status, detail := respond(t, err)
	if status != http.StatusInternalServerError || detail.Code != dto.ErrorCodePartialCascadeFailure {
		t.Fatalf("status %d code %q", status, detail.Code)
	}
	if detail.Message != "marksheets for student 120 remain" {
		t.Fatalf("message = %q", detail.Message)
	}
}

func TestHandleAPIErrorPlainConflict(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrUsernameTaken, `username "gina" is taken`)

	status, detail := respond(t, err)
	if status != http.StatusConflict || detail.Code != dto.ErrorCodeUsernameTaken {
		t.Fatalf("status %d code %q", status, detail.Code)
	}
	if detail.Message != `username "gina" is taken` {
		t.Fatalf("message = %q", detail.Message)
	}
}
