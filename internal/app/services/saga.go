package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// sagaStep is one write of a multi-table operation and the write that undoes it.
// undo may be nil for the last step or for steps with nothing to reverse.
type sagaStep struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// SagaError reports the step that failed and, when undoing the earlier steps
// also failed, what could not be undone.
type SagaError struct {
	Step            string
	Err             error
	CompensationErr error
}

func (e *SagaError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("step %q failed: %v; rollback incomplete: %v", e.Step, e.Err, e.CompensationErr)
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

// Unwrap exposes both the step error and the compensation error to errors.Is.
func (e *SagaError) Unwrap() []error {
	if e.CompensationErr == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.CompensationErr}
}

// RolledBack reports whether every completed step was undone.
func (e *SagaError) RolledBack() bool {
	return e.CompensationErr == nil
}

// runSaga runs steps in order. When one fails, the steps already done are
// undone in reverse order. Undo runs even if ctx has been cancelled.
func runSaga(ctx context.Context, log zerolog.Logger, steps []sagaStep) error {
	for i, step := range steps {
		err := step.do(ctx)
		if err == nil {
			continue
		}

		log.Warn().Err(err).Str("step", step.name).Msg("Saga step failed, compensating")
		undoCtx := context.WithoutCancel(ctx)
		var undoErrs []error
		for j := i - 1; j >= 0; j-- {
			if steps[j].undo == nil {
				continue
			}
			if uErr := steps[j].undo(undoCtx); uErr != nil {
				log.Error().Err(uErr).Str("step", steps[j].name).Msg("Compensation failed")
				undoErrs = append(undoErrs, fmt.Errorf("undo %s: %w", steps[j].name, uErr))
			}
		}
		return &SagaError{Step: step.name, Err: err, CompensationErr: errors.Join(undoErrs...)}
	}
	return nil
}
