package repositories

import (
	"context"
	"fmt"
	"math"

	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/recordstore"
)

// IDAllocator derives the next id of a table from its current maximum.
// It reserves nothing: two callers racing on the same table can receive the
// same id, so allocation and the following append belong in one caller.
type IDAllocator struct {
	store recordstore.Store
}

// NewIDAllocator creates an allocator over store
func NewIDAllocator(store recordstore.Store) *IDAllocator {
	return &IDAllocator{store: store}
}

// NextID returns max(leading id)+1 over every line of t, or t.IDFloor when
// that is larger. Unparsable leading fields count as 0.
func (a *IDAllocator) NextID(ctx context.Context, t recordstore.Table) (int, error) {
	highest := t.IDFloor - 1
	err := a.store.Scan(ctx, t, func(r recordstore.Record) error {
		if id := leadingInt(r.Field(0)); id > highest {
			highest = id
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", t.Name, err)
	}
	if highest == math.MaxInt {
		return 0, fmt.Errorf("%w: %s holds the largest representable id, no next id exists", apperrors.ErrIOFailure, t.Name)
	}
	return highest + 1, nil
}

// UsernameRegistry answers whether a username is reserved. A username is
// reserved once it appears in the logins table or in any admission request,
// whatever that request's status. Reservations are never released.
type UsernameRegistry struct {
	store recordstore.Store
}

// NewUsernameRegistry creates a registry over store
func NewUsernameRegistry(store recordstore.Store) *UsernameRegistry {
	return &UsernameRegistry{store: store}
}

// IsUsernameTaken checks logins and every admission request
func (r *UsernameRegistry) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	taken, err := r.ExistsInLogins(ctx, username)
	if err != nil || taken {
		return taken, err
	}
	return r.existsIn(ctx, AdmissionsTable, admissionColUsername, username)
}

// ExistsInLogins checks the logins table only
func (r *UsernameRegistry) ExistsInLogins(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	return r.existsIn(ctx, LoginsTable, loginColUsername, username)
}

// PendingAdmission reports whether the first admission request using
// username is still pending.
func (r *UsernameRegistry) PendingAdmission(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	var pending bool
	err := r.store.Scan(ctx, AdmissionsTable, func(rec recordstore.Record) error {
		if rec.Malformed || rec.Field(admissionColUsername) != username {
			return nil
		}
		pending = !decodeAdmission(rec).Status.IsApproved()
		return recordstore.ErrStopScan
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up admission for %q: %w", username, err)
	}
	return pending, nil
}

// existsIn scans malformed lines too: a partial row still holds its username.
func (r *UsernameRegistry) existsIn(ctx context.Context, t recordstore.Table, col int, username string) (bool, error) {
	var found bool
	err := r.store.Scan(ctx, t, func(rec recordstore.Record) error {
		if rec.Field(col) == username {
			found = true
			return recordstore.ErrStopScan
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check username in %s: %w", t.Name, err)
	}
	return found, nil
}
