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

// LoginRepository handles the logins table
type LoginRepository struct {
	store recordstore.Store
}

// NewLoginRepository creates a new LoginRepository
func NewLoginRepository(store recordstore.Store) *LoginRepository {
	return &LoginRepository{store: store}
}

func encodeLogin(l models.Login) []string {
	return []string{l.Username, l.Password, string(l.Role), strconv.Itoa(l.StudentID)}
}

func decodeLogin(r recordstore.Record) models.Login {
	return models.Login{
		Username:  r.Field(loginColUsername),
		Password:  r.Field(loginColPassword),
		Role:      models.Role(r.Field(loginColRole)),
		StudentID: leadingInt(r.Field(loginColStudentID)),
	}
}

// Create appends a login. Usernames are unique within this table; the
// password must already be hashed.
func (r *LoginRepository) Create(ctx context.Context, l models.Login) error {
	if !l.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, l.Role)
	}

	_, found, err := r.store.FindByKey(ctx, LoginsTable, loginColUsername, l.Username)
	if err != nil {
		return fmt.Errorf("error checking login: %w", err)
	}
	if found {
		return apperrors.NewCustomError(apperrors.ErrUsernameTaken,
			fmt.Sprintf("username %q already has a login", l.Username))
	}

	if err := r.store.Append(ctx, LoginsTable, encodeLogin(l)); err != nil {
		logger.Error().Err(err).Str("username", l.Username).Msg("Error appending login")
		return fmt.Errorf("error creating login: %w", err)
	}
	return nil
}

// Authenticate returns the first login whose username matches and whose
// stored password is accepted by verify.
func (r *LoginRepository) Authenticate(ctx context.Context, username string, verify func(stored string) bool) (*models.Login, bool, error) {
	var (
		login models.Login
		found bool
	)
	err := r.store.Scan(ctx, LoginsTable, func(rec recordstore.Record) error {
		if rec.Malformed || rec.Field(loginColUsername) != username {
			return nil
		}
		if !verify(rec.Field(loginColPassword)) {
			return nil
		}
		login, found = decodeLogin(rec), true
		return recordstore.ErrStopScan
	})
	if err != nil {
		return nil, false, fmt.Errorf("error reading logins: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &login, true, nil
}

// HasRole reports whether any login has role
func (r *LoginRepository) HasRole(ctx context.Context, role models.Role) (bool, error) {
	var found bool
	err := r.store.Scan(ctx, LoginsTable, func(rec recordstore.Record) error {
		if !rec.Malformed && models.Role(rec.Field(loginColRole)) == role {
			found = true
			return recordstore.ErrStopScan
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("error reading logins: %w", err)
	}
	return found, nil
}

// ListByStudentID returns the logins linked to a student
func (r *LoginRepository) ListByStudentID(ctx context.Context, studentID int) ([]models.Login, error) {
	logins := make([]models.Login, 0)
	match := idEquals(loginColStudentID, studentID)
	err := r.store.Scan(ctx, LoginsTable, func(rec recordstore.Record) error {
		if !rec.Malformed && match(rec) {
			logins = append(logins, decodeLogin(rec))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading logins: %w", err)
	}
	return logins, nil
}

// DeleteByStudentID removes every login linked to studentID and returns how many went
func (r *LoginRepository) DeleteByStudentID(ctx context.Context, studentID int) (int, error) {
	res, err := r.store.RewriteWhere(ctx, LoginsTable, idEquals(loginColStudentID, studentID),
		func(recordstore.Record) (recordstore.Replacement, error) {
			return recordstore.Drop(), nil
		})
	if err != nil {
		return res.Deleted, fmt.Errorf("error deleting logins: %w", err)
	}
	return res.Deleted, nil
}

// DeleteByUsername removes the login rows for username
func (r *LoginRepository) DeleteByUsername(ctx context.Context, username string) (int, error) {
	res, err := r.store.RewriteWhere(ctx, LoginsTable, recordstore.KeyEquals(loginColUsername, username),
		func(recordstore.Record) (recordstore.Replacement, error) {
			return recordstore.Drop(), nil
		})
	if err != nil {
		return res.Deleted, fmt.Errorf("error deleting login: %w", err)
	}
	return res.Deleted, nil
}
