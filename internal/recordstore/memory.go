package recordstore

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore keeps tables as line slices. It behaves like FileStore without
// touching disk and is used by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]string
	locks  tableLocks
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]string)}
}

// Lines returns a copy of the raw lines of t.
func (s *MemoryStore) Lines(t Table) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tables[t.File]...)
}

// SetLines replaces the raw contents of t.
func (s *MemoryStore) SetLines(t Table, lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.File] = append([]string(nil), lines...)
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, t Table, fields []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := EncodeLine(fields)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(t.File)
	defer unlock()

	s.mu.Lock()
	s.tables[t.File] = append(s.tables[t.File], line)
	s.mu.Unlock()
	return nil
}

// FindByKey implements Store.
func (s *MemoryStore) FindByKey(ctx context.Context, t Table, keyField int, keyValue string) (Record, bool, error) {
	var (
		found Record
		ok    bool
	)
	match := KeyEquals(keyField, keyValue)
	err := s.Scan(ctx, t, func(r Record) error {
		if r.Malformed || !match(r) {
			return nil
		}
		found, ok = r, true
		return ErrStopScan
	})
	return found, ok, err
}

// Scan implements Store.
func (s *MemoryStore) Scan(ctx context.Context, t Table, fn func(Record) error) error {
	unlock := s.locks.lock(t.File)
	defer unlock()

	for i, raw := range s.Lines(t) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if isBlank(raw) {
			continue
		}
		if err := fn(DecodeLine(t, raw, i+1)); err != nil {
			if errors.Is(err, ErrStopScan) {
				return nil
			}
			return err
		}
	}
	return nil
}

// RewriteWhere implements Store.
func (s *MemoryStore) RewriteWhere(ctx context.Context, t Table, match MatchFunc, transform TransformFunc) (RewriteResult, error) {
	var res RewriteResult

	unlock := s.locks.lock(t.File)
	defer unlock()

	lines := s.Lines(t)
	out := make([]string, 0, len(lines))
	var transformErrs []error
	for i, raw := range lines {
		if err := ctx.Err(); err != nil {
			return RewriteResult{}, err
		}
		line, keep, err := rewriteLine(t, raw, i+1, match, transform, &res)
		if err != nil {
			transformErrs = append(transformErrs, err)
		}
		if keep {
			out = append(out, line)
		}
	}
	if res.Changed() {
		s.mu.Lock()
		s.tables[t.File] = out
		s.mu.Unlock()
	}
	return res, errors.Join(transformErrs...)
}
