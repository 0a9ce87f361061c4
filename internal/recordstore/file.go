package recordstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/sims/internal/pkg/logger"
)

// tableLocks hands out one mutex per table.
type tableLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *tableLocks) lock(name string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// FileStore keeps each table as a text file inside a data directory.
type FileStore struct {
	dir   string
	locks tableLocks
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioFailure("create data dir", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file backing t.
func (s *FileStore) Path(t Table) string {
	return filepath.Join(s.dir, t.File)
}

// Append implements Store.
func (s *FileStore) Append(ctx context.Context, t Table, fields []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := EncodeLine(fields)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(t.File)
	defer unlock()

	path := s.Path(t)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return ioFailure("open", path, err)
	}
	defer f.Close()

	// A file edited by hand may be missing its final newline.
	info, err := f.Stat()
	if err != nil {
		return ioFailure("stat", path, err)
	}
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return ioFailure("read", path, err)
		}
		if last[0] != '\n' {
			line = "\n" + line
		}
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		return ioFailure("write", path, err)
	}
	if err := f.Close(); err != nil {
		return ioFailure("close", path, err)
	}
	return nil
}

// FindByKey implements Store.
func (s *FileStore) FindByKey(ctx context.Context, t Table, keyField int, keyValue string) (Record, bool, error) {
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

// Scan implements Store. A missing file reads as an empty table.
func (s *FileStore) Scan(ctx context.Context, t Table, fn func(Record) error) error {
	unlock := s.locks.lock(t.File)
	defer unlock()

	path := s.Path(t)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return ioFailure("open", path, err)
	}
	defer f.Close()

	return eachLine(ctx, f, path, func(raw string, lineNo int) error {
		if isBlank(raw) {
			return nil
		}
		err := fn(DecodeLine(t, raw, lineNo))
		if errors.Is(err, ErrStopScan) {
			return errStop
		}
		return err
	})
}

// RewriteWhere implements Store. The new table is written to a temporary file
// next to the original, synced and renamed over it. Nothing is swapped when no
// record changed.
func (s *FileStore) RewriteWhere(ctx context.Context, t Table, match MatchFunc, transform TransformFunc) (RewriteResult, error) {
	var res RewriteResult

	unlock := s.locks.lock(t.File)
	defer unlock()

	path := s.Path(t)
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return res, ioFailure("open", path, err)
	}
	defer src.Close()

	tmpPath := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", t.File, uuid.NewString()))
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return res, ioFailure("create temp", tmpPath, err)
	}
	swapped := false
	defer func() {
		if !swapped {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Warn().Err(rmErr).Str("path", tmpPath).Msg("Failed to remove temporary table file")
			}
		}
	}()

	w := bufio.NewWriter(tmp)
	var transformErrs []error
	err = eachLine(ctx, src, path, func(raw string, lineNo int) error {
		out, keep, lineErr := rewriteLine(t, raw, lineNo, match, transform, &res)
		if lineErr != nil {
			transformErrs = append(transformErrs, lineErr)
		}
		if !keep {
			return nil
		}
		if _, err := w.WriteString(out + "\n"); err != nil {
			return ioFailure("write", tmpPath, err)
		}
		return nil
	})
	if err != nil {
		return RewriteResult{}, err
	}
	if !res.Changed() {
		return res, errors.Join(transformErrs...)
	}

	if err := w.Flush(); err != nil {
		return RewriteResult{}, ioFailure("flush", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return RewriteResult{}, ioFailure("sync", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return RewriteResult{}, ioFailure("close", tmpPath, err)
	}
	src.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return RewriteResult{}, ioFailure("rename", tmpPath, err)
	}
	swapped = true

	logger.Debug().
		Str("table", t.Name).
		Int("matched", res.Matched).
		Int("replaced", res.Replaced).
		Int("deleted", res.Deleted).
		Msg("Table rewritten")

	return res, errors.Join(transformErrs...)
}

var errStop = errors.New("stop")

// eachLine feeds fn every line of r without its trailing newline. Long lines
// are read whole.
func eachLine(ctx context.Context, r io.Reader, path string, fn func(raw string, lineNo int) error) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return ioFailure("read", path, readErr)
		}
		if raw == "" && errors.Is(readErr, io.EOF) {
			return nil
		}
		if err := fn(strings.TrimSuffix(raw, "\n"), lineNo); err != nil {
			if errors.Is(err, errStop) {
				return nil
			}
			return err
		}
		if readErr != nil {
			return nil
		}
	}
}
