// Package recordstore keeps delimited text tables: one record per line, fields
// separated by Delimiter. Every operation re-reads the table, so callers never
// hold long-lived state and a table can be edited by hand between calls.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/sims/internal/pkg/apperrors"
)

// Delimiter separates fields inside a line.
const Delimiter = ","

// ErrStopScan can be returned from a Scan callback to end the scan early
// without reporting an error.
var ErrStopScan = errors.New("stop scan")

// Table describes one persisted collection.
type Table struct {
	// Name identifies the table in logs and in the postgres backend.
	Name string
	// File is the file name used by the file backend.
	File string
	// Fields are the ordered column names.
	Fields []string
	// MinFields is the number of fields a line needs to be well formed.
	// Lines with fewer fields are preserved but never matched.
	MinFields int
	// IDFloor is the first id handed out when the table is empty.
	IDFloor int
}

// Record is one decoded line.
type Record struct {
	Fields    []string
	Line      string
	LineNo    int
	Malformed bool
}

// Field returns the i-th field, or "" when the record is shorter.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Replacement is what a TransformFunc produces for a matched record.
type Replacement struct {
	Fields []string
	Delete bool
}

// Replace keeps the record with new field values.
func Replace(fields ...string) Replacement {
	return Replacement{Fields: fields}
}

// Drop removes the record from the table.
func Drop() Replacement {
	return Replacement{Delete: true}
}

// MatchFunc selects records for RewriteWhere.
type MatchFunc func(Record) bool

// TransformFunc rewrites a matched record.
type TransformFunc func(Record) (Replacement, error)

// RewriteResult counts what a rewrite did.
type RewriteResult struct {
	Matched  int
	Replaced int
	Deleted  int
}

// Changed reports whether the rewrite altered the table.
func (r RewriteResult) Changed() bool {
	return r.Replaced > 0 || r.Deleted > 0
}

// Store is the persistence boundary shared by every repository.
type Store interface {
	// Append adds one record to the end of the table.
	Append(ctx context.Context, t Table, fields []string) error
	// FindByKey returns the first well-formed record whose keyField equals keyValue.
	// A missing record is reported with found=false and a nil error.
	FindByKey(ctx context.Context, t Table, keyField int, keyValue string) (rec Record, found bool, err error)
	// RewriteWhere replaces or removes every well-formed record accepted by match.
	// Records for which transform fails are kept unchanged and the failures are
	// returned joined once the rest of the table has been written.
	RewriteWhere(ctx context.Context, t Table, match MatchFunc, transform TransformFunc) (RewriteResult, error)
	// Scan visits every non-blank line in table order, malformed ones included.
	Scan(ctx context.Context, t Table, fn func(Record) error) error
}

// EncodeLine joins fields into a storable line.
func EncodeLine(fields []string) (string, error) {
	for i, f := range fields {
		if strings.Contains(f, Delimiter) || strings.ContainsAny(f, "\r\n") {
			return "", fmt.Errorf("%w: field %d contains a delimiter or line break", apperrors.ErrValidationFailed, i)
		}
	}
	return strings.Join(fields, Delimiter), nil
}

// DecodeLine splits a raw line into a record. Blank lines decode as malformed
// with no fields.
func DecodeLine(t Table, line string, lineNo int) Record {
	text := strings.TrimRight(line, "\r")
	rec := Record{Line: line, LineNo: lineNo}
	if strings.TrimSpace(text) == "" {
		rec.Malformed = true
		return rec
	}
	rec.Fields = strings.Split(text, Delimiter)
	rec.Malformed = len(rec.Fields) < t.MinFields
	return rec
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// KeyEquals builds a MatchFunc comparing one field for exact equality.
func KeyEquals(field int, value string) MatchFunc {
	return func(r Record) bool {
		return r.Field(field) == value
	}
}

// rewriteLine decides what a single line becomes during RewriteWhere. Blank
// and malformed lines pass through untouched. keep=false means the line is dropped.
func rewriteLine(t Table, raw string, lineNo int, match MatchFunc, transform TransformFunc, res *RewriteResult) (out string, keep bool, err error) {
	if isBlank(raw) {
		return raw, true, nil
	}
	rec := DecodeLine(t, raw, lineNo)
	if rec.Malformed || !match(rec) {
		return raw, true, nil
	}
	res.Matched++

	repl, err := transform(rec)
	if err != nil {
		return raw, true, fmt.Errorf("%s line %d: %w", t.Name, lineNo, err)
	}
	if repl.Delete {
		res.Deleted++
		return "", false, nil
	}
	line, err := EncodeLine(repl.Fields)
	if err != nil {
		return raw, true, fmt.Errorf("%s line %d: %w", t.Name, lineNo, err)
	}
	res.Replaced++
	return line, true, nil
}

func ioFailure(op, target string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", apperrors.ErrIOFailure, op, target, err)
}
