package recordstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yigit/sims/internal/pkg/apperrors"
)

var people = Table{
	Name:      "people",
	File:      "people.txt",
	Fields:    []string{"id", "name", "city"},
	MinFields: 3,
}

type rawStore interface {
	Store
	lines(t *testing.T) []string
	seed(t *testing.T, lines ...string)
}

type fileHarness struct{ *FileStore }

func (h fileHarness) lines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(h.Path(people))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		t.Fatalf("read table: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func (h fileHarness) seed(t *testing.T, lines ...string) {
	t.Helper()
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(h.Path(people), []byte(data), 0o644); err != nil {
		t.Fatalf("seed table: %v", err)
	}
}

type memoryHarness struct{ *MemoryStore }

func (h memoryHarness) lines(t *testing.T) []string {
	t.Helper()
	return h.Lines(people)
}

func (h memoryHarness) seed(t *testing.T, lines ...string) {
	t.Helper()
	h.SetLines(people, lines...)
}

func eachStore(t *testing.T, fn func(t *testing.T, s rawStore)) {
	t.Run("file", func(t *testing.T) {
		fs, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore: %v", err)
		}
		fn(t, fileHarness{fs})
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, memoryHarness{NewMemoryStore()})
	})
}

func TestAppendAndFindByKey(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		ctx := context.Background()
		if err := s.Append(ctx, people, []string{"1", "Ada", "London"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := s.Append(ctx, people, []string{"2", "Alan", "Wilmslow"}); err != nil {
			t.Fatalf("Append: %v", err)
		}

		rec, ok, err := s.FindByKey(ctx, people, 1, "Alan")
		if err != nil || !ok {
			t.Fatalf("FindByKey = %v, %v", ok, err)
		}
		if rec.Field(0) != "2" || rec.Field(2) != "Wilmslow" {
			t.Fatalf("unexpected record %+v", rec)
		}

		_, ok, err = s.FindByKey(ctx, people, 1, "Grace")
		if err != nil || ok {
			t.Fatalf("missing key: found=%v err=%v", ok, err)
		}
	})
}

func TestFindByKeyOnMissingTable(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		_, ok, err := s.FindByKey(context.Background(), people, 0, "1")
		if err != nil || ok {
			t.Fatalf("found=%v err=%v, want empty table", ok, err)
		}
	})
}

func TestAppendRejectsDelimiter(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		err := s.Append(context.Background(), people, []string{"1", "Ada, Countess", "London"})
		if !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("err = %v, want ErrValidationFailed", err)
		}
		err = s.Append(context.Background(), people, []string{"1", "Ada\nLovelace", "London"})
		if !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("err = %v, want ErrValidationFailed", err)
		}
		if got := s.lines(t); len(got) != 0 {
			t.Fatalf("table written after rejection: %q", got)
		}
	})
}

func TestFirstMatchWins(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t, "1,Ada,London", "1,Ada,Paris")
		rec, ok, err := s.FindByKey(context.Background(), people, 0, "1")
		if err != nil || !ok {
			t.Fatalf("FindByKey = %v, %v", ok, err)
		}
		if rec.Field(2) != "London" {
			t.Fatalf("got %q, want first line", rec.Field(2))
		}
	})
}

func TestRewriteWherePreservesMalformedAndUnmatched(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t,
			"1,Ada,London",
			"garbage",
			"",
			"2,Alan,Wilmslow",
			"2,short",
			"3,Grace,Arlington",
		)

		res, err := s.RewriteWhere(context.Background(), people, KeyEquals(0, "2"),
			func(r Record) (Replacement, error) {
				return Replace(r.Field(0), r.Field(1), "Manchester"), nil
			})
		if err != nil {
			t.Fatalf("RewriteWhere: %v", err)
		}
		if res.Matched != 1 || res.Replaced != 1 {
			t.Fatalf("result = %+v", res)
		}

		want := []string{
			"1,Ada,London",
			"garbage",
			"",
			"2,Alan,Manchester",
			"2,short",
			"3,Grace,Arlington",
		}
		assertLines(t, s.lines(t), want)
	})
}

func TestRewriteWhereDrop(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t, "1,Ada,London", "2,Alan,Wilmslow", "3,Ada,Paris")
		res, err := s.RewriteWhere(context.Background(), people, KeyEquals(1, "Ada"),
			func(Record) (Replacement, error) { return Drop(), nil })
		if err != nil {
			t.Fatalf("RewriteWhere: %v", err)
		}
		if res.Deleted != 2 {
			t.Fatalf("deleted = %d, want 2", res.Deleted)
		}
		assertLines(t, s.lines(t), []string{"2,Alan,Wilmslow"})
	})
}

func TestRewriteWhereTransformErrorKeepsRecordAndContinues(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t, "1,Ada,London", "2,Alan,Wilmslow", "3,Grace,Arlington")
		boom := errors.New("boom")

		res, err := s.RewriteWhere(context.Background(), people,
			func(Record) bool { return true },
			func(r Record) (Replacement, error) {
				switch r.Field(0) {
				case "2":
					return Replacement{}, boom
				case "3":
					return Replace(r.Field(0), "Grace, Rear Admiral", r.Field(2)), nil
				}
				return Drop(), nil
			})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
		if !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("err = %v, want delimiter validation failure too", err)
		}
		if res.Matched != 3 || res.Deleted != 1 || res.Replaced != 0 {
			t.Fatalf("result = %+v", res)
		}
		assertLines(t, s.lines(t), []string{"2,Alan,Wilmslow", "3,Grace,Arlington"})
	})
}

func TestRewriteWhereNoMatchLeavesTableAlone(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t, "1,Ada,London")
		res, err := s.RewriteWhere(context.Background(), people, KeyEquals(0, "9"),
			func(Record) (Replacement, error) { return Drop(), nil })
		if err != nil || res.Changed() {
			t.Fatalf("res=%+v err=%v", res, err)
		}
		assertLines(t, s.lines(t), []string{"1,Ada,London"})
	})
}

func TestScanVisitsMalformedAndStops(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t, "1,Ada,London", "x", "", "2,Alan,Wilmslow", "3,Grace,Arlington")

		var seen []string
		var malformed int
		err := s.Scan(context.Background(), people, func(r Record) error {
			if r.Malformed {
				malformed++
				return nil
			}
			seen = append(seen, r.Field(0))
			if r.Field(0) == "2" {
				return ErrStopScan
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if malformed != 1 {
			t.Fatalf("malformed = %d, want 1", malformed)
		}
		assertLines(t, seen, []string{"1", "2"})
	})
}

func TestScanHonoursCancellation(t *testing.T) {
	eachStore(t, func(t *testing.T, s rawStore) {
		s.seed(t, "1,Ada,London")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Scan(ctx, people, func(Record) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestFileAppendAfterMissingNewline(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(fs.Path(people), []byte("1,Ada,London"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := fs.Append(context.Background(), people, []string{"2", "Alan", "Wilmslow"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	data, _ := os.ReadFile(fs.Path(people))
	if string(data) != "1,Ada,London\n2,Alan,Wilmslow\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestFileRewriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	fileHarness{fs}.seed(t, "1,Ada,London", "2,Alan,Wilmslow")

	if _, err := fs.RewriteWhere(context.Background(), people, KeyEquals(0, "1"),
		func(Record) (Replacement, error) { return Drop(), nil }); err != nil {
		t.Fatalf("RewriteWhere: %v", err)
	}
	if _, err := fs.RewriteWhere(context.Background(), people, KeyEquals(0, "7"),
		func(Record) (Replacement, error) { return Drop(), nil }); err != nil {
		t.Fatalf("RewriteWhere: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != people.File {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("data dir = %v, want only %s", names, people.File)
	}
}

func TestFileRewriteUnreadableTable(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	// A directory where the table file should be cannot be read as lines.
	if err := os.Mkdir(filepath.Join(dir, people.File), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err = fs.RewriteWhere(context.Background(), people, KeyEquals(0, "1"),
		func(Record) (Replacement, error) { return Drop(), nil })
	if !errors.Is(err, apperrors.ErrIOFailure) {
		t.Fatalf("err = %v, want ErrIOFailure", err)
	}
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d lines %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}
