package repositories

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/recordstore"
)

func newTestRepos(t *testing.T) (*Repositories, *recordstore.MemoryStore) {
	t.Helper()
	store := recordstore.NewMemoryStore()
	return NewRepositories(store), store
}

func TestNextIDFloors(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	id, err := repos.IDAllocator.NextID(ctx, AdmissionsTable)
	if err != nil || id != 1001 {
		t.Fatalf("empty admissions: id=%d err=%v", id, err)
	}
	id, err = repos.IDAllocator.NextID(ctx, StudentsTable)
	if err != nil || id != 120 {
		t.Fatalf("empty students: id=%d err=%v", id, err)
	}
}

func TestNextIDExhausted(t *testing.T) {
	repos, store := newTestRepos(t)
	store.SetLines(StudentsTable, strconv.Itoa(math.MaxInt)+",Max,CSE,1,0.00")

	if id, err := repos.IDAllocator.NextID(context.Background(), StudentsTable); !errors.Is(err, apperrors.ErrIOFailure) {
		t.Fatalf("NextID = %d, %v; want storage failure", id, err)
	}
}

func TestNextIDUnsortedAndGarbage(t *testing.T) {
	repos, store := newTestRepos(t)
	store.SetLines(StudentsTable,
		"130,Carol,EEE,2,3.10",
		"abc,Broken,CSE,1,0.00",
		"",
		"125,Bob,CSE,1,2.00",
		"131x,Trailing,CSE,1,0.00",
		"99,Low,CSE,1,0.00",
		"140",
	)

	id, err := repos.IDAllocator.NextID(context.Background(), StudentsTable)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 141 {
		t.Fatalf("id = %d, want 141", id)
	}

	store.SetLines(StudentsTable, "5,Tiny,CSE,1,0.00")
	id, _ = repos.IDAllocator.NextID(context.Background(), StudentsTable)
	if id != 120 {
		t.Fatalf("id = %d, want floor 120", id)
	}
}

func TestUsernameRegistry(t *testing.T) {
	repos, store := newTestRepos(t)
	ctx := context.Background()
	store.SetLines(LoginsTable, "admin,x,admin,0")
	store.SetLines(AdmissionsTable,
		"1001,Alice,CSE,3,a@x.com,alice1,pw,pending,0",
		"1002,Bob,CSE,3,b@x.com,bob1,pw,approved,120",
		"1003,Old,CSE,3,o@x.com,legacy1,pw",
	)

	for _, u := range []string{"admin", "alice1", "bob1", "legacy1"} {
		taken, err := repos.UsernameRegistry.IsUsernameTaken(ctx, u)
		if err != nil || !taken {
			t.Errorf("IsUsernameTaken(%q) = %v, %v", u, taken, err)
		}
	}
	if taken, _ := repos.UsernameRegistry.IsUsernameTaken(ctx, "carol"); taken {
		t.Error("carol reported taken")
	}
	if taken, _ := repos.UsernameRegistry.IsUsernameTaken(ctx, ""); taken {
		t.Error("empty username reported taken")
	}
	if inLogins, _ := repos.UsernameRegistry.ExistsInLogins(ctx, "alice1"); inLogins {
		t.Error("alice1 is not a login yet")
	}

	pending, err := repos.UsernameRegistry.PendingAdmission(ctx, "alice1")
	if err != nil || !pending {
		t.Errorf("alice1 pending = %v, %v", pending, err)
	}
	if pending, _ := repos.UsernameRegistry.PendingAdmission(ctx, "bob1"); pending {
		t.Error("bob1 is approved")
	}
	if pending, _ := repos.UsernameRegistry.PendingAdmission(ctx, "legacy1"); !pending {
		t.Error("seven-field row must read as pending")
	}
}

func TestAdmissionMarkApproved(t *testing.T) {
	repos, store := newTestRepos(t)
	ctx := context.Background()
	store.SetLines(AdmissionsTable,
		"1001,Alice,CSE,3,a@x.com,alice1,pw",
		"broken",
		"1002,Bob,CSE,3,b@x.com,bob1,pw,pending,0",
	)

	if err := repos.AdmissionRepository.MarkApproved(ctx, 1001, 120); err != nil {
		t.Fatalf("MarkApproved: %v", err)
	}
	req, err := repos.AdmissionRepository.GetByTempID(ctx, 1001)
	if err != nil {
		t.Fatalf("GetByTempID: %v", err)
	}
	if !req.Status.IsApproved() || req.Status.StudentID() != 120 {
		t.Fatalf("status = %v/%d", req.Status, req.Status.StudentID())
	}

	lines := store.Lines(AdmissionsTable)
	if lines[0] != "1001,Alice,CSE,3,a@x.com,alice1,pw,approved,120" || lines[1] != "broken" ||
		lines[2] != "1002,Bob,CSE,3,b@x.com,bob1,pw,pending,0" {
		t.Fatalf("lines = %q", lines)
	}

	err = repos.AdmissionRepository.MarkApproved(ctx, 1001, 121)
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("second approval err = %v", err)
	}
	if err := repos.AdmissionRepository.MarkApproved(ctx, 1002, 0); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("zero student id err = %v", err)
	}
}

func TestLoginCreateAndAuthenticate(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	plain := func(want string) func(string) bool {
		return func(stored string) bool { return stored == want }
	}

	if err := repos.LoginRepository.Create(ctx, models.Login{Username: "alice1", Password: "pw1", Role: models.RoleStudent, StudentID: 120}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repos.LoginRepository.Create(ctx, models.Login{Username: "alice1", Password: "x", Role: models.RoleStudent, StudentID: 121})
	if !errors.Is(err, apperrors.ErrUsernameTaken) {
		t.Fatalf("duplicate err = %v", err)
	}
	err = repos.LoginRepository.Create(ctx, models.Login{Username: "root", Password: "x", Role: "superuser"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("bad role err = %v", err)
	}

	login, ok, err := repos.LoginRepository.Authenticate(ctx, "alice1", plain("pw1"))
	if err != nil || !ok {
		t.Fatalf("Authenticate = %v, %v", ok, err)
	}
	if login.Role != models.RoleStudent || login.StudentID != 120 {
		t.Fatalf("login = %+v", login)
	}
	if _, ok, _ := repos.LoginRepository.Authenticate(ctx, "alice1", plain("nope")); ok {
		t.Fatal("wrong password accepted")
	}
}

func TestDeleteByStudentIDKeepsMalformedLogins(t *testing.T) {
	repos, store := newTestRepos(t)
	store.SetLines(LoginsTable,
		"admin,x,admin,0",
		"alice1,pw,student,120",
		"half,pw,student",
		"carol,pw,student,1200",
	)
	n, err := repos.LoginRepository.DeleteByStudentID(context.Background(), 120)
	if err != nil || n != 1 {
		t.Fatalf("deleted=%d err=%v", n, err)
	}
	got := store.Lines(LoginsTable)
	want := []string{"admin,x,admin,0", "half,pw,student", "carol,pw,student,1200"}
	if len(got) != len(want) {
		t.Fatalf("lines = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMarksheetRoundTrip(t *testing.T) {
	repos, store := newTestRepos(t)
	ctx := context.Background()
	store.SetLines(MarksheetsTable, "120,Fall2024,Math,3.5,A,Physics")

	m := models.Marksheet{
		StudentID:     120,
		SemesterLabel: "Spring2025",
		Entries:       []models.SubjectScore{{Subject: "Math", Score: 3.756, Grade: "A"}},
	}
	if err := repos.MarksheetRepository.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := store.Lines(MarksheetsTable)[1]; got != "120,Spring2025,Math,3.76,A" {
		t.Fatalf("stored line = %q", got)
	}

	sheets, err := repos.MarksheetRepository.ListByStudentID(ctx, 120)
	if err != nil || len(sheets) != 2 {
		t.Fatalf("sheets=%v err=%v", sheets, err)
	}
	if len(sheets[0].Entries) != 1 || sheets[0].Entries[0].Grade != "A" {
		t.Fatalf("partial triple not dropped: %+v", sheets[0])
	}
}

func TestStudentRepository(t *testing.T) {
	repos, store := newTestRepos(t)
	ctx := context.Background()
	s := models.Student{ID: 120, Name: "Alice", Department: "CSE", Semester: 3}

	if err := repos.StudentRepository.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := store.Lines(StudentsTable)[0]; got != "120,Alice,CSE,3,0.00" {
		t.Fatalf("stored = %q", got)
	}
	if err := repos.StudentRepository.Create(ctx, s); !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		t.Fatalf("duplicate err = %v", err)
	}

	s.CGPA = 3.456
	if err := repos.StudentRepository.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repos.StudentRepository.GetByID(ctx, 120)
	if err != nil || got.CGPA != 3.46 {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}

	if err := repos.StudentRepository.Update(ctx, models.Student{ID: 999}); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if err := repos.StudentRepository.Delete(ctx, 120); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repos.StudentRepository.Delete(ctx, 120); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
