package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/frozenlist/bench"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(id string, created time.Time) *bench.Report {
	return &bench.Report{
		ID:         id,
		Created:    created,
		GoVersion:  "go1.25",
		Platform:   "linux/amd64",
		CPUs:       8,
		Length:     1000,
		Iterations: 100,
		Expected:   499500,
		Results: []bench.Result{
			{Path: bench.PathFrozen, NsPerTraversal: 800, Ratio: 1},
			{Path: bench.PathHandle, NsPerTraversal: 9000, Ratio: 11.25},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTemp(t)
	r := sampleReport("run-1", time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC))

	if err := s.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != r.ID || got.Expected != r.Expected {
		t.Errorf("got %+v, want %+v", got, r)
	}
	if !got.Created.Equal(r.Created) {
		t.Errorf("Created = %v, want %v", got.Created, r.Created)
	}
	if res, ok := got.Result(bench.PathHandle); !ok || res.Ratio != 11.25 {
		t.Errorf("handle result = %+v, %v", res, ok)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Save(sampleReport(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("List order wrong: %d runs", len(all))
	}

	two, err := s.List(2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(two) != 2 {
		t.Errorf("List(2) = %d runs, want 2", len(two))
	}
}

func TestSaveReplaces(t *testing.T) {
	s := openTemp(t)
	r := sampleReport("same", time.Now().UTC())
	if err := s.Save(r); err != nil {
		t.Fatal(err)
	}
	r.Iterations = 7
	if err := s.Save(r); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("same")
	if err != nil {
		t.Fatal(err)
	}
	if got.Iterations != 7 {
		t.Errorf("Iterations = %d, want 7", got.Iterations)
	}
}

func TestDelete(t *testing.T) {
	s := openTemp(t)
	if err := s.Save(sampleReport("gone", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("second Delete err = %v, want ErrRunNotFound", err)
	}
}
