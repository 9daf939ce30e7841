package patient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ehr/journal/internal/platform/apperr"
	"github.com/ehr/journal/internal/platform/markup"
)

func newFileService(t *testing.T) (*Service, *FileRepo) {
	t.Helper()
	repo := NewFileRepo(t.TempDir())
	if err := repo.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return NewService(repo), repo
}

func TestFileRepo_SeedsAnna(t *testing.T) {
	svc, _ := newFileService(t)
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0] != Seed()[0] {
		t.Errorf("expected seed patient, got %+v", list)
	}
}

func TestFileRepo_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepo(dir)
	if err := repo.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	created, err := NewService(repo).Create(context.Background(), "010101-0001", "Test", "1995-01-01")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened := NewFileRepo(dir)
	if err := reopened.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	list, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0] != *created {
		t.Errorf("expected created patient first, got %+v", list)
	}
}

func TestFileRepo_DuplicateCPRKeepsOne(t *testing.T) {
	svc, repo := newFileService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "010101-0001", "A", "2000-01-01"); err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := os.ReadFile(repo.Collection().Path())
	_, err := svc.Create(ctx, "010101-0001", "B", "2000-01-01")
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	after, _ := os.ReadFile(repo.Collection().Path())
	if string(before) != string(after) {
		t.Error("rejected insert must not rewrite the file")
	}
}

func TestFileRepo_ConcurrentCreates(t *testing.T) {
	svc, _ := newFileService(t)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, fmt.Sprintf("cpr-%02d", i), "P", "2000-01-01")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != n+1 {
		t.Errorf("expected %d patients (incl. seed), got %d", n+1, len(list))
	}
}

func TestFileRepo_ConcurrentDuplicateCPR(t *testing.T) {
	svc, _ := newFileService(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, "same-cpr", "P", "2000-01-01"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one successful create, got %d", succeeded)
	}
}

func TestFileRepo_RoundTripOnDisk(t *testing.T) {
	_, repo := newFileService(t)
	ctx := context.Background()
	want := []Patient{
		{ID: "p-1", CPR: "<cpr> & 'x'", Name: "Søren Ærø", DOB: ""},
		{ID: "p-2"},
	}
	if err := repo.Update(ctx, func([]Patient) ([]Patient, error) { return want, nil }); err != nil {
		t.Fatalf("update: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(repo.Collection().Path()), FileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.HasPrefix(string(data), "<?xml") {
		t.Error("expected headless document")
	}
	got, err := markup.DecodeCollection[Patient](data, CollectionTag, ItemTag)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
