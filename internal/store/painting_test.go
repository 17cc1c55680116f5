package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore opens a fresh database under t.TempDir.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestPaintingRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Paintings()

	p := &Painting{
		ID:        "p-1",
		Path:      "/tmp/saved_painting_20240101_120000.png",
		Format:    "png",
		Width:     1280,
		Height:    720,
		TextCount: 2,
		SizeBytes: 4096,
	}
	if err := repo.Create(p); err != nil {
		t.Fatalf("failed to create painting: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	got, err := repo.GetByID("p-1")
	if err != nil {
		t.Fatalf("failed to get painting: %v", err)
	}
	if got.Path != p.Path || got.Format != "png" || got.Width != 1280 || got.Height != 720 {
		t.Errorf("got %+v, want %+v", got, p)
	}
	if got.TextCount != 2 || got.SizeBytes != 4096 {
		t.Errorf("counts = %d/%d", got.TextCount, got.SizeBytes)
	}
}

func TestPaintingRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Paintings().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPaintingRepository_RejectsUnknownFormat(t *testing.T) {
	s := newTestStore(t)

	err := s.Paintings().Create(&Painting{ID: "p-1", Path: "x.gif", Format: "gif", Width: 1, Height: 1})
	if err == nil {
		t.Error("expected format check to reject gif")
	}
}

func TestPaintingRepository_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	repo := s.Paintings()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		p := &Painting{
			ID:        id,
			Path:      id + ".png",
			Format:    "png",
			Width:     10,
			Height:    10,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(p); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"c", "b", "a"}},
		{name: "limited", limit: 2, want: []string{"c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(tt.limit)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(list), len(tt.want))
			}
			for i, p := range list {
				if p.ID != tt.want[i] {
					t.Errorf("list[%d] = %s, want %s", i, p.ID, tt.want[i])
				}
			}
		})
	}

	n, err := repo.Count()
	if err != nil || n != 3 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestPaintingRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Paintings()

	if err := repo.Create(&Painting{ID: "p-1", Path: "a.pdf", Format: "pdf", Width: 1, Height: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete("p-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID("p-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete("p-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}
