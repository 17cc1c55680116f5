package guide

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestLoadBook_MissingDir(t *testing.T) {
	b, err := LoadBook(filepath.Join(t.TempDir(), "nope"), image.Pt(10, 10))
	if err != nil {
		t.Fatalf("LoadBook() error = %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
	if b.Page(0) != nil {
		t.Error("Page on empty book should be nil")
	}

	b, err = LoadBook("", image.Pt(10, 10))
	if err != nil || b.Len() != 0 {
		t.Errorf("empty dir name should give an empty book, got %d, %v", b.Len(), err)
	}
}

func TestLoadBook_SortsAndResizes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV image encoding")
	}

	dir := t.TempDir()
	for i, name := range []string{"b.png", "a.png"} {
		img := gocv.NewMatWithSize(40+i*10, 60, gocv.MatTypeCV8UC3)
		if ok := gocv.IMWrite(filepath.Join(dir, name), img); !ok {
			img.Close()
			t.Fatalf("IMWrite %s failed", name)
		}
		img.Close()
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := LoadBook(dir, image.Pt(128, 59))
	if err != nil {
		t.Fatalf("LoadBook() error = %v", err)
	}
	defer b.Close()

	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	for i := 0; i < b.Len(); i++ {
		p := b.Page(i)
		if p.Cols() != 128 || p.Rows() != 59 {
			t.Errorf("page %d size = %dx%d, want 128x59", i, p.Cols(), p.Rows())
		}
	}
}
