package guide

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gocv.io/x/gocv"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".bmp"}

// Book holds the guide pages, already resized to the overlay area.
type Book struct {
	pages []gocv.Mat
}

// LoadBook reads every image in dir in name order and resizes each one to size.
// A missing directory yields an empty book. Unreadable files are skipped.
func LoadBook(dir string, size image.Point) (*Book, error) {
	b := &Book{}
	if dir == "" {
		return b, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("read guide dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(imageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	for _, name := range names {
		img := gocv.IMRead(filepath.Join(dir, name), gocv.IMReadColor)
		if img.Empty() {
			img.Close()
			continue
		}
		b.Add(img, size)
		img.Close()
	}
	return b, nil
}

// Add appends a copy of img resized to size.
func (b *Book) Add(img gocv.Mat, size image.Point) {
	page := gocv.NewMat()
	gocv.Resize(img, &page, size, 0, 0, gocv.InterpolationLinear)
	b.pages = append(b.pages, page)
}

// Len returns the page count.
func (b *Book) Len() int { return len(b.pages) }

// Page returns page i, or nil when i is out of range.
func (b *Book) Page(i int) *gocv.Mat {
	if i < 0 || i >= len(b.pages) {
		return nil
	}
	return &b.pages[i]
}

// Close releases every page.
func (b *Book) Close() {
	for i := range b.pages {
		b.pages[i].Close()
	}
	b.pages = nil
}
