// Package export writes flattened paintings to disk as PNG or PDF and
// records each saved file.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"gocv.io/x/gocv"

	"github.com/ayusman/beyondbrush/internal/store"
)

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrUnsupportedFormat is returned for formats other than png and pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts "png" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FileName returns saved_painting_YYYYMMDD_HHMMSS.<ext> for t.
func FileName(t time.Time, f Format) string {
	return fmt.Sprintf("saved_painting_%s.%s", t.Format("20060102_150405"), f)
}

// Recorder persists painting records.
type Recorder interface {
	Create(p *store.Painting) error
}

// Exporter writes paintings into one directory.
type Exporter struct {
	dir      string
	format   Format
	recorder Recorder
	now      func() time.Time
}

// New creates an exporter. recorder may be nil.
func New(dir string, format Format, recorder Recorder) (*Exporter, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &Exporter{dir: dir, format: format, recorder: recorder, now: time.Now}, nil
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Format returns the output format.
func (e *Exporter) Format() Format { return e.format }

// Save writes img and records it. textCount is stored with the record.
func (e *Exporter) Save(img *gocv.Mat, textCount int) (*store.Painting, error) {
	if img == nil || img.Empty() {
		return nil, errors.New("export: empty image")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	png, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	created := e.now()
	path := uniquePath(filepath.Join(e.dir, FileName(created, e.format)))

	switch e.format {
	case FormatPNG:
		err = os.WriteFile(path, png, 0o644)
	case FormatPDF:
		err = writePDF(path, png, img.Cols(), img.Rows())
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, e.format)
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	p := &store.Painting{
		ID:        uuid.New().String(),
		Path:      path,
		Format:    string(e.format),
		Width:     img.Cols(),
		Height:    img.Rows(),
		TextCount: textCount,
		SizeBytes: size,
		CreatedAt: created,
	}
	if e.recorder != nil {
		if err := e.recorder.Create(p); err != nil {
			return p, fmt.Errorf("record painting: %w", err)
		}
	}
	return p, nil
}

func encodePNG(img *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, *img)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

// writePDF places the PNG on a single page sized to the image, one point per pixel.
func writePDF(path string, png []byte, width, height int) error {
	w, h := float64(width), float64(height)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("painting", opts, bytes.NewReader(png))
	pdf.ImageOptions("painting", 0, 0, w, h, false, opts, 0, "")
	return pdf.OutputFileAndClose(path)
}

// uniquePath appends _1, _2, ... when two saves land in the same second.
func uniquePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
