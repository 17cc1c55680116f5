package chrome

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// IdleHeader is the header shown before any zone has been selected.
const IdleHeader = "idle"

var (
	headerBackground = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	headerLabel      = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	headerHighlight  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Headers holds one header band image per zone plus the idle image, all
// sized Width x HeaderHeight.
type Headers struct {
	images map[string]gocv.Mat
}

// LoadHeaders builds a header image for the idle state and every header zone.
// A file named <zone>.png (or idle.png) in dir is used when present;
// anything missing is rendered from the layout.
func LoadHeaders(dir string, l Layout) (*Headers, error) {
	face, err := labelFace(14)
	if err != nil {
		return nil, err
	}

	size := image.Pt(l.Width, l.HeaderHeight)
	h := &Headers{images: make(map[string]gocv.Mat)}

	names := []string{IdleHeader}
	for _, z := range l.Zones {
		if z.MaxY <= l.HeaderHeight {
			names = append(names, z.Name)
		}
	}

	for _, name := range names {
		if mat, ok := loadHeaderFile(dir, name, size); ok {
			h.images[name] = mat
			continue
		}
		active := name
		if name == IdleHeader {
			active = ""
		}
		mat, err := gocv.ImageToMatRGB(RenderHeader(l, active, face))
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("convert header %q: %w", name, err)
		}
		h.images[name] = mat
	}
	return h, nil
}

func loadHeaderFile(dir, name string, size image.Point) (gocv.Mat, bool) {
	if dir == "" {
		return gocv.Mat{}, false
	}
	path := filepath.Join(dir, name+".png")
	if _, err := os.Stat(path); err != nil {
		return gocv.Mat{}, false
	}
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return gocv.Mat{}, false
	}
	out := gocv.NewMat()
	gocv.Resize(img, &out, size, 0, 0, gocv.InterpolationLinear)
	return out, true
}

// Get returns the header for zone name, falling back to the idle header.
func (h *Headers) Get(name string) *gocv.Mat {
	if m, ok := h.images[name]; ok {
		return &m
	}
	if m, ok := h.images[IdleHeader]; ok {
		return &m
	}
	return nil
}

// Len returns the number of header images.
func (h *Headers) Len() int { return len(h.images) }

// Close releases every image.
func (h *Headers) Close() {
	for name, m := range h.images {
		m.Close()
		delete(h.images, name)
	}
}

func labelFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// RenderHeader draws the header band for the layout: color zones as swatches,
// the rest as labelled buttons. The zone named active gets a highlight border.
func RenderHeader(l Layout, active string, face font.Face) image.Image {
	dc := gg.NewContext(l.Width, l.HeaderHeight)
	dc.SetColor(headerBackground)
	dc.Clear()
	if face != nil {
		dc.SetFontFace(face)
	}

	const pad = 8.0
	for _, z := range l.Zones {
		if z.MaxY > l.HeaderHeight {
			continue
		}
		x, y := float64(z.MinX)+pad, float64(z.MinY)+pad
		w, h := float64(z.MaxX-z.MinX)-2*pad, float64(z.MaxY-z.MinY)-2*pad

		if c, ok := z.RGBA(); ok {
			dc.SetColor(c)
			dc.DrawRoundedRectangle(x, y, w, h, 6)
			dc.Fill()
		} else {
			dc.SetColor(headerLabel)
			dc.SetLineWidth(1.5)
			dc.DrawRoundedRectangle(x, y, w, h, 6)
			dc.Stroke()
			dc.DrawStringAnchored(z.Name, x+w/2, y+h/2, 0.5, 0.5)
		}

		if z.Name == active {
			dc.SetColor(headerHighlight)
			dc.SetLineWidth(4)
			dc.DrawRoundedRectangle(x-pad/2, y-pad/2, w+pad, h+pad, 8)
			dc.Stroke()
		}
	}
	return dc.Image()
}
