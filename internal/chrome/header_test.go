package chrome

import (
	"image/color"
	"testing"
)

func TestRenderHeader(t *testing.T) {
	l := DefaultLayout()
	face, err := labelFace(14)
	if err != nil {
		t.Fatalf("labelFace: %v", err)
	}

	img := RenderHeader(l, "", face)
	b := img.Bounds()
	if b.Dx() != l.Width || b.Dy() != l.HeaderHeight {
		t.Fatalf("header size = %v, want %dx%d", b, l.Width, l.HeaderHeight)
	}

	// Center of the pink swatch is the zone color.
	r, g, bl, _ := img.At(192, 62).RGBA()
	if r>>8 != 255 || g>>8 != 0 || bl>>8 != 255 {
		t.Errorf("pink swatch pixel = %d,%d,%d", r>>8, g>>8, bl>>8)
	}

	// The highlight border sits in the zone padding.
	plain := RenderHeader(l, "", face).At(132, 62)
	lit := RenderHeader(l, "pink", face).At(132, 62)
	if plain == lit {
		t.Error("active zone should be highlighted")
	}
	if c := color.RGBAModel.Convert(lit).(color.RGBA); c.R < 200 || c.G < 200 || c.B < 200 {
		t.Errorf("highlight pixel = %v, want near white", c)
	}
}

func TestLoadHeaders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	l := DefaultLayout()
	h, err := LoadHeaders(t.TempDir(), l)
	if err != nil {
		t.Fatalf("LoadHeaders() error = %v", err)
	}
	defer h.Close()

	// idle plus the ten header zones; size zones live below the header.
	if h.Len() != 11 {
		t.Errorf("Len = %d, want 11", h.Len())
	}
	m := h.Get("pink")
	if m == nil || m.Cols() != l.Width || m.Rows() != l.HeaderHeight {
		t.Fatalf("pink header missing or wrong size")
	}
	if h.Get("shrink") == nil {
		t.Error("unknown header should fall back to idle")
	}

	px := m.GetVecbAt(62, 192)
	if px[0] != 255 || px[1] != 0 || px[2] != 255 {
		t.Errorf("pink swatch BGR = %v", px)
	}
}
