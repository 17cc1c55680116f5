package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		from, to image.Point
		n        int
		want     []image.Point
	}{
		{
			name: "horizontal ten steps",
			from: image.Pt(0, 0),
			to:   image.Pt(100, 0),
			n:    10,
			want: []image.Point{
				{0, 0}, {10, 0}, {20, 0}, {30, 0}, {40, 0}, {50, 0},
				{60, 0}, {70, 0}, {80, 0}, {90, 0}, {100, 0},
			},
		},
		{
			name: "diagonal backwards",
			from: image.Pt(40, 40),
			to:   image.Pt(0, 0),
			n:    4,
			want: []image.Point{{40, 40}, {30, 30}, {20, 20}, {10, 10}, {0, 0}},
		},
		{
			name: "zero length",
			from: image.Pt(5, 5),
			to:   image.Pt(5, 5),
			n:    2,
			want: []image.Point{{5, 5}, {5, 5}, {5, 5}},
		},
		{
			name: "non-positive count clamps to one segment",
			from: image.Pt(0, 0),
			to:   image.Pt(3, 7),
			n:    0,
			want: []image.Point{{0, 0}, {3, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpolate(tt.from, tt.to, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInterpolate_MaxGap(t *testing.T) {
	pts := Interpolate(image.Pt(0, 0), image.Pt(100, 0), DefaultSubdivisions)
	for i := 1; i < len(pts); i++ {
		if gap := pts[i].X - pts[i-1].X; gap > 10 {
			t.Errorf("gap between %v and %v is %d, want <= 10", pts[i-1], pts[i], gap)
		}
	}
}

func TestTool(t *testing.T) {
	pink := color.RGBA{R: 255, G: 0, B: 255, A: 255}

	b := NewBrush(pink, 7)
	if b.IsEraser() || b.DrawColor() != pink || b.Width != 7 {
		t.Errorf("unexpected brush %+v", b)
	}
	if b.Kind.String() != "brush" {
		t.Errorf("brush name = %q", b.Kind.String())
	}

	e := NewEraser(DefaultEraserWidth)
	if !e.IsEraser() || e.DrawColor() != Background {
		t.Errorf("unexpected eraser %+v", e)
	}
	if e.Kind.String() != "eraser" {
		t.Errorf("eraser name = %q", e.Kind.String())
	}
}

func TestCanvas_StrokeIsContinuous(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(200, 50)
	defer c.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	c.Stroke(image.Pt(0, 10), image.Pt(100, 10), NewBrush(white, 1))

	for x := 0; x <= 100; x++ {
		px := c.Mat().GetVecbAt(10, x)
		if px[0] == 0 && px[1] == 0 && px[2] == 0 {
			t.Fatalf("pixel (%d,10) is background, line has a gap", x)
		}
	}

	if px := c.Mat().GetVecbAt(10, 150); px[0] != 0 || px[1] != 0 || px[2] != 0 {
		t.Errorf("pixel past the stroke end should be background, got %v", px)
	}
}

func TestCanvas_EraserClears(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(100, 100)
	defer c.Close()

	red := color.RGBA{R: 255, A: 255}
	c.Stroke(image.Pt(10, 50), image.Pt(90, 50), NewBrush(red, 5))

	px := c.Mat().GetVecbAt(50, 50)
	if px[2] != 255 {
		t.Fatalf("expected red pixel in BGR order, got %v", px)
	}

	c.Stroke(image.Pt(10, 50), image.Pt(90, 50), NewEraser(20))
	px = c.Mat().GetVecbAt(50, 50)
	if px[0] != 0 || px[1] != 0 || px[2] != 0 {
		t.Errorf("eraser should restore background, got %v", px)
	}
}

func TestCanvas_SnapshotIsIndependent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(64, 48)
	defer c.Close()

	before := c.Snapshot()
	c.Stroke(image.Pt(0, 0), image.Pt(63, 47), NewBrush(color.RGBA{G: 255, A: 255}, 3))
	after := c.Snapshot()

	if before.Equal(after) {
		t.Fatal("stroke should change the canvas")
	}
	w, h := before.Size()
	if w != 64 || h != 48 {
		t.Errorf("Size() = %dx%d, want 64x48", w, h)
	}

	if err := c.Restore(before); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !c.Snapshot().Equal(before) {
		t.Error("canvas should match the restored snapshot")
	}

	// Drawing after restore must not leak into either snapshot.
	c.Stroke(image.Pt(0, 47), image.Pt(63, 0), NewBrush(color.RGBA{B: 255, A: 255}, 3))
	if c.Snapshot().Equal(before) {
		t.Error("canvas should differ from the old snapshot after drawing")
	}
	if err := c.Restore(after); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !c.Snapshot().Equal(after) {
		t.Error("restoring the second snapshot should reproduce its pixels")
	}
}

func TestCanvas_RestoreSizeMismatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	small := New(10, 10)
	defer small.Close()
	big := New(20, 20)
	defer big.Close()

	err := big.Restore(small.Snapshot())
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Restore() error = %v, want ErrSizeMismatch", err)
	}
}

func TestCanvas_Clear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(32, 32)
	defer c.Close()
	blank := c.Snapshot()

	c.Stroke(image.Pt(0, 16), image.Pt(31, 16), NewBrush(color.RGBA{R: 200, A: 255}, 4))
	c.Clear()
	if !c.Snapshot().Equal(blank) {
		t.Error("Clear() should reset to a blank raster")
	}
}

func TestSnapshot_BytesIsCopy(t *testing.T) {
	s := Snapshot{rows: 1, cols: 1, pix: []byte{1, 2, 3}}
	b := s.Bytes()
	b[0] = 99
	if s.pix[0] != 1 {
		t.Error("Bytes() must return a copy")
	}
	if (Snapshot{}).Empty() != true {
		t.Error("zero snapshot should be empty")
	}
}
