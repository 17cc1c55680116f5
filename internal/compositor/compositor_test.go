package compositor

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/beyondbrush/internal/annotation"
	"github.com/ayusman/beyondbrush/internal/engine"
)

const (
	testW      = 320
	testH      = 240
	testHeader = 40
)

func fixedMeasure(text string, _ float64, _ int) image.Point {
	return image.Pt(10*len(text), 20)
}

func filled(rows, cols int, b, g, r float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func bgr(m *gocv.Mat, x, y int) [3]uint8 {
	v := m.GetVecbAt(y, x)
	return [3]uint8{v[0], v[1], v[2]}
}

func TestCompose_Layers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := filled(testH, testW, 100, 100, 100)
	defer frame.Close()
	canvas := gocv.NewMatWithSize(testH, testW, gocv.MatTypeCV8UC3)
	defer canvas.Close()
	header := filled(testHeader, testW, 10, 20, 30)
	defer header.Close()

	red := color.RGBA{R: 255, A: 255}
	gocv.Line(&canvas, image.Pt(20, 100), image.Pt(300, 100), red, 9)

	c := New(Options{GuideOpacity: 0.3, GuideUnderlay: 0.3, StripOpacity: 0.3})
	defer c.Close()
	c.Compose(&frame, Scene{
		Canvas:       &canvas,
		Header:       &header,
		HeaderHeight: testHeader,
		Measure:      fixedMeasure,
	})

	if got := bgr(&frame, 150, 100); got != [3]uint8{0, 0, 255} {
		t.Errorf("stroke pixel = %v, want pure red", got)
	}
	if got := bgr(&frame, 150, 180); got != [3]uint8{100, 100, 100} {
		t.Errorf("untouched pixel = %v, want the camera frame", got)
	}
	if got := bgr(&frame, 5, 5); got != [3]uint8{10, 20, 30} {
		t.Errorf("header pixel = %v, want header image", got)
	}
}

func TestCompose_GuideBlend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := filled(testH, testW, 100, 100, 100)
	defer frame.Close()
	page := filled(testH-testHeader, testW, 200, 200, 200)
	defer page.Close()

	c := New(Options{GuideOpacity: 0.3, GuideUnderlay: 0.3, GuideLabelInset: 100})
	defer c.Close()
	c.Compose(&frame, Scene{HeaderHeight: testHeader, Guide: &page, GuideLabel: "Guide 1/2"})

	// 0.3*200 + 0.3*100 = 90
	if got := bgr(&frame, 10, 200); got != [3]uint8{90, 90, 90} {
		t.Errorf("blended pixel = %v, want 90s", got)
	}
	if got := bgr(&frame, 10, 10); got != [3]uint8{100, 100, 100} {
		t.Errorf("header band must not be blended, got %v", got)
	}
}

func TestCompose_TypingStripAndMarkers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := filled(testH, testW, 100, 100, 100)
	defer frame.Close()

	c := New(Options{StripOpacity: 0.3})
	defer c.Close()
	c.Compose(&frame, Scene{
		Caret:   annotation.CaretView{Active: true, Position: image.Pt(100, 100), Visible: true},
		Style:   annotation.DefaultStyle(),
		Measure: fixedMeasure,
		Markers: []engine.Marker{
			{Shape: engine.MarkerCircle, Center: image.Pt(250, 60), Radius: 15, Color: color.RGBA{G: 255, A: 255}},
		},
	})

	// 0.7*100 + 0.3*50 = 85
	if got := bgr(&frame, 300, testH-90); got != [3]uint8{85, 85, 85} {
		t.Errorf("strip pixel = %v, want 85s", got)
	}
	if got := bgr(&frame, 250, 60); got != [3]uint8{0, 255, 0} {
		t.Errorf("marker pixel = %v, want green", got)
	}
	if got := bgr(&frame, 100, 85); got == [3]uint8{100, 100, 100} {
		t.Error("caret line should be drawn")
	}
}

func TestFlatten(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	canvas := gocv.NewMatWithSize(testH, testW, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	out := Flatten(&canvas, []annotation.TextObject{
		{Text: "HI", Position: image.Pt(50, 100), Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Scale: 2, Thickness: 3},
	})
	defer out.Close()

	if out.Cols() != testW || out.Rows() != testH {
		t.Fatalf("flattened size = %dx%d", out.Cols(), out.Rows())
	}
	if nonZero(&out) == 0 {
		t.Error("flattened image should contain the text")
	}
	if nonZero(&canvas) != 0 {
		t.Error("Flatten must not draw on the live canvas")
	}
}

func TestFlatten_TextHasNoOutline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), testH, testW, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	out := Flatten(&canvas, []annotation.TextObject{
		{Text: "HI", Position: image.Pt(50, 100), Color: color.RGBA{R: 255, A: 255}, Scale: 2, Thickness: 3},
	})
	defer out.Close()

	background, red := [3]uint8{100, 100, 100}, [3]uint8{0, 0, 255}
	reds := 0
	for y := 0; y < out.Rows(); y++ {
		for x := 0; x < out.Cols(); x++ {
			switch got := bgr(&out, x, y); got {
			case background:
			case red:
				reds++
			default:
				t.Fatalf("pixel (%d,%d) = %v, want only background or text color", x, y, got)
			}
		}
	}
	if reds == 0 {
		t.Error("flattened image should contain the text")
	}
}

func nonZero(m *gocv.Mat) int {
	g := gocv.NewMat()
	defer g.Close()
	gocv.CvtColor(*m, &g, gocv.ColorBGRToGray)
	return gocv.CountNonZero(g)
}
