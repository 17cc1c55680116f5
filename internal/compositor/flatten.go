package compositor

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/beyondbrush/internal/annotation"
)

// Flatten renders the canvas with every committed text object burned in.
// The camera frame is not included. Text is drawn twice in its own color,
// bold then regular, with no dark outline. The caller owns the returned Mat.
func Flatten(canvas *gocv.Mat, texts []annotation.TextObject) gocv.Mat {
	out := canvas.Clone()
	for _, o := range texts {
		if o.Text == "" {
			continue
		}
		gocv.PutText(&out, o.Text, o.Position, annotation.Font, o.Scale, o.Color, o.Thickness+2)
		gocv.PutText(&out, o.Text, o.Position, annotation.Font, o.Scale, o.Color, o.Thickness)
	}
	return out
}
