// Package cvcanvas implements overlay.Canvas on top of OpenCV matrices.
package cvcanvas

import (
	"fmt"
	"image"
	"math"

	"faceoverlay/internal/overlay"

	"gocv.io/x/gocv"
)

// MatCanvas draws onto a gocv.Mat. Drawing errors are kept; the first one is reported by Err.
type MatCanvas struct {
	mat *gocv.Mat
	err error
}

func New(mat *gocv.Mat) *MatCanvas {
	return &MatCanvas{mat: mat}
}

func (c *MatCanvas) Size() (float64, float64) {
	return float64(c.mat.Cols()), float64(c.mat.Rows())
}

func (c *MatCanvas) DrawCircle(cx, cy, radius float64, paint overlay.Paint) {
	center := image.Pt(round(cx), round(cy))
	c.keep("circle", gocv.Circle(c.mat, center, max(1, round(radius)), paint.Color, thickness(paint)))
}

func (c *MatCanvas) DrawText(text string, x, y float64, paint overlay.Paint) {
	scale := paint.TextSize
	if scale <= 0 {
		scale = 0.5
	}
	c.keep("text", gocv.PutText(c.mat, text, image.Pt(round(x), round(y)), gocv.FontHersheySimplex, scale, paint.Color, 1))
}

func (c *MatCanvas) DrawRect(left, top, right, bottom float64, paint overlay.Paint) {
	rect := image.Rect(round(left), round(top), round(right), round(bottom))
	c.keep("rectangle", gocv.Rectangle(c.mat, rect, paint.Color, thickness(paint)))
}

// Err returns the first drawing error, if any.
func (c *MatCanvas) Err() error {
	return c.err
}

func (c *MatCanvas) keep(what string, err error) {
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("failed to draw %s: %w", what, err)
	}
}

// thickness maps a paint to OpenCV line thickness; negative fills the shape.
func thickness(paint overlay.Paint) int {
	if paint.Style == overlay.StyleFill {
		return -1
	}
	return max(1, round(paint.StrokeWidth))
}

func round(v float64) int {
	return int(math.Round(v))
}
