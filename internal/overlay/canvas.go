// Package overlay paints detection graphics on top of camera frames.
package overlay

import "image/color"

// Style selects whether a shape is filled or only outlined.
type Style int

const (
	StyleFill Style = iota
	StyleStroke
)

// Paint describes how a primitive is drawn.
type Paint struct {
	Color       color.RGBA
	Style       Style
	StrokeWidth float64
	TextSize    float64
}

// Canvas is a 2D drawing surface in screen coordinates.
type Canvas interface {
	Size() (width, height float64)
	DrawCircle(cx, cy, radius float64, paint Paint)
	DrawText(text string, x, y float64, paint Paint)
	DrawRect(left, top, right, bottom float64, paint Paint)
}

var hintColor = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}

// HintTextPaint is used for landmark labels and the face id.
var HintTextPaint = Paint{
	Color:    hintColor,
	Style:    StyleFill,
	TextSize: 0.5,
}

// HintOutlinePaint is used for landmark dots and the face box.
var HintOutlinePaint = Paint{
	Color:       hintColor,
	Style:       StyleStroke,
	StrokeWidth: 2,
}
