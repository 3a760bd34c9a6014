package overlay

import (
	"fmt"
	"sync/atomic"

	"faceoverlay/internal/model"
)

const (
	dotRadius   = 3.0
	textOffsetY = -30.0
)

// FaceGraphic marks the landmarks and bounding box of one tracked face.
type FaceGraphic struct {
	face        atomic.Pointer[model.Face]
	invalidator Invalidator

	TextPaint    Paint
	OutlinePaint Paint
}

// NewFaceGraphic creates a graphic that asks inv for a redraw on every update.
// inv may be nil.
func NewFaceGraphic(inv Invalidator) *FaceGraphic {
	return &FaceGraphic{
		invalidator:  inv,
		TextPaint:    HintTextPaint,
		OutlinePaint: HintOutlinePaint,
	}
}

// Update replaces the detection result and requests a redraw.
func (g *FaceGraphic) Update(face *model.Face) {
	g.face.Store(face)
	if g.invalidator != nil {
		g.invalidator.PostInvalidate()
	}
}

// Face returns the latest detection result, or nil.
func (g *FaceGraphic) Face() *model.Face {
	return g.face.Load()
}

// Draw paints the face. Nothing is drawn unless the face and all of its
// points are present.
func (g *FaceGraphic) Draw(c Canvas, t Transform) {
	face := g.face.Load()
	if face == nil || !face.Complete() {
		return
	}

	landmarks := []struct {
		label string
		point *model.Point
	}{
		{"left eye", face.LeftEye},
		{"right eye", face.RightEye},
		{"nose base", face.NoseBase},
		{"mouth left", face.MouthLeft},
		{"mouth right", face.MouthRight},
		{"mouth bottom", face.MouthBottom},
	}
	for _, lm := range landmarks {
		x := t.TranslateX(lm.point.X)
		y := t.TranslateY(lm.point.Y)
		c.DrawCircle(x, y, dotRadius, g.OutlinePaint)
		c.DrawText(lm.label, x, y+textOffsetY, g.TextPaint)
	}

	centerX := t.TranslateX(face.Position.X + face.Width/2)
	centerY := t.TranslateY(face.Position.Y + face.Height/2)
	offsetX := t.ScaleX(face.Width / 2)
	offsetY := t.ScaleY(face.Height / 2)

	c.DrawRect(centerX-offsetX, centerY-offsetY, centerX+offsetX, centerY+offsetY, g.OutlinePaint)
	c.DrawText(fmt.Sprintf("id: %d", face.ID), centerX, centerY, g.TextPaint)
}
