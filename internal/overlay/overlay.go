package overlay

import (
	"slices"
	"sync"
)

// Graphic is a drawable unit rendered on top of a camera frame.
type Graphic interface {
	Draw(c Canvas, t Transform)
}

// Invalidator is notified when a graphic needs to be redrawn.
type Invalidator interface {
	PostInvalidate()
}

// Overlay holds the graphics of one camera view together with the
// detector frame size used to scale them onto the canvas.
type Overlay struct {
	mu            sync.Mutex
	graphics      []Graphic
	previewWidth  int
	previewHeight int
	frontFacing   bool

	invalidated chan struct{}
}

func New() *Overlay {
	return &Overlay{
		invalidated: make(chan struct{}, 1),
	}
}

// SetCameraInfo sets the detector frame size and facing. A zero size means
// detector coordinates already match the canvas.
func (o *Overlay) SetCameraInfo(previewWidth, previewHeight int, frontFacing bool) {
	o.mu.Lock()
	changed := o.previewWidth != previewWidth || o.previewHeight != previewHeight || o.frontFacing != frontFacing
	o.previewWidth = previewWidth
	o.previewHeight = previewHeight
	o.frontFacing = frontFacing
	o.mu.Unlock()

	if changed {
		o.PostInvalidate()
	}
}

func (o *Overlay) Add(g Graphic) {
	o.mu.Lock()
	o.graphics = append(o.graphics, g)
	o.mu.Unlock()
	o.PostInvalidate()
}

func (o *Overlay) Remove(g Graphic) {
	o.mu.Lock()
	if i := slices.Index(o.graphics, g); i >= 0 {
		o.graphics = slices.Delete(o.graphics, i, i+1)
	}
	o.mu.Unlock()
	o.PostInvalidate()
}

func (o *Overlay) Clear() {
	o.mu.Lock()
	o.graphics = nil
	o.mu.Unlock()
	o.PostInvalidate()
}

func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.graphics)
}

// PostInvalidate requests a redraw. Requests coalesce until the pending one is consumed.
func (o *Overlay) PostInvalidate() {
	select {
	case o.invalidated <- struct{}{}:
	default:
	}
}

// Invalidated delivers one value per pending redraw request.
func (o *Overlay) Invalidated() <-chan struct{} {
	return o.invalidated
}

// TransformFor returns the mapping from detector space to a canvas of the given size.
func (o *Overlay) TransformFor(canvasWidth, canvasHeight float64) Transform {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transformLocked(canvasWidth, canvasHeight)
}

func (o *Overlay) transformLocked(canvasWidth, canvasHeight float64) Transform {
	t := Transform{
		WidthScale:  1,
		HeightScale: 1,
		CanvasWidth: canvasWidth,
		Mirror:      o.frontFacing,
	}
	if o.previewWidth > 0 && o.previewHeight > 0 {
		t.WidthScale = canvasWidth / float64(o.previewWidth)
		t.HeightScale = canvasHeight / float64(o.previewHeight)
	}
	return t
}

// Draw paints every graphic onto c.
func (o *Overlay) Draw(c Canvas) {
	width, height := c.Size()

	o.mu.Lock()
	t := o.transformLocked(width, height)
	graphics := slices.Clone(o.graphics)
	o.mu.Unlock()

	for _, g := range graphics {
		g.Draw(c, t)
	}
}
