package tracker

import (
	"sort"
	"sync"

	"faceoverlay/internal/dto"
	"faceoverlay/internal/model"
	"faceoverlay/internal/overlay"
)

// Tracker keeps one FaceGraphic per tracked face id on a camera overlay.
type Tracker struct {
	overlay  *overlay.Overlay
	graphics map[int]*overlay.FaceGraphic
	mu       sync.Mutex
}

func New(ov *overlay.Overlay) *Tracker {
	return &Tracker{
		overlay:  ov,
		graphics: make(map[int]*overlay.FaceGraphic),
	}
}

// Apply brings the overlay in line with a detection batch: new faces get a
// graphic, known faces are updated and faces missing from the batch are removed.
func (t *Tracker) Apply(batch *dto.DetectionBatch) (added, removed int) {
	t.overlay.SetCameraInfo(batch.PreviewWidth, batch.PreviewHeight, batch.FrontFacing())

	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[int]bool, len(batch.Faces))
	for _, face := range batch.ToFaces() {
		seen[face.ID] = true

		graphic, ok := t.graphics[face.ID]
		if !ok {
			graphic = overlay.NewFaceGraphic(t.overlay)
			t.graphics[face.ID] = graphic
			t.overlay.Add(graphic)
			added++
		}
		graphic.Update(face)
	}

	for id, graphic := range t.graphics {
		if seen[id] {
			continue
		}
		t.overlay.Remove(graphic)
		delete(t.graphics, id)
		removed++
	}

	return added, removed
}

// Reset forgets every tracked face.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.graphics = make(map[int]*overlay.FaceGraphic)
	t.overlay.Clear()
}

// Faces returns a copy of the latest result of every tracked face, ordered by id.
func (t *Tracker) Faces() []model.Face {
	t.mu.Lock()
	defer t.mu.Unlock()

	faces := make([]model.Face, 0, len(t.graphics))
	for _, graphic := range t.graphics {
		if face := graphic.Face(); face != nil {
			faces = append(faces, *face)
		}
	}
	sort.Slice(faces, func(i, j int) bool { return faces[i].ID < faces[j].ID })
	return faces
}
