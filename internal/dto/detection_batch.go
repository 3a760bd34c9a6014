package dto

import (
	"fmt"

	"faceoverlay/internal/model"
)

const (
	FacingBack  = "back"
	FacingFront = "front"
)

var validate = newValidator()

// DetectionBatch is the set of faces an external tracker saw on one frame of a camera.
type DetectionBatch struct {
	PreviewWidth  int           `json:"previewWidth" validate:"gte=0"`
	PreviewHeight int           `json:"previewHeight" validate:"gte=0"`
	Facing        string        `json:"facing" validate:"omitempty,oneof=back front"`
	Faces         []FacePayload `json:"faces" validate:"dive"`
}

// FacePayload is one face of a DetectionBatch. Landmarks are optional.
type FacePayload struct {
	ID          int           `json:"id" validate:"gte=0"`
	Position    *PointPayload `json:"position"`
	Width       float64       `json:"width" validate:"gte=0"`
	Height      float64       `json:"height" validate:"gte=0"`
	LeftEye     *PointPayload `json:"leftEye"`
	RightEye    *PointPayload `json:"rightEye"`
	NoseBase    *PointPayload `json:"noseBase"`
	MouthLeft   *PointPayload `json:"mouthLeft"`
	MouthRight  *PointPayload `json:"mouthRight"`
	MouthBottom *PointPayload `json:"mouthBottom"`
}

type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Validate checks the batch structure. Missing landmarks are not an error.
func (b *DetectionBatch) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid detection batch: %w", err)
	}
	seen := make(map[int]bool, len(b.Faces))
	for _, face := range b.Faces {
		if seen[face.ID] {
			return fmt.Errorf("invalid detection batch: duplicate face id %d", face.ID)
		}
		seen[face.ID] = true
	}
	return nil
}

// FrontFacing reports whether the frames come from a mirrored (front) camera.
func (b *DetectionBatch) FrontFacing() bool {
	return b.Facing == FacingFront
}

// ToFaces converts the payload into detection results.
func (b *DetectionBatch) ToFaces() []*model.Face {
	faces := make([]*model.Face, 0, len(b.Faces))
	for _, f := range b.Faces {
		faces = append(faces, f.ToFace())
	}
	return faces
}

func (f FacePayload) ToFace() *model.Face {
	return &model.Face{
		ID:          f.ID,
		Position:    f.Position.toPoint(),
		Width:       f.Width,
		Height:      f.Height,
		LeftEye:     f.LeftEye.toPoint(),
		RightEye:    f.RightEye.toPoint(),
		NoseBase:    f.NoseBase.toPoint(),
		MouthLeft:   f.MouthLeft.toPoint(),
		MouthRight:  f.MouthRight.toPoint(),
		MouthBottom: f.MouthBottom.toPoint(),
	}
}

func (p *PointPayload) toPoint() *model.Point {
	if p == nil {
		return nil
	}
	return &model.Point{X: p.X, Y: p.Y}
}
