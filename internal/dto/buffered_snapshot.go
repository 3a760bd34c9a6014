package dto

import "faceoverlay/internal/model"

// BufferedSnapshot holds an annotated frame and the faces drawn on it before flushing to disk.
type BufferedSnapshot struct {
	Timestamp string
	Camera    string
	Faces     []model.Face
	Data      []byte
}
