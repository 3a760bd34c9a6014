package render

import (
	"fmt"

	"faceoverlay/internal/overlay"
	"faceoverlay/internal/overlay/cvcanvas"

	"gocv.io/x/gocv"
)

// MatRenderer paints an overlay onto JPEG frames using OpenCV.
type MatRenderer struct {
	quality int
}

// NewMatRenderer creates a renderer that re-encodes frames with the given JPEG quality (1-100).
func NewMatRenderer(quality int) *MatRenderer {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &MatRenderer{quality: quality}
}

// Render decodes frame, draws every graphic of ov on it and returns the re-encoded JPEG.
func (r *MatRenderer) Render(frame []byte, ov *overlay.Overlay) ([]byte, error) {
	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	canvas := cvcanvas.New(&mat)
	ov.Draw(canvas)
	if err := canvas.Err(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, r.quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	finalImage := make([]byte, buf.Len())
	copy(finalImage, buf.GetBytes())
	return finalImage, nil
}
