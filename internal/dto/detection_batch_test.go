package dto

import (
	"strings"
	"testing"
	"time"
)

func completePayload(id int) FacePayload {
	return FacePayload{
		ID:          id,
		Position:    &PointPayload{X: 100, Y: 80},
		Width:       60,
		Height:      90,
		LeftEye:     &PointPayload{X: 115, Y: 110},
		RightEye:    &PointPayload{X: 145, Y: 110},
		NoseBase:    &PointPayload{X: 130, Y: 130},
		MouthLeft:   &PointPayload{X: 118, Y: 150},
		MouthRight:  &PointPayload{X: 142, Y: 150},
		MouthBottom: &PointPayload{X: 130, Y: 158},
	}
}

func TestDetectionBatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		batch   DetectionBatch
		wantErr string
	}{
		{"empty batch", DetectionBatch{}, ""},
		{"front facing", DetectionBatch{Facing: FacingFront, Faces: []FacePayload{completePayload(1)}}, ""},
		{"missing landmarks allowed", DetectionBatch{Faces: []FacePayload{{ID: 2, Width: 10, Height: 10}}}, ""},
		{"unknown facing", DetectionBatch{Facing: "sideways"}, "Facing"},
		{"negative preview", DetectionBatch{PreviewWidth: -1}, "PreviewWidth"},
		{"negative width", DetectionBatch{Faces: []FacePayload{{ID: 1, Width: -5}}}, "Width"},
		{"negative id", DetectionBatch{Faces: []FacePayload{{ID: -1}}}, "ID"},
		{"duplicate id", DetectionBatch{Faces: []FacePayload{completePayload(3), completePayload(3)}}, "duplicate face id 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.batch.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDetectionBatch_ToFaces(t *testing.T) {
	partial := completePayload(7)
	partial.NoseBase = nil
	batch := DetectionBatch{Faces: []FacePayload{completePayload(4), partial}}

	faces := batch.ToFaces()
	if len(faces) != 2 {
		t.Fatalf("Expected 2 faces, got %d", len(faces))
	}

	if faces[0].ID != 4 || !faces[0].Complete() {
		t.Errorf("Expected complete face 4, got %+v", faces[0])
	}
	if faces[0].MouthBottom.X != 130 || faces[0].MouthBottom.Y != 158 {
		t.Errorf("Mouth bottom not copied: %+v", faces[0].MouthBottom)
	}
	if faces[1].NoseBase != nil {
		t.Error("Absent nose base should stay nil")
	}
	if faces[1].Complete() {
		t.Error("Face without nose base should not be complete")
	}
}

func TestDetectionBatch_FrontFacing(t *testing.T) {
	if (&DetectionBatch{}).FrontFacing() {
		t.Error("Empty facing should mean back camera")
	}
	if !(&DetectionBatch{Facing: FacingFront}).FrontFacing() {
		t.Error("Expected front-facing")
	}
}

func TestSnapshotInfo_MarshalJSON(t *testing.T) {
	info := SnapshotInfo{
		Name:      "snap.jpg",
		Date:      time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
		TimeOfDay: time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
		Camera:    "door",
		Faces:     []int{1, 2},
	}

	data, err := info.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	jsonStr := string(data)
	for _, want := range []string{`"date":"15-06-2025"`, `"timeOfDay":"14:30"`, `"camera":"door"`, `"faces":[1,2]`} {
		if !strings.Contains(jsonStr, want) {
			t.Errorf("Expected %s in %s", want, jsonStr)
		}
	}
}
