package model

import "time"

// Snapshot represents an annotated frame stored on disk.
type Snapshot struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Camera    string    `json:"camera"`
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"filepath"`
	FileSize  int64     `json:"filesize"`
}

// FaceRecord is a face seen on a stored snapshot, in detector coordinates.
type FaceRecord struct {
	ID         int64   `json:"id"`
	SnapshotID int64   `json:"snapshot_id"`
	FaceID     int     `json:"face_id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// SnapshotStats contains statistics about stored snapshots.
type SnapshotStats struct {
	TotalSnapshots int            `json:"total_snapshots"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	PerCamera      map[string]int `json:"per_camera"`
	DistinctFaces  int            `json:"distinct_faces"`
}
