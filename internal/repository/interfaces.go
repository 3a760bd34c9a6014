package repository

import (
	"faceoverlay/internal/dto"
	"faceoverlay/internal/model"
)

// SnapshotRepository defines the interface for snapshot data operations.
type SnapshotRepository interface {
	// Create operations
	Insert(s *model.Snapshot) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Snapshot, error)
	GetByFilename(filename string) (*model.Snapshot, error)
	GetAll(filter *dto.SnapshotFilters) ([]model.Snapshot, error)
	GetTotalCount(filter *dto.SnapshotFilters) (int, error)
	GetDirectorySize() (int64, error)
	GetCameras() ([]string, error)
	GetStats() (*model.SnapshotStats, error)

	// Delete operations
	Delete(id int64) error
	DeleteByFilename(filename string) error
	DeleteAll() error
}

// FaceRepository defines the interface for face record operations.
type FaceRepository interface {
	// Create operations
	Insert(f *model.FaceRecord) (int64, error)
	InsertBatch(faces []model.FaceRecord) error

	// Read operations
	GetBySnapshotID(snapshotID int64) ([]model.FaceRecord, error)
	GetFaceIDsBySnapshotID(snapshotID int64) ([]int, error)

	// Delete operations
	DeleteBySnapshotID(snapshotID int64) error
}
