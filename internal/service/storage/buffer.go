package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"faceoverlay/internal/config"
	"faceoverlay/internal/dto"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/model"
	"faceoverlay/internal/repository"

	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02_15-04-05.000"

// BufferService buffers annotated snapshots in memory and periodically flushes them to disk.
type BufferService struct {
	imagesDir     string
	limit         int
	flushInterval time.Duration
	snapshots     []dto.BufferedSnapshot
	bufferCount   map[string]int
	mu            sync.Mutex
	logger        *logger.Logger
	snapshotRepo  repository.SnapshotRepository
	faceRepo      repository.FaceRepository
}

// NewBufferService creates a new BufferService. Repositories may be nil, in which case
// snapshots are only written to disk.
func NewBufferService(config *config.Config, logger *logger.Logger, snapshotRepo repository.SnapshotRepository, faceRepo repository.FaceRepository) *BufferService {
	return &BufferService{
		imagesDir:     config.ImageDirectory,
		limit:         config.ImageBufferLimit,
		flushInterval: time.Duration(config.ImageBufferFlushInterval) * time.Second,
		snapshots:     make([]dto.BufferedSnapshot, 0),
		bufferCount:   make(map[string]int),
		logger:        logger,
		snapshotRepo:  snapshotRepo,
		faceRepo:      faceRepo,
	}
}

// Run flushes the buffer on every tick until ctx is done, then flushes once more.
func (s *BufferService) Run(ctx context.Context) {
	interval := s.flushInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushImages()
			return
		case <-ticker.C:
			s.FlushImages()
		}
	}
}

// AddImage appends a snapshot to the buffer. Snapshots over the per-camera limit are dropped.
func (s *BufferService) AddImage(imageData []byte, camera string, faces []model.Face) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferCount[camera] >= s.limit {
		return false
	}

	s.snapshots = append(s.snapshots, dto.BufferedSnapshot{
		Timestamp: time.Now().Format(timestampLayout),
		Camera:    camera,
		Faces:     faces,
		Data:      imageData,
	})
	s.bufferCount[camera]++
	s.logger.Info("Buffer size for camera %s: %d/%d", camera, s.bufferCount[camera], s.limit)
	return true
}

// Pending returns the number of buffered snapshots.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// FlushImages writes buffered snapshots to disk and the database, then resets the buffer.
func (s *BufferService) FlushImages() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) == 0 {
		return 0
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		s.logger.Error("Error creating directory: %v", err)
		return 0
	}

	savedCount := 0
	for _, snapshot := range s.snapshots {
		if err := s.save(snapshot); err != nil {
			s.logger.Error("%v", err)
			continue
		}
		savedCount++
	}

	s.logger.Info("Flushed %d snapshots to disk", savedCount)
	s.snapshots = s.snapshots[:0]
	s.bufferCount = make(map[string]int)
	return savedCount
}

func (s *BufferService) save(snapshot dto.BufferedSnapshot) error {
	camera := dto.SanitizeCameraName(snapshot.Camera)
	filename := fmt.Sprintf("%s_%s_%s.jpg", snapshot.Timestamp, camera, uuid.NewString()[:8])
	fullpath := filepath.Join(s.imagesDir, filename)

	if err := os.WriteFile(fullpath, snapshot.Data, 0644); err != nil {
		return fmt.Errorf("error saving snapshot %s: %w", filename, err)
	}

	if s.snapshotRepo == nil {
		return nil
	}

	ts, err := time.ParseInLocation(timestampLayout, snapshot.Timestamp, time.Local)
	if err != nil {
		ts = time.Now()
	}

	snapshotID, err := s.snapshotRepo.Insert(&model.Snapshot{
		Filename:  filename,
		Camera:    camera,
		Timestamp: ts,
		FilePath:  fullpath,
		FileSize:  int64(len(snapshot.Data)),
	})
	if err != nil {
		return fmt.Errorf("error saving snapshot %s to database: %w", filename, err)
	}

	if s.faceRepo == nil || len(snapshot.Faces) == 0 {
		return nil
	}

	records := make([]model.FaceRecord, 0, len(snapshot.Faces))
	for _, face := range snapshot.Faces {
		record := model.FaceRecord{
			SnapshotID: snapshotID,
			FaceID:     face.ID,
			Width:      face.Width,
			Height:     face.Height,
		}
		if face.Position != nil {
			record.X = face.Position.X
			record.Y = face.Position.Y
		}
		records = append(records, record)
	}
	if err := s.faceRepo.InsertBatch(records); err != nil {
		return fmt.Errorf("error saving faces of %s to database: %w", filename, err)
	}
	return nil
}
