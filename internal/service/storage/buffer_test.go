package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"faceoverlay/internal/config"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/model"
	"faceoverlay/internal/repository/sqlite"
)

func newTestBuffer(t *testing.T, limit int) (*BufferService, *config.Config, *sqlite.DB) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ImageDirectory:           filepath.Join(dir, "images"),
		LogDirectory:             filepath.Join(dir, "logs"),
		ImageBufferLimit:         limit,
		ImageBufferFlushInterval: 1,
	}
	log := logger.NewLogger(cfg)
	t.Cleanup(func() { log.Close() })

	db, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewBufferService(cfg, log, sqlite.NewSnapshotRepository(db), sqlite.NewFaceRepository(db)), cfg, db
}

func TestBufferService_RespectsPerCameraLimit(t *testing.T) {
	buffer, _, _ := newTestBuffer(t, 2)

	for i := 0; i < 3; i++ {
		buffer.AddImage([]byte("jpeg"), "door", nil)
	}
	buffer.AddImage([]byte("jpeg"), "garage", nil)

	if buffer.Pending() != 3 {
		t.Errorf("Expected 3 buffered snapshots, got %d", buffer.Pending())
	}
}

func TestBufferService_FlushWritesFilesAndRecords(t *testing.T) {
	buffer, cfg, db := newTestBuffer(t, 5)

	faces := []model.Face{
		{ID: 4, Position: &model.Point{X: 10, Y: 20}, Width: 30, Height: 40},
		{ID: 6},
	}
	buffer.AddImage([]byte("first"), "door", faces)
	buffer.AddImage([]byte("second"), "door", nil)

	if saved := buffer.FlushImages(); saved != 2 {
		t.Fatalf("Expected 2 saved snapshots, got %d", saved)
	}
	if buffer.Pending() != 0 {
		t.Errorf("Expected empty buffer after flush, got %d", buffer.Pending())
	}

	files, err := os.ReadDir(cfg.ImageDirectory)
	if err != nil {
		t.Fatalf("Failed to read image directory: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files on disk, got %d", len(files))
	}

	snapshots, err := sqlite.NewSnapshotRepository(db).GetAll(nil)
	if err != nil || len(snapshots) != 2 {
		t.Fatalf("Expected 2 snapshot records, got %d (%v)", len(snapshots), err)
	}

	total := 0
	faceRepo := sqlite.NewFaceRepository(db)
	for _, s := range snapshots {
		records, err := faceRepo.GetBySnapshotID(s.ID)
		if err != nil {
			t.Fatalf("GetBySnapshotID failed: %v", err)
		}
		for _, r := range records {
			if r.FaceID == 4 && (r.X != 10 || r.Y != 20 || r.Width != 30) {
				t.Errorf("Unexpected record for face 4: %+v", r)
			}
		}
		total += len(records)
	}
	if total != 2 {
		t.Errorf("Expected 2 face records, got %d", total)
	}

	// the per-camera limit resets after a flush
	if !buffer.AddImage([]byte("third"), "door", nil) {
		t.Error("Expected buffer to accept snapshots after flush")
	}
}

func TestBufferService_RunFlushesOnStop(t *testing.T) {
	buffer, cfg, _ := newTestBuffer(t, 5)
	buffer.flushInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		buffer.Run(ctx)
		close(done)
	}()

	buffer.AddImage([]byte("pending"), "door", nil)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	files, _ := os.ReadDir(cfg.ImageDirectory)
	if len(files) != 1 {
		t.Errorf("Expected pending snapshot to be flushed on stop, got %d files", len(files))
	}
}

func TestBufferService_KeepsSnapshotsInsideImageDirectory(t *testing.T) {
	buffer, cfg, db := newTestBuffer(t, 5)

	buffer.AddImage([]byte("x"), "../../../escaped", []model.Face{{ID: 1}})
	buffer.AddImage([]byte("y"), `..\windows`, nil)
	if saved := buffer.FlushImages(); saved != 2 {
		t.Fatalf("Expected 2 saved snapshots, got %d", saved)
	}

	files, err := os.ReadDir(cfg.ImageDirectory)
	if err != nil {
		t.Fatalf("Failed to read image directory: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected both snapshots inside the image directory, got %d", len(files))
	}

	parent := filepath.Dir(cfg.ImageDirectory)
	entries, _ := os.ReadDir(parent)
	for _, e := range entries {
		if strings.Contains(e.Name(), "escaped") || strings.Contains(e.Name(), "windows") {
			t.Errorf("Snapshot escaped the image directory: %s", filepath.Join(parent, e.Name()))
		}
	}

	snapshots, err := sqlite.NewSnapshotRepository(db).GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	for _, s := range snapshots {
		if strings.ContainsAny(s.Filename, `/\`) || strings.Contains(s.Filename, "..") {
			t.Errorf("Stored filename %q is not a plain file name", s.Filename)
		}
		if filepath.Dir(s.FilePath) != cfg.ImageDirectory {
			t.Errorf("Stored path %q is outside %s", s.FilePath, cfg.ImageDirectory)
		}
	}
}
