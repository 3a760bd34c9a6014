package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"faceoverlay/internal/dto"
	"faceoverlay/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertSnapshot(t *testing.T, repo *SnapshotRepository, name, camera string, ts time.Time, size int64) int64 {
	t.Helper()
	id, err := repo.Insert(&model.Snapshot{
		Filename:  name,
		Camera:    camera,
		Timestamp: ts,
		FilePath:  "/images/" + name,
		FileSize:  size,
	})
	if err != nil {
		t.Fatalf("Failed to insert snapshot %s: %v", name, err)
	}
	return id
}

func TestDatabase_CreatesFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "faces.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should exist")
	}
}

func TestSnapshotRepository_InsertAndGet(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))
	ts := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	id := insertSnapshot(t, repo, "a.jpg", "door", ts, 1024)

	byID, err := repo.GetByID(id)
	if err != nil || byID == nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Filename != "a.jpg" || byID.Camera != "door" || byID.FileSize != 1024 {
		t.Errorf("Unexpected snapshot %+v", byID)
	}
	if !byID.Timestamp.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, byID.Timestamp)
	}

	byName, err := repo.GetByFilename("a.jpg")
	if err != nil || byName == nil || byName.ID != id {
		t.Errorf("GetByFilename returned %+v, %v", byName, err)
	}

	missing, err := repo.GetByFilename("nope.jpg")
	if err != nil || missing != nil {
		t.Errorf("Expected nil for missing snapshot, got %+v, %v", missing, err)
	}
}

func TestSnapshotRepository_DuplicateFilename(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))
	insertSnapshot(t, repo, "dup.jpg", "door", time.Now().UTC(), 1)

	if _, err := repo.Insert(&model.Snapshot{Filename: "dup.jpg", Camera: "door", Timestamp: time.Now().UTC(), FilePath: "x"}); err == nil {
		t.Error("Expected unique constraint violation")
	}
}

func TestSnapshotRepository_Filters(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)
	faces := NewFaceRepository(db)

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	a := insertSnapshot(t, repo, "a.jpg", "door", day1, 100)
	b := insertSnapshot(t, repo, "b.jpg", "garage", day2, 200)
	insertSnapshot(t, repo, "c.jpg", "door", day3, 300)

	if err := faces.InsertBatch([]model.FaceRecord{
		{SnapshotID: a, FaceID: 1, X: 1, Y: 2, Width: 3, Height: 4},
		{SnapshotID: a, FaceID: 2},
		{SnapshotID: b, FaceID: 2},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	faceTwo := 2
	tests := []struct {
		name     string
		filter   *dto.SnapshotFilters
		expected []string
	}{
		{"no filter", nil, []string{"c.jpg", "b.jpg", "a.jpg"}},
		{"camera", &dto.SnapshotFilters{Camera: "door"}, []string{"c.jpg", "a.jpg"}},
		{"face id", &dto.SnapshotFilters{FaceID: &faceTwo}, []string{"b.jpg", "a.jpg"}},
		{"date range", &dto.SnapshotFilters{DateAfter: day2, DateBefore: day3}, []string{"c.jpg", "b.jpg"}},
		{"pagination", &dto.SnapshotFilters{Limit: 1, Offset: 1}, []string{"b.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots, err := repo.GetAll(tt.filter)
			if err != nil {
				t.Fatalf("GetAll failed: %v", err)
			}
			if len(snapshots) != len(tt.expected) {
				t.Fatalf("Expected %d snapshots, got %d", len(tt.expected), len(snapshots))
			}
			for i, name := range tt.expected {
				if snapshots[i].Filename != name {
					t.Errorf("snapshot %d = %s, expected %s", i, snapshots[i].Filename, name)
				}
			}
		})
	}

	count, err := repo.GetTotalCount(&dto.SnapshotFilters{FaceID: &faceTwo})
	if err != nil || count != 2 {
		t.Errorf("Expected 2 snapshots with face 2, got %d (%v)", count, err)
	}

	size, err := repo.GetDirectorySize()
	if err != nil || size != 600 {
		t.Errorf("Expected total size 600, got %d (%v)", size, err)
	}

	cameras, err := repo.GetCameras()
	if err != nil || len(cameras) != 2 || cameras[0] != "door" {
		t.Errorf("Unexpected cameras %v (%v)", cameras, err)
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalSnapshots != 3 || stats.DistinctFaces != 2 || stats.PerCamera["door"] != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestFaceRepository_ReadBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)
	faces := NewFaceRepository(db)

	id := insertSnapshot(t, repo, "a.jpg", "door", time.Now().UTC(), 1)
	if _, err := faces.Insert(&model.FaceRecord{SnapshotID: id, FaceID: 5, X: 10, Y: 20, Width: 30, Height: 40}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := faces.Insert(&model.FaceRecord{SnapshotID: id, FaceID: 3}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	records, err := faces.GetBySnapshotID(id)
	if err != nil {
		t.Fatalf("GetBySnapshotID failed: %v", err)
	}
	if len(records) != 2 || records[1].FaceID != 5 || records[1].Width != 30 {
		t.Errorf("Unexpected records %+v", records)
	}

	ids, err := faces.GetFaceIDsBySnapshotID(id)
	if err != nil || len(ids) != 2 || ids[0] != 3 || ids[1] != 5 {
		t.Errorf("Unexpected face ids %v (%v)", ids, err)
	}

	if err := faces.DeleteBySnapshotID(id); err != nil {
		t.Fatalf("DeleteBySnapshotID failed: %v", err)
	}
	if ids, _ := faces.GetFaceIDsBySnapshotID(id); len(ids) != 0 {
		t.Errorf("Expected no faces after delete, got %v", ids)
	}
}

func TestSnapshotRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepository(db)
	faces := NewFaceRepository(db)

	a := insertSnapshot(t, repo, "a.jpg", "door", time.Now().UTC(), 1)
	b := insertSnapshot(t, repo, "b.jpg", "door", time.Now().UTC(), 1)
	faces.Insert(&model.FaceRecord{SnapshotID: a, FaceID: 1})

	if err := repo.DeleteByFilename("a.jpg"); err != nil {
		t.Fatalf("DeleteByFilename failed: %v", err)
	}
	if s, _ := repo.GetByID(a); s != nil {
		t.Error("Snapshot a should be deleted")
	}
	if ids, _ := faces.GetFaceIDsBySnapshotID(a); len(ids) != 0 {
		t.Error("Faces of snapshot a should be deleted")
	}
	if err := repo.DeleteByFilename("a.jpg"); err != nil {
		t.Errorf("Deleting a missing filename should not fail: %v", err)
	}

	if err := repo.Delete(b); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	insertSnapshot(t, repo, "c.jpg", "door", time.Now().UTC(), 1)
	if err := repo.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if count, _ := repo.GetTotalCount(nil); count != 0 {
		t.Errorf("Expected empty table, got %d", count)
	}
}
