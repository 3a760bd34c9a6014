package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"faceoverlay/internal/dto"
	"faceoverlay/internal/model"
)

// SnapshotRepository implements repository.SnapshotRepository for SQLite.
type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `s.id, s.filename, s.camera, s.timestamp, s.filepath, s.filesize`

// Insert adds a new snapshot record to the database.
func (r *SnapshotRepository) Insert(s *model.Snapshot) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO snapshots (filename, camera, timestamp, filepath, filesize)
		VALUES (?, ?, ?, ?, ?)
	`, s.Filename, s.Camera, s.Timestamp, s.FilePath, s.FileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return result.LastInsertId()
}

// GetByID returns nil when no snapshot has the id.
func (r *SnapshotRepository) GetByID(id int64) (*model.Snapshot, error) {
	return r.getOne(`SELECT `+snapshotColumns+` FROM snapshots s WHERE s.id = ?`, id)
}

// GetByFilename returns nil when no snapshot has the filename.
func (r *SnapshotRepository) GetByFilename(filename string) (*model.Snapshot, error) {
	return r.getOne(`SELECT `+snapshotColumns+` FROM snapshots s WHERE s.filename = ?`, filename)
}

func (r *SnapshotRepository) getOne(query string, arg interface{}) (*model.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var s model.Snapshot
	err := r.db.Conn().QueryRow(query, arg).
		Scan(&s.ID, &s.Filename, &s.Camera, &s.Timestamp, &s.FilePath, &s.FileSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &s, nil
}

// whereClause builds the filter conditions shared by GetAll and GetTotalCount.
func whereClause(filter *dto.SnapshotFilters) (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return clause, args
	}

	if filter.Camera != "" {
		clause += " AND s.camera = ?"
		args = append(args, filter.Camera)
	}

	if filter.FaceID != nil {
		clause += " AND f.face_id = ?"
		args = append(args, *filter.FaceID)
	}

	if !filter.DateAfter.IsZero() {
		clause += " AND DATE(s.timestamp) >= DATE(?)"
		args = append(args, filter.DateAfter.Format("2006-01-02"))
	}

	if !filter.DateBefore.IsZero() {
		clause += " AND DATE(s.timestamp) <= DATE(?)"
		args = append(args, filter.DateBefore.Format("2006-01-02"))
	}

	return clause, args
}

// GetAll retrieves snapshots matching the filter, newest first.
func (r *SnapshotRepository) GetAll(filter *dto.SnapshotFilters) ([]model.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT DISTINCT ` + snapshotColumns + `
		FROM snapshots s
		LEFT JOIN faces f ON s.id = f.snapshot_id` + where + `
		ORDER BY s.timestamp DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		var s model.Snapshot
		if err := rows.Scan(&s.ID, &s.Filename, &s.Camera, &s.Timestamp, &s.FilePath, &s.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// GetTotalCount returns the number of snapshots matching the filter.
func (r *SnapshotRepository) GetTotalCount(filter *dto.SnapshotFilters) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT COUNT(DISTINCT s.id)
		FROM snapshots s
		LEFT JOIN faces f ON s.id = f.snapshot_id` + where

	var count int
	if err := r.db.Conn().QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// GetDirectorySize returns the total size in bytes of stored snapshots.
func (r *SnapshotRepository) GetDirectorySize() (int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var size int64
	if err := r.db.Conn().QueryRow(`SELECT COALESCE(SUM(filesize), 0) FROM snapshots`).Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to sum snapshot sizes: %w", err)
	}
	return size, nil
}

// GetCameras returns a list of unique camera names.
func (r *SnapshotRepository) GetCameras() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT camera FROM snapshots ORDER BY camera`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	var cameras []string
	for rows.Next() {
		var camera string
		if err := rows.Scan(&camera); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, camera)
	}
	return cameras, rows.Err()
}

// GetStats returns statistics about stored snapshots.
func (r *SnapshotRepository) GetStats() (*model.SnapshotStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.SnapshotStats{
		PerCamera: make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*), COALESCE(SUM(filesize), 0) FROM snapshots`).
		Scan(&stats.TotalSnapshots, &stats.TotalSizeBytes); err != nil {
		return nil, fmt.Errorf("failed to count snapshots: %w", err)
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(DISTINCT face_id) FROM faces`).Scan(&stats.DistinctFaces); err != nil {
		return nil, fmt.Errorf("failed to count faces: %w", err)
	}

	rows, err := r.db.Conn().Query(`SELECT camera, COUNT(*) FROM snapshots GROUP BY camera`)
	if err != nil {
		return nil, fmt.Errorf("failed to group snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var camera string
		var count int
		if err := rows.Scan(&camera, &count); err != nil {
			return nil, fmt.Errorf("failed to scan camera count: %w", err)
		}
		stats.PerCamera[camera] = count
	}

	return stats, rows.Err()
}

// Delete removes a snapshot and its faces.
func (r *SnapshotRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	return r.deleteLocked(id)
}

// DeleteByFilename removes a snapshot by filename. Unknown filenames are ignored.
func (r *SnapshotRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	var id int64
	err := r.db.Conn().QueryRow(`SELECT id FROM snapshots WHERE filename = ?`, filename).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get snapshot id: %w", err)
	}

	return r.deleteLocked(id)
}

func (r *SnapshotRepository) deleteLocked(id int64) error {
	if _, err := r.db.Conn().Exec(`DELETE FROM faces WHERE snapshot_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete faces: %w", err)
	}
	if _, err := r.db.Conn().Exec(`DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// DeleteAll removes all snapshots and their faces.
func (r *SnapshotRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM faces`); err != nil {
		return fmt.Errorf("failed to delete faces: %w", err)
	}
	if _, err := r.db.Conn().Exec(`DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
