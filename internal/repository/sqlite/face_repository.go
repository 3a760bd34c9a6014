package sqlite

import (
	"fmt"

	"faceoverlay/internal/model"
)

// FaceRepository implements repository.FaceRepository for SQLite.
type FaceRepository struct {
	db *DB
}

func NewFaceRepository(db *DB) *FaceRepository {
	return &FaceRepository{db: db}
}

// Insert adds a single face record.
func (r *FaceRepository) Insert(f *model.FaceRecord) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO faces (snapshot_id, face_id, x, y, width, height)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.SnapshotID, f.FaceID, f.X, f.Y, f.Width, f.Height)
	if err != nil {
		return 0, fmt.Errorf("failed to insert face: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple face records in a single transaction.
func (r *FaceRepository) InsertBatch(faces []model.FaceRecord) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO faces (snapshot_id, face_id, x, y, width, height)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range faces {
		if _, err := stmt.Exec(f.SnapshotID, f.FaceID, f.X, f.Y, f.Width, f.Height); err != nil {
			return fmt.Errorf("failed to insert face: %w", err)
		}
	}

	return tx.Commit()
}

func (r *FaceRepository) GetBySnapshotID(snapshotID int64) ([]model.FaceRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, snapshot_id, face_id, x, y, width, height
		FROM faces WHERE snapshot_id = ? ORDER BY face_id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query faces: %w", err)
	}
	defer rows.Close()

	var faces []model.FaceRecord
	for rows.Next() {
		var f model.FaceRecord
		if err := rows.Scan(&f.ID, &f.SnapshotID, &f.FaceID, &f.X, &f.Y, &f.Width, &f.Height); err != nil {
			return nil, fmt.Errorf("failed to scan face: %w", err)
		}
		faces = append(faces, f)
	}

	return faces, rows.Err()
}

// GetFaceIDsBySnapshotID returns the distinct tracker ids seen on a snapshot.
func (r *FaceRepository) GetFaceIDsBySnapshotID(snapshotID int64) ([]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT face_id FROM faces WHERE snapshot_id = ? ORDER BY face_id`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query face ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan face id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *FaceRepository) DeleteBySnapshotID(snapshotID int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM faces WHERE snapshot_id = ?`, snapshotID); err != nil {
		return fmt.Errorf("failed to delete faces: %w", err)
	}
	return nil
}
