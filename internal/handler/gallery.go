package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"faceoverlay/internal/config"
	"faceoverlay/internal/dto"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/repository"

	"github.com/disintegration/imaging"
)

const (
	defaultPageSize   = 24
	defaultThumbWidth = 320
	maxThumbWidth     = 1280
)

// GetSnapshotsHandler returns a filtered, paginated list of stored snapshots.
func GetSnapshotsHandler(cfg *config.Config, logger *logger.Logger,
	snapshotRepo repository.SnapshotRepository, faceRepo repository.FaceRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), defaultPageSize)

		filter := &dto.SnapshotFilters{
			Camera:     q.Get("camera"),
			DateAfter:  parseDate(q.Get("dateAfter")),
			DateBefore: parseDate(q.Get("dateBefore")),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}
		if v := q.Get("face"); v != "" {
			faceID, err := strconv.Atoi(v)
			if err != nil || faceID < 0 {
				http.Error(w, "Invalid face parameter", http.StatusBadRequest)
				return
			}
			filter.FaceID = &faceID
		}

		snapshots, err := snapshotRepo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying snapshots from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalSize, err := snapshotRepo.GetDirectorySize()
		if err != nil {
			logger.Error("Error getting snapshot directory size: %v", err)
			totalSize = 0
		}

		totalCount, err := snapshotRepo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting snapshots: %v", err)
			totalCount = len(snapshots)
		}

		infos := make([]dto.SnapshotInfo, 0, len(snapshots))
		for _, s := range snapshots {
			faces := []int{}
			if faceRepo != nil {
				if ids, err := faceRepo.GetFaceIDsBySnapshotID(s.ID); err != nil {
					logger.Error("Error getting faces for snapshot %d: %v", s.ID, err)
				} else if ids != nil {
					faces = ids
				}
			}

			infos = append(infos, dto.SnapshotInfo{
				Name:      s.Filename,
				Date:      s.Timestamp,
				TimeOfDay: s.Timestamp,
				Camera:    s.Camera,
				Faces:     faces,
			})
		}

		writeJSON(w, logger, http.StatusOK, dto.SnapshotsData{
			Snapshots:   infos,
			ImagesDir:   cfg.ImageDirectory,
			Size:        totalSize,
			MaxSize:     cfg.MaxImageDirectorySize,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		})
	}
}

// GetStatsHandler returns aggregate snapshot statistics.
func GetStatsHandler(logger *logger.Logger, snapshotRepo repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := snapshotRepo.GetStats()
		if err != nil {
			logger.Error("Error getting snapshot stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, logger, http.StatusOK, stats)
	}
}

// ViewSnapshotHandler serves a single snapshot specified via the "image" query parameter.
func ViewSnapshotHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := snapshotPath(cfg, r.URL.Query().Get("image"))
		if !ok {
			http.Error(w, "Image parameter is required", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, path)
	}
}

// ThumbnailHandler serves a downscaled JPEG of a snapshot; "width" bounds the thumbnail size.
func ThumbnailHandler(cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := snapshotPath(cfg, r.URL.Query().Get("image"))
		if !ok {
			http.Error(w, "Image parameter is required", http.StatusBadRequest)
			return
		}

		width := atoiDefault(r.URL.Query().Get("width"), defaultThumbWidth)
		if width > maxThumbWidth {
			width = maxThumbWidth
		}

		img, err := imaging.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			logger.Error("Error opening snapshot %s: %v", path, err)
			http.Error(w, "Unable to open image", http.StatusInternalServerError)
			return
		}

		thumb := imaging.Fit(img, width, width, imaging.Lanczos)

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "max-age=3600")
		if err := imaging.Encode(w, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
			logger.Error("Error encoding thumbnail: %v", err)
		}
	}
}

// DeleteSnapshotHandler removes a snapshot from disk and database.
func DeleteSnapshotHandler(cfg *config.Config, logger *logger.Logger, snapshotRepo repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !destructiveMethod(w, r) {
			return
		}

		filename := r.URL.Query().Get("filename")
		path, ok := snapshotPath(cfg, filename)
		if !ok {
			http.Error(w, "Filename required", http.StatusBadRequest)
			return
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Error("Failed to delete file %s: %v", path, err)
		}

		if snapshotRepo != nil {
			if err := snapshotRepo.DeleteByFilename(filepath.Base(path)); err != nil {
				logger.Error("Failed to delete from database: %v", err)
			}
		}

		logger.Info("Deleted snapshot: %s", filename)
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "deleted", "filename": filename})
	}
}

// ClearSnapshotsHandler deletes all files from the image directory and clears the database.
func ClearSnapshotsHandler(cfg *config.Config, logger *logger.Logger, snapshotRepo repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !destructiveMethod(w, r) {
			return
		}

		files, err := os.ReadDir(cfg.ImageDirectory)
		if err != nil && !os.IsNotExist(err) {
			logger.Error("Error reading snapshot directory: %v", err)
			http.Error(w, "Unable to read snapshot directory", http.StatusInternalServerError)
			return
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(cfg.ImageDirectory, file.Name())); err != nil {
				logger.Error("Error deleting file %s: %v", file.Name(), err)
			}
		}

		if snapshotRepo != nil {
			if err := snapshotRepo.DeleteAll(); err != nil {
				logger.Error("Error clearing database: %v", err)
			}
		}

		logger.Info("All snapshots cleared from directory: %s", cfg.ImageDirectory)
		w.WriteHeader(http.StatusNoContent)
	}
}

// destructiveMethod allows only POST and DELETE, answering 405 otherwise.
func destructiveMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost || r.Method == http.MethodDelete {
		return true
	}
	w.Header().Set("Allow", "POST, DELETE")
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// snapshotPath resolves a snapshot name inside the image directory, rejecting path tricks.
func snapshotPath(cfg *config.Config, name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", false
	}
	return filepath.Join(cfg.ImageDirectory, name), true
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate parses a date string in the format "2006-01-02" (HTML input format).
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}
	}
	return t
}
