package handler

import (
	"errors"
	"net/http"

	"faceoverlay/internal/dto"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/service"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxDetectionsBody = 1 << 20

type detectionsResponse struct {
	Camera  string `json:"camera"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Tracked int    `json:"tracked"`
}

type cameraStatus struct {
	Camera string `json:"camera"`
	Faces  int    `json:"faces"`
}

// DetectionsHandler receives face detection batches from the external tracker.
// POST replaces the faces of a camera, DELETE clears them.
func DetectionsHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		camera := r.URL.Query().Get("camera")
		if err := dto.ValidateCameraName(camera); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodPost:
			var batch dto.DetectionBatch
			r.Body = http.MaxBytesReader(w, r.Body, maxDetectionsBody)
			if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Invalid JSON body", http.StatusBadRequest)
				return
			}

			added, removed, err := manager.HandleDetections(camera, &batch)
			if err != nil {
				logger.Warning("Rejected detections for camera %s: %v", camera, err)
				status := http.StatusBadRequest
				if errors.Is(err, service.ErrTooManyCameras) || errors.Is(err, service.ErrStopped) {
					status = http.StatusServiceUnavailable
				}
				http.Error(w, err.Error(), status)
				return
			}

			writeJSON(w, logger, http.StatusOK, detectionsResponse{
				Camera:  camera,
				Added:   added,
				Removed: removed,
				Tracked: manager.TrackedFaces(camera),
			})

		case http.MethodDelete:
			manager.ClearDetections(camera)
			w.WriteHeader(http.StatusNoContent)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// CamerasHandler lists known cameras with the number of faces currently drawn.
func CamerasHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cameras := manager.Cameras()
		statuses := make([]cameraStatus, 0, len(cameras))
		for _, camera := range cameras {
			statuses = append(statuses, cameraStatus{Camera: camera, Faces: manager.TrackedFaces(camera)})
		}
		writeJSON(w, logger, http.StatusOK, statuses)
	}
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
