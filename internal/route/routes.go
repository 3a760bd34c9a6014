package route

import (
	"net/http"
	"os"
	"path/filepath"

	"faceoverlay/internal/config"
	"faceoverlay/internal/handler"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/middleware"
	"faceoverlay/internal/repository"
	"faceoverlay/internal/service"
)

const staticDir = "static"

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(manager *service.Manager, cfg *config.Config, logger *logger.Logger,
	snapshotRepo repository.SnapshotRepository, faceRepo repository.FaceRepository) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// Camera and tracker ingest
	mux.HandleFunc("/camera/upload", handler.CameraUploadHandler(manager, logger))
	mux.HandleFunc("/api/detections", handler.DetectionsHandler(manager, logger))

	// Viewer endpoints
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(manager, logger))
	mux.HandleFunc("/api/cameras", handler.CamerasHandler(manager, logger))

	// Snapshot gallery
	mux.HandleFunc("/api/snapshots", handler.GetSnapshotsHandler(cfg, logger, snapshotRepo, faceRepo))
	mux.HandleFunc("/api/snapshots/stats", handler.GetStatsHandler(logger, snapshotRepo))
	mux.HandleFunc("/api/snapshots/view", handler.ViewSnapshotHandler(cfg))
	mux.HandleFunc("/api/snapshots/thumb", handler.ThumbnailHandler(cfg, logger))
	mux.HandleFunc("/api/snapshots/delete", handler.DeleteSnapshotHandler(cfg, logger, snapshotRepo))
	mux.HandleFunc("/api/snapshots/clear", handler.ClearSnapshotsHandler(cfg, logger, snapshotRepo))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(cfg, level))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, level))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /gallery -> /static/gallery.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	return middleware.AuthMiddleware(mux)
}
