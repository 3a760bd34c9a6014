package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"faceoverlay/internal/config"
	"faceoverlay/internal/logger"
)

var logFiles = map[string]string{
	"info":    "info.log",
	"warning": "warning.log",
	"error":   "error.log",
}

// ShowLogsHandler serves one of the level log files as text/plain.
func ShowLogsHandler(cfg *config.Config, level string) http.HandlerFunc {
	filename := logFiles[level]
	return func(w http.ResponseWriter, r *http.Request) {
		if filename == "" {
			http.NotFound(w, r)
			return
		}
		serveLogFile(w, r, cfg.LogDirectory, filename)
	}
}

// serveLogFile sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

// ClearLogsHandler truncates one of the level log files.
func ClearLogsHandler(logger *logger.Logger, level string) http.HandlerFunc {
	filename := logFiles[level]
	return func(w http.ResponseWriter, r *http.Request) {
		if filename == "" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		logger.CleanLogs(filename)
		w.WriteHeader(http.StatusNoContent)
	}
}
