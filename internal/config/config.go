package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                     int
	CamerasPort              int
	Password                 string
	CameraNames              map[string]string // camera IP -> display name
	ImageDirectory           string
	DatabasePath             string
	ImageBufferLimit         int
	ImageBufferFlushInterval int
	SnapshotInterval         int // buffer every N-th rendered frame that shows faces
	MaxCameras               int
	PreviewWidth             int // detector frame size, 0 = same as camera frame
	PreviewHeight            int
	FrontFacing              bool
	MaxImageDirectorySize    int64 // GB
	LogDirectory             string
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                     getEnvAsInt("PORT", 8080),
		CamerasPort:              getEnvAsInt("CAMERAS_PORT", 9000),
		Password:                 getEnv("PASSWORD", "changeme"),
		CameraNames:              parseCameraNames(getEnv("CAMERA_NAMES", "")),
		ImageDirectory:           getEnv("IMAGE_DIR", filepath.Join(".", "images")),
		DatabasePath:             getEnv("DB_PATH", filepath.Join(".", "data", "faceoverlay.db")),
		ImageBufferLimit:         getEnvAsInt("BUFFER_LIMIT", 7),
		ImageBufferFlushInterval: getEnvAsInt("FLUSH_INTERVAL", 30),
		SnapshotInterval:         getEnvAsInt("SNAPSHOT_INTERVAL", 15),
		MaxCameras:               getEnvAsInt("MAX_CAMERAS", 16),
		PreviewWidth:             getEnvAsInt("PREVIEW_WIDTH", 0),
		PreviewHeight:            getEnvAsInt("PREVIEW_HEIGHT", 0),
		FrontFacing:              getEnvAsBool("FRONT_FACING", false),
		MaxImageDirectorySize:    getEnvAsInt64("MAX_IMAGE_DIRECTORY_SIZE", 4),
		LogDirectory:             getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

// parseCameraNames parses "10.0.0.5=door,10.0.0.6=garage".
func parseCameraNames(value string) map[string]string {
	names := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		ip, name, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || ip == "" || name == "" {
			continue
		}
		names[strings.TrimSpace(ip)] = strings.TrimSpace(name)
	}
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
