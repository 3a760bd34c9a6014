package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"faceoverlay/internal/config"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled logging (info/warning/error) to rotating files and stdout/stderr.
type Logger struct {
	infoLog    *logrus.Logger
	warningLog *logrus.Logger
	errorLog   *logrus.Logger
	files      map[string]*lumberjack.Logger
	logDir     string
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) *Logger {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	logger := &Logger{
		logDir: config.LogDirectory,
		files:  make(map[string]*lumberjack.Logger),
	}

	logger.setupLoggers()
	return logger
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers() {
	l.infoLog = l.newLevelLogger("info.log", os.Stdout, logrus.InfoLevel)
	l.warningLog = l.newLevelLogger("warning.log", os.Stdout, logrus.WarnLevel)
	l.errorLog = l.newLevelLogger("error.log", os.Stderr, logrus.ErrorLevel)
}

func (l *Logger) newLevelLogger(filename string, console io.Writer, level logrus.Level) *logrus.Logger {
	file := &lumberjack.Logger{
		Filename:   filepath.Join(l.logDir, filename),
		LocalTime:  true,
		MaxSize:    50,
		MaxAge:     14,
		MaxBackups: 3,
	}
	l.files[filename] = file

	entry := logrus.New()
	entry.SetLevel(level)
	entry.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        true,
	})
	entry.SetOutput(io.MultiWriter(console, file))
	return entry
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Errorf(format, v...)
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) {
	l.mu.Lock()
	if file, ok := l.files[fileName]; ok {
		file.Close()
	}
	filePath := filepath.Join(l.logDir, fileName)
	err := os.Truncate(filePath, 0)
	l.mu.Unlock()

	if err != nil && !os.IsNotExist(err) {
		l.Error("Error truncating log file %s: %v", fileName, err)
		return
	}
	l.Info("Log file %s has been cleared.", fileName)
}

// Close releases the underlying log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, file := range l.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}
