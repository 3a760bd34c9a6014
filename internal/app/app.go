package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"faceoverlay/internal/config"
	"faceoverlay/internal/handler"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/repository/sqlite"
	"faceoverlay/internal/route"
	"faceoverlay/internal/service"
	"faceoverlay/internal/service/render"
	"faceoverlay/internal/service/storage"
	"faceoverlay/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config        *config.Config
	logger        *logger.Logger
	db            *sqlite.DB
	snapshotRepo  *sqlite.SnapshotRepository
	faceRepo      *sqlite.FaceRepository
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	manager       *service.Manager
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	snapshotRepo := sqlite.NewSnapshotRepository(db)
	faceRepo := sqlite.NewFaceRepository(db)

	buffer := storage.NewBufferService(cfg, log, snapshotRepo, faceRepo)
	hub := websocket.NewHubService(log)
	mng := service.NewManager(render.NewMatRenderer(0), buffer, hub, cfg, log)

	return &App{
		config:        cfg,
		logger:        log,
		db:            db,
		snapshotRepo:  snapshotRepo,
		faceRepo:      faceRepo,
		bufferService: buffer,
		hubService:    hub,
		manager:       mng,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then drains background services.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	background := func(run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	background(a.bufferService.Run)
	background(a.hubService.Run)
	background(func(ctx context.Context) {
		handler.UDPCameraHandler(ctx, a.manager, a.logger, a.config)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: route.SetupRoutes(a.manager, a.config, a.logger, a.snapshotRepo, a.faceRepo),
	}

	fmt.Printf("Face Overlay Server\n")
	fmt.Printf("URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("Camera UDP port: %d\n", a.config.CamerasPort)
	fmt.Printf("Images: %s\n", a.config.ImageDirectory)
	fmt.Printf("Database: %s\n", a.config.DatabasePath)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		stop()
	case <-ctx.Done():
		a.logger.Info("Shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			a.logger.Error("HTTP server shutdown: %v", shutdownErr)
		}
		cancel()
	}

	a.manager.Stop()
	wg.Wait()

	if closeErr := a.db.Close(); closeErr != nil {
		a.logger.Error("Failed to close database: %v", closeErr)
	}
	a.logger.Info("Server stopped")
	a.logger.Close()
	return err
}
