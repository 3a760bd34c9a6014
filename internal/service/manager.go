package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"faceoverlay/internal/config"
	"faceoverlay/internal/dto"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/model"
	"faceoverlay/internal/overlay"
	"faceoverlay/internal/service/storage"
	"faceoverlay/internal/service/tracker"
	"faceoverlay/internal/service/websocket"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultMaxCameras = 16

var (
	ErrStopped        = errors.New("manager stopped")
	ErrTooManyCameras = errors.New("camera limit reached")
)

// FrameRenderer paints an overlay onto an encoded frame.
type FrameRenderer interface {
	Render(frame []byte, ov *overlay.Overlay) ([]byte, error)
}

// Manager routes camera frames and detection batches to per-camera pipelines.
type Manager struct {
	renderer         FrameRenderer
	bufferService    *storage.BufferService
	websocketService *websocket.HubService
	logger           *logger.Logger

	snapshotInterval int
	maxCameras       int
	previewWidth     int
	previewHeight    int
	frontFacing      bool

	pipelines   map[string]*pipeline
	pipelinesMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// pipeline is the overlay state of one camera.
type pipeline struct {
	camera  string
	overlay *overlay.Overlay
	tracker *tracker.Tracker
	frame   atomic.Pointer[[]byte]

	// owned by the redraw loop
	lastFrame   *[]byte
	facesFrames int
}

type frameMessage struct {
	Camera string `json:"camera"`
	Image  string `json:"image"`
	Faces  int    `json:"faces"`
}

func NewManager(renderer FrameRenderer, bufferService *storage.BufferService, websocketService *websocket.HubService, config *config.Config, logger *logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	interval := config.SnapshotInterval
	if interval <= 0 {
		interval = 1
	}

	maxCameras := config.MaxCameras
	if maxCameras <= 0 {
		maxCameras = defaultMaxCameras
	}

	manager := &Manager{
		renderer:         renderer,
		bufferService:    bufferService,
		websocketService: websocketService,
		logger:           logger,
		snapshotInterval: interval,
		maxCameras:       maxCameras,
		previewWidth:     config.PreviewWidth,
		previewHeight:    config.PreviewHeight,
		frontFacing:      config.FrontFacing,
		pipelines:        make(map[string]*pipeline),
		ctx:              ctx,
		cancel:           cancel,
	}

	manager.logger.Info("Manager started - buffering every %d frame(s) with faces", manager.snapshotInterval)
	return manager
}

// HandleCameraImage stores the newest frame of a camera and requests a redraw.
func (m *Manager) HandleCameraImage(image []byte, camera string) error {
	p, err := m.pipelineFor(camera)
	if err != nil {
		return err
	}
	p.frame.Store(&image)
	p.overlay.PostInvalidate()
	return nil
}

// HandleDetections applies a detection batch to the camera's overlay.
func (m *Manager) HandleDetections(camera string, batch *dto.DetectionBatch) (added, removed int, err error) {
	if err := batch.Validate(); err != nil {
		return 0, 0, err
	}

	p, err := m.pipelineFor(camera)
	if err != nil {
		return 0, 0, err
	}

	if batch.PreviewWidth == 0 && batch.PreviewHeight == 0 {
		batch.PreviewWidth = m.previewWidth
		batch.PreviewHeight = m.previewHeight
	}
	if batch.Facing == "" && m.frontFacing {
		batch.Facing = dto.FacingFront
	}

	added, removed = p.tracker.Apply(batch)
	if added > 0 || removed > 0 {
		m.logger.Info("Camera %s: %d face(s) added, %d removed", camera, added, removed)
	}
	return added, removed, nil
}

// ClearDetections removes every face graphic of a camera.
func (m *Manager) ClearDetections(camera string) {
	m.pipelinesMu.Lock()
	p, ok := m.pipelines[camera]
	m.pipelinesMu.Unlock()

	if ok {
		p.tracker.Reset()
	}
}

// Cameras lists cameras that have sent frames or detections.
func (m *Manager) Cameras() []string {
	m.pipelinesMu.Lock()
	defer m.pipelinesMu.Unlock()

	cameras := make([]string, 0, len(m.pipelines))
	for camera := range m.pipelines {
		cameras = append(cameras, camera)
	}
	sort.Strings(cameras)
	return cameras
}

// TrackedFaces returns the number of faces currently drawn for a camera.
func (m *Manager) TrackedFaces(camera string) int {
	m.pipelinesMu.Lock()
	p, ok := m.pipelines[camera]
	m.pipelinesMu.Unlock()

	if !ok {
		return 0
	}
	return len(p.tracker.Faces())
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

func (m *Manager) GetBufferService() *storage.BufferService {
	return m.bufferService
}

// Stop terminates every redraw loop.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.logger.Info("All camera pipelines stopped")
}

// pipelineFor returns the camera's pipeline, starting it on first use.
// New pipelines are refused for invalid names, past the camera limit and after Stop.
func (m *Manager) pipelineFor(camera string) (*pipeline, error) {
	m.pipelinesMu.Lock()
	defer m.pipelinesMu.Unlock()

	if p, ok := m.pipelines[camera]; ok {
		return p, nil
	}
	if m.ctx.Err() != nil {
		return nil, ErrStopped
	}
	if err := dto.ValidateCameraName(camera); err != nil {
		return nil, err
	}
	if len(m.pipelines) >= m.maxCameras {
		return nil, fmt.Errorf("%w (%d), refusing camera %s", ErrTooManyCameras, m.maxCameras, camera)
	}

	ov := overlay.New()
	ov.SetCameraInfo(m.previewWidth, m.previewHeight, m.frontFacing)
	p := &pipeline{
		camera:  camera,
		overlay: ov,
		tracker: tracker.New(ov),
	}
	m.pipelines[camera] = p

	m.wg.Add(1)
	go m.redrawLoop(p)

	m.logger.Info("Started pipeline for camera: %s", camera)
	return p, nil
}

func (m *Manager) redrawLoop(p *pipeline) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-p.overlay.Invalidated():
			m.redraw(p)
		}
	}
}

// redraw renders the newest frame with the current overlay and hands it to viewers and storage.
func (m *Manager) redraw(p *pipeline) {
	frame := p.frame.Load()
	if frame == nil {
		return
	}

	rendered, err := m.renderer.Render(*frame, p.overlay)
	if err != nil {
		m.logger.Error("Failed to render overlay for camera %s: %v", p.camera, err)
		rendered = *frame
	}

	faces := drawnFaces(p.tracker.Faces())
	m.SendToViewers(rendered, p.camera, len(faces))

	newFrame := frame != p.lastFrame
	p.lastFrame = frame
	if !newFrame || len(faces) == 0 || m.bufferService == nil {
		return
	}

	p.facesFrames++
	if p.facesFrames%m.snapshotInterval == 0 {
		m.bufferService.AddImage(rendered, p.camera, faces)
	}
}

// drawnFaces keeps the faces the overlay actually paints.
func drawnFaces(faces []model.Face) []model.Face {
	drawn := faces[:0]
	for _, face := range faces {
		if face.Complete() {
			drawn = append(drawn, face)
		}
	}
	return drawn
}

// SendToViewers broadcasts an encoded frame to every connected viewer.
func (m *Manager) SendToViewers(image []byte, camera string, faces int) {
	if m.websocketService == nil {
		return
	}

	msg, err := json.Marshal(frameMessage{
		Camera: camera,
		Image:  base64.StdEncoding.EncodeToString(image),
		Faces:  faces,
	})
	if err != nil {
		m.logger.Error("Failed to encode frame message: %v", err)
		return
	}

	if !m.websocketService.Broadcast(msg) {
		m.logger.Warning("Viewers are falling behind - dropped frame from camera %s", camera)
	}
}
