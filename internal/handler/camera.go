package handler

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"faceoverlay/internal/config"
	"faceoverlay/internal/dto"
	"faceoverlay/internal/logger"
	"faceoverlay/internal/service"
)

const maxFrameSize = 8 << 20

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// UDPCameraHandler listens for UDP packets from cameras, reconstructs JPEG frames,
// and forwards complete frames to the Manager. It returns when ctx is done.
func UDPCameraHandler(ctx context.Context, manager *service.Manager, logger *logger.Logger, config *config.Config) {
	port := strconv.Itoa(config.CamerasPort)

	addr, err := net.ResolveUDPAddr("udp", ":"+port)
	if err != nil {
		logger.Error("Failed to resolve UDP address: %v", err)
		return
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		logger.Error("Failed to listen on UDP port %s: %v", port, err)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Info("UDP camera handler started on port %s", port)
	buffer := make([]byte, 65535)
	assembler := newFrameAssembler()

	for {
		n, remoteAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("UDP camera handler stopped")
				return
			}
			logger.Error("Error reading UDP packet: %v", err)
			continue
		}

		cameraName := cameraNameFor(config, remoteAddr.IP.String())
		if frame := assembler.push(cameraName, buffer[:n]); frame != nil {
			if err := manager.HandleCameraImage(frame, cameraName); err != nil {
				logger.Warning("Dropped frame from %s: %v", remoteAddr, err)
			}
		}
	}
}

func cameraNameFor(config *config.Config, ip string) string {
	if name, ok := config.CameraNames[ip]; ok {
		return dto.SanitizeCameraName(name)
	}
	return dto.SanitizeCameraName("unknown_" + ip)
}

// frameAssembler joins JPEG datagrams per camera.
type frameAssembler struct {
	buffers map[string]*bytes.Buffer
}

func newFrameAssembler() *frameAssembler {
	return &frameAssembler{buffers: make(map[string]*bytes.Buffer)}
}

// push adds a datagram and returns a complete frame once its end marker arrives.
func (a *frameAssembler) push(camera string, data []byte) []byte {
	imgBuffer, ok := a.buffers[camera]
	if !ok {
		imgBuffer = new(bytes.Buffer)
		a.buffers[camera] = imgBuffer
	}

	if bytes.HasPrefix(data, jpegHeader) {
		imgBuffer.Reset()
	}
	imgBuffer.Write(data)

	if imgBuffer.Len() > maxFrameSize {
		imgBuffer.Reset()
		return nil
	}

	if !bytes.HasSuffix(data, jpegFooter) || !bytes.HasPrefix(imgBuffer.Bytes(), jpegHeader) {
		return nil
	}

	fullFrame := make([]byte, imgBuffer.Len())
	copy(fullFrame, imgBuffer.Bytes())
	imgBuffer.Reset()
	return fullFrame
}

// CameraUploadHandler accepts a single JPEG frame over HTTP POST /camera/upload?camera=<name>.
func CameraUploadHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		camera := r.URL.Query().Get("camera")
		if err := dto.ValidateCameraName(camera); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameSize+1))
		if err != nil {
			logger.Error("Error reading frame from camera %s: %v", camera, err)
			http.Error(w, "Error reading body", http.StatusBadRequest)
			return
		}
		if len(body) > maxFrameSize {
			http.Error(w, "Frame too large", http.StatusRequestEntityTooLarge)
			return
		}
		if !bytes.HasPrefix(body, jpegHeader) {
			http.Error(w, "Frame is not a JPEG image", http.StatusBadRequest)
			return
		}

		if err := manager.HandleCameraImage(body, camera); err != nil {
			logger.Warning("Rejected frame from camera %s: %v", camera, err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	}
}
