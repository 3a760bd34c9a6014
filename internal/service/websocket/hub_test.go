package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"faceoverlay/internal/config"
	"faceoverlay/internal/logger"

	"github.com/gorilla/websocket"
)

func TestHubService_BroadcastsToViewers(t *testing.T) {
	log := logger.NewLogger(&config.Config{LogDirectory: filepath.Join(t.TempDir(), "logs")})
	defer log.Close()

	hub := NewHubService(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Viewer was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !hub.Broadcast([]byte(`{"camera":"door"}`)) {
		t.Fatal("Broadcast should be accepted")
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, message, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(message) != `{"camera":"door"}` {
		t.Errorf("Unexpected message %s", message)
	}
}

func TestHubService_BroadcastDropsWhenFull(t *testing.T) {
	log := logger.NewLogger(&config.Config{LogDirectory: filepath.Join(t.TempDir(), "logs")})
	defer log.Close()

	hub := NewHubService(log) // not running, nothing drains the queue
	accepted := 0
	for i := 0; i < 100; i++ {
		if hub.Broadcast([]byte("x")) {
			accepted++
		}
	}
	if accepted != cap(hub.broadcast) {
		t.Errorf("Expected %d accepted messages, got %d", cap(hub.broadcast), accepted)
	}
}

func TestHubService_UnregisterAfterStopDoesNotBlock(t *testing.T) {
	log := logger.NewLogger(&config.Config{LogDirectory: filepath.Join(t.TempDir(), "logs")})
	defer log.Close()

	hub := NewHubService(log)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Unregister(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Unregister blocked on a stopped hub")
	}
}
