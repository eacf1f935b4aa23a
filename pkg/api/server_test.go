package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/pkg/screensaver"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeScreensaver records calls and reports a fixed state.
type fakeScreensaver struct {
	mu    sync.Mutex
	state screensaver.State
	calls []string
}

func (f *fakeScreensaver) record(call string) screensaver.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.state
}

func (f *fakeScreensaver) Next(ctx context.Context) screensaver.State { return f.record("next") }
func (f *fakeScreensaver) Previous(ctx context.Context) screensaver.State {
	return f.record("previous")
}

func (f *fakeScreensaver) Pause() screensaver.State {
	f.mu.Lock()
	f.state.IsRunning = false
	f.mu.Unlock()
	return f.record("pause")
}

func (f *fakeScreensaver) Resume() screensaver.State {
	f.mu.Lock()
	f.state.IsRunning = true
	f.mu.Unlock()
	return f.record("resume")
}

func (f *fakeScreensaver) SetInterval(seconds int) (screensaver.State, error) {
	if seconds <= 0 {
		return f.State(), screensaver.ErrInvalidInterval
	}
	f.mu.Lock()
	f.state.IntervalSeconds = seconds
	f.mu.Unlock()
	return f.record("interval"), nil
}

func (f *fakeScreensaver) State() screensaver.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeScreensaver) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestServer(t *testing.T, mutate func(*Options)) *Server {
	t.Helper()
	svc, err := gallery.NewService(gallery.NewStore(""), nil)
	require.NoError(t, err)

	opts := Options{
		Gallery:     svc,
		Version:     "1.2.3",
		CreateRate:  rate.Inf,
		CreateBurst: 1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewServer(opts)
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestNewServerRequiresGallery(t *testing.T) {
	_, err := NewServer(Options{})
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, rr.Body.String())
}

func TestTextRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/graphql/test", "Hello world!"},
		{"/api/v1/test", "test"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, rr.Body.String())
		})
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/test", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestWebSocketPingPong(t *testing.T) {
	s := newTestServer(t, nil)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]string
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "pong", msg["type"])
}

func TestBroadcastUploadOnCreate(t *testing.T) {
	s := newTestServer(t, nil)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	name := "ada"
	u, err := s.gallery.Create(context.Background(), gallery.UploadInput{
		Name:    &name,
		Data:    encodeB64(make([]byte, 1024)),
		Display: "ESP32",
	})
	require.NoError(t, err)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, "upload_created", ev.Type)
	require.NotNil(t, ev.Upload)
	assert.Equal(t, u.UUID, ev.Upload.UUID)
	assert.Equal(t, "ada", ev.Upload.Name)
	assert.Equal(t, "ESP32", ev.Upload.Display)
}

func TestBroadcastScreensaver(t *testing.T) {
	s := newTestServer(t, nil)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.BroadcastScreensaver(screensaver.State{IsRunning: true, CurrentIndex: 2, UploadCount: 5, IntervalSeconds: 30})

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, p, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(p), `"type":"screensaver"`)
	assert.Contains(t, string(p), `"currentIndex":2`)
	assert.Contains(t, string(p), `"intervalSeconds":30`)
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	s := newTestServer(t, nil)
	s.writeWait = 50 * time.Millisecond
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	// never read from ws so the socket buffers fill up
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	big := Event{Type: strings.Repeat("x", 1<<20)}
	start := time.Now()
	for i := 0; i < 128 && s.ClientCount() > 0; i++ {
		s.broadcast(big)
	}
	assert.Equal(t, 0, s.ClientCount(), "stalled client should be dropped")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestStopClosesClients(t *testing.T) {
	s := newTestServer(t, nil)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 0, s.ClientCount())

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = ws.ReadMessage()
	assert.Error(t, err)
}
