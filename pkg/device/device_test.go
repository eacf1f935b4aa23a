package device

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	body      []byte
	userAgent string
}

func newDevice(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		c.body, _ = io.ReadAll(r.Body)
		c.userAgent = r.Header.Get("User-Agent")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestPushMono(t *testing.T) {
	srv, got := newDevice(t, http.StatusOK)
	p := NewPusher(nil, srv.URL, "")

	frame := bytes.Repeat([]byte{0xAA}, codec.MonoBytes)
	require.NoError(t, p.Push(context.Background(), codec.ESP32, frame))
	assert.Equal(t, frame, got.body)
	assert.Contains(t, got.userAgent, "Glint/")
}

func TestPushMonoTooLarge(t *testing.T) {
	srv, got := newDevice(t, http.StatusOK)
	p := NewPusher(nil, srv.URL, "")

	err := p.Push(context.Background(), codec.ESP32, make([]byte, codec.MaxMonoPayload+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Nil(t, got.body, "nothing sent")

	assert.NoError(t, p.Push(context.Background(), codec.ESP32, make([]byte, codec.MaxMonoPayload)))
}

func TestPushRGB(t *testing.T) {
	srv, got := newDevice(t, http.StatusNoContent)
	p := NewPusher(nil, "", srv.URL)

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	require.NoError(t, p.Push(context.Background(), codec.RGB320x240, buf.Bytes()))
	assert.Equal(t, bytes.Repeat([]byte{200, 100, 50}, 6), got.body)
}

func TestPushRGBBadImage(t *testing.T) {
	srv, _ := newDevice(t, http.StatusOK)
	p := NewPusher(nil, "", srv.URL)

	err := p.Push(context.Background(), codec.RGB320x240, []byte("nope"))
	assert.ErrorIs(t, err, codec.ErrDecode)
}

func TestPushNotConfigured(t *testing.T) {
	p := NewPusher(nil, "", "")
	assert.False(t, p.Configured(codec.ESP32))
	assert.False(t, p.Configured(codec.RGB320x240))

	assert.ErrorIs(t, p.Push(context.Background(), codec.ESP32, []byte{1}), ErrNotConfigured)
	assert.ErrorIs(t, p.Push(context.Background(), codec.RGB320x240, []byte{1}), ErrNotConfigured)
}

func TestPushDeviceError(t *testing.T) {
	srv, _ := newDevice(t, http.StatusInternalServerError)
	p := NewPusher(srv.Client(), srv.URL, "")

	err := p.Push(context.Background(), codec.ESP32, []byte{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestUserAgentTransport(t *testing.T) {
	srv, got := newDevice(t, http.StatusOK)
	client := &http.Client{Transport: &UserAgentTransport{RoundTripper: http.DefaultTransport, UserAgent: "glint-test/1"}}

	req, err := http.NewRequest(http.MethodPost, srv.URL, bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "original")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "glint-test/1", got.userAgent)
	assert.Equal(t, "original", req.Header.Get("User-Agent"), "caller's request untouched")
}
