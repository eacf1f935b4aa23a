package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"testing"
	"time"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/device"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, display codec.DisplayFormat, data []byte) error {
	args := m.Called(ctx, display, data)
	return args.Error(0)
}

func newTestService(t *testing.T, pusher Pusher) *Service {
	t.Helper()
	svc, err := NewService(NewStore(""), pusher)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func TestServiceCreatePushesAndNotifies(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Push", mock.Anything, codec.ESP32, mock.Anything).Return(nil).Once()

	svc := newTestService(t, pusher)
	var notified []Upload
	svc.Subscribe(func(_ context.Context, u Upload) { notified = append(notified, u) })

	name := "ada"
	u, err := svc.Create(context.Background(), UploadInput{Name: &name, Data: b64(codec.MonoBytes), Public: true, Display: "ESP32"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(u.UUID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, "ada", *u.Name)
	assert.Len(t, u.Data, codec.MonoBytes)
	require.Len(t, notified, 1)
	assert.Equal(t, u.UUID, notified[0].UUID)

	got, err := svc.Get(u.UUID)
	require.NoError(t, err)
	assert.Equal(t, u.UploadedAt, got.UploadedAt)
	pusher.AssertExpectations(t)
}

func TestServiceCreateInvalid(t *testing.T) {
	pusher := new(MockPusher)
	svc := newTestService(t, pusher)

	_, err := svc.Create(context.Background(), UploadInput{Data: b64(2000), Display: "ESP32"})
	assert.ErrorIs(t, err, ErrInvalidUpload)
	assert.Equal(t, 0, svc.Store().Count(Filter{}))
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceCreateUnconfiguredDevice(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Push", mock.Anything, codec.RGB320x240, mock.Anything).Return(device.ErrNotConfigured)

	svc := newTestService(t, pusher)
	notified := 0
	svc.Subscribe(func(context.Context, Upload) { notified++ })

	_, err := svc.Create(context.Background(), UploadInput{Data: b64(10), Display: "RGB320x240"})
	assert.NoError(t, err, "missing endpoint is not an error")
	assert.Equal(t, 1, notified)
}

func TestServiceCreatePushFailure(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Push", mock.Anything, codec.ESP32, mock.Anything).Return(errors.New("connection refused"))

	svc := newTestService(t, pusher)
	notified := 0
	svc.Subscribe(func(context.Context, Upload) { notified++ })

	u, err := svc.Create(context.Background(), UploadInput{Data: b64(8), Display: "ESP32"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, notified)

	_, getErr := svc.Get(u.UUID)
	assert.NoError(t, getErr, "upload is kept even though the push failed")
}

func TestServiceGetNotFound(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Get("not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceList(t *testing.T) {
	svc := newTestService(t, nil)

	var ids []string
	for i := 0; i < 5; i++ {
		u, err := svc.Create(context.Background(), UploadInput{Data: b64(4), Public: i != 2, Display: "ESP32"})
		require.NoError(t, err)
		ids = append(ids, u.UUID)
	}

	all := svc.List(0, 0)
	require.Len(t, all, 4, "private uploads are hidden")
	assert.Equal(t, ids[4], all[0].UUID, "newest first")
	assert.Equal(t, ids[0], all[3].UUID)

	page := svc.List(2, 1)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].UUID)
	assert.Equal(t, ids[1], page[1].UUID)

	assert.Empty(t, svc.List(10, 10))
	assert.Len(t, svc.List(1000, -4), 4)
}

func TestServiceListCap(t *testing.T) {
	svc := newTestService(t, nil)
	for i := 0; i < MaxListLimit+5; i++ {
		svc.Store().Add(Upload{UUID: fmt.Sprintf("%04d", i), Public: true})
	}
	assert.Len(t, svc.List(500, 0), MaxListLimit)
}

func TestServiceUpdateDelete(t *testing.T) {
	svc := newTestService(t, nil)
	u, err := svc.Create(context.Background(), UploadInput{Data: b64(4), Display: "ESP32"})
	require.NoError(t, err)

	msg := "hello"
	public := true
	updated, err := svc.Update(u.UUID, UploadPatch{Message: &msg, Public: &public})
	require.NoError(t, err)
	assert.Equal(t, "hello", *updated.Message)
	assert.True(t, updated.Public)

	require.NoError(t, svc.Delete(u.UUID))
	assert.ErrorIs(t, svc.Delete(u.UUID), ErrNotFound)
	_, err = svc.Update(u.UUID, UploadPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceThumbnail(t *testing.T) {
	svc := newTestService(t, nil)

	frame := make([]byte, codec.MonoBytes)
	frame[0] = 0xFF
	mono, err := svc.Create(context.Background(), UploadInput{Data: encodeB64(frame), Display: "ESP32"})
	require.NoError(t, err)

	data, ct, err := svc.Thumbnail(mono.UUID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	again, _, err := svc.Thumbnail(mono.UUID)
	require.NoError(t, err)
	assert.Equal(t, data, again, "served from cache")

	rgb, err := svc.Create(context.Background(), UploadInput{Data: encodeB64([]byte{0xFF, 0xD8, 0xFF}), Display: "RGB320x240"})
	require.NoError(t, err)
	data, ct, err = svc.Thumbnail(rgb.UUID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)

	_, _, err = svc.Thumbnail(uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
