package gallery

import (
	"encoding/base64"
	"testing"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(n int) string {
	return base64.StdEncoding.EncodeToString(make([]byte, n))
}

func TestUploadInputValidate(t *testing.T) {
	tests := []struct {
		name     string
		in       UploadInput
		wantLen  int
		wantDisp codec.DisplayFormat
		wantErr  bool
	}{
		{"mono frame", UploadInput{Data: b64(1024), Display: "ESP32"}, 1024, codec.ESP32, false},
		{"legacy tag", UploadInput{Data: b64(10), Display: "Esp32"}, 10, codec.ESP32, false},
		{"mono limit", UploadInput{Data: b64(1025)}, 1025, codec.ESP32, false},
		{"mono too large", UploadInput{Data: b64(1026), Display: "ESP32"}, 0, "", true},
		{"rgb may be large", UploadInput{Data: b64(40000), Display: "RGB_320x240"}, 40000, codec.RGB320x240, false},
		{"data url", UploadInput{Data: "data:image/jpeg;base64," + b64(3), Display: "RGB320x240"}, 3, codec.RGB320x240, false},
		{"empty", UploadInput{Data: "", Display: "ESP32"}, 0, "", true},
		{"not base64", UploadInput{Data: "!!!", Display: "ESP32"}, 0, "", true},
		{"unknown display", UploadInput{Data: b64(4), Display: "VGA"}, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, disp, err := tt.in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUpload)
				return
			}
			require.NoError(t, err)
			assert.Len(t, data, tt.wantLen)
			assert.Equal(t, tt.wantDisp, disp)
		})
	}
}

func TestUploadPatch(t *testing.T) {
	name := "before"
	u := Upload{Name: &name, Public: false}

	newName := "after"
	public := true
	UploadPatch{Name: &newName, Public: &public}.apply(&u)

	assert.Equal(t, "after", *u.Name)
	assert.True(t, u.Public)
	assert.Nil(t, u.Message)
}

func encodeB64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
