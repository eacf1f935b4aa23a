package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/crop"
	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/util/log"
)

// MaxImageBytes bounds raw image request bodies.
const MaxImageBytes = 32 << 20

// CropRequest is the body of POST /api/v1/crop.
type CropRequest struct {
	Source crop.Size `json:"source"`
	Canvas crop.Size `json:"canvas"`
	Crop   crop.Rect `json:"crop"`
	Locked bool      `json:"locked"`
}

// CropResponse carries the viewport and the crop in source pixels.
type CropResponse struct {
	Viewport crop.Viewport `json:"viewport"`
	Canvas   crop.Rect     `json:"canvas"`
	Source   crop.Rect     `json:"source"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, ok := readImage(w, r)
	if !ok {
		return
	}
	out, err := codec.Preview(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(out)
}

func (s *Server) handlePreviewRGB(w http.ResponseWriter, r *http.Request) {
	data, ok := readImage(w, r)
	if !ok {
		return
	}
	out, err := codec.PreviewRGB(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(out)
}

func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CropRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Source.Valid() || !req.Canvas.Valid() {
		writeError(w, crop.ErrDegenerateViewport)
		return
	}

	vp := crop.ComputeViewport(req.Source, req.Canvas.Width, req.Canvas.Height)
	c := req.Crop
	c.Width, c.Height = crop.NormalizeAspect(c.Width, c.Height, req.Locked)

	src, err := crop.MapToSource(c, vp, req.Source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CropResponse{Viewport: vp, Canvas: c, Source: src})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		http.Error(w, "Crop suggestion not available", http.StatusServiceUnavailable)
		return
	}
	display, err := codec.ParseDisplayFormat(r.URL.Query().Get("display"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, ok := readImage(w, r)
	if !ok {
		return
	}
	img, _, err := codec.Decode(r.Context(), data, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	rect, err := s.suggester.Suggest(r.Context(), img, display)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rect)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, contentType, err := s.gallery.Thumbnail(r.PathValue("uuid"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// readImage reads a raw image body. It writes the error response itself and
// reports whether the caller should continue.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("Image exceeds %d bytes", MaxImageBytes), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		http.Error(w, "Empty body", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gallery.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gallery.ErrInvalidUpload),
		errors.Is(err, codec.ErrUnknownDisplay),
		errors.Is(err, crop.ErrDegenerateViewport):
		return http.StatusBadRequest
	case errors.Is(err, codec.ErrDecode):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}
