package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/device"
	"github.com/dixieflatline76/Glint/util/log"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Paging limits for List.
const (
	DefaultListLimit = 100
	MaxListLimit     = 100

	thumbnailCacheSize = 256
)

// Pusher sends a payload to the display hardware.
type Pusher interface {
	Push(ctx context.Context, display codec.DisplayFormat, data []byte) error
}

// Listener is called after an upload has been stored and pushed.
type Listener func(ctx context.Context, u Upload)

// Service implements the gallery operations on top of a Store.
type Service struct {
	store  *Store
	pusher Pusher

	thumbs *lru.Cache[string, []byte]
	group  singleflight.Group

	mu        sync.RWMutex
	listeners []Listener

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// NewService creates a Service. pusher may be nil, in which case uploads are
// only stored.
func NewService(store *Store, pusher Pusher) (*Service, error) {
	thumbs, err := lru.New[string, []byte](thumbnailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating thumbnail cache: %w", err)
	}
	return &Service{
		store:  store,
		pusher: pusher,
		thumbs: thumbs,
		now:    time.Now,
		newID:  uuid.NewV7,
	}, nil
}

// Subscribe registers l to be told about new uploads.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// Create validates and stores a submission, pushes it to its display and
// notifies listeners. A push to a display without a configured endpoint is
// skipped; any other push failure is returned after the upload was stored.
func (s *Service) Create(ctx context.Context, in UploadInput) (Upload, error) {
	data, display, err := in.Validate()
	if err != nil {
		return Upload{}, err
	}

	id, err := s.newID()
	if err != nil {
		return Upload{}, fmt.Errorf("generating upload id: %w", err)
	}

	u := Upload{
		UUID:       id.String(),
		Name:       in.Name,
		Message:    in.Message,
		Data:       data,
		Public:     in.Public,
		UploadedAt: s.now().UTC(),
		Display:    display,
	}
	if !s.store.Add(u) {
		return Upload{}, fmt.Errorf("could not store upload %s: duplicate id", u.UUID)
	}
	log.Printf("Gallery: stored %s upload %s (%d bytes)", display, u.UUID, len(data))

	if s.pusher != nil {
		if err := s.pusher.Push(ctx, display, data); err != nil {
			if !errors.Is(err, device.ErrNotConfigured) {
				return u, fmt.Errorf("pushing upload %s: %w", u.UUID, err)
			}
			log.Debugf("Gallery: no %s endpoint, skipping push", display)
		}
	}

	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(ctx, u)
	}
	return u, nil
}

// Get returns the upload with the given UUID.
func (s *Service) Get(id string) (Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Upload{}, fmt.Errorf("%w: %q is not a uuid", ErrNotFound, id)
	}
	u, ok := s.store.Get(id)
	if !ok {
		return Upload{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return u, nil
}

// List returns public uploads, newest first. A non-positive limit means
// DefaultListLimit; limits are capped at MaxListLimit and negative offsets
// are treated as zero.
func (s *Service) List(limit, offset int) []Upload {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset = max(offset, 0)

	all := s.store.List(Filter{PublicOnly: true})
	if offset >= len(all) {
		return []Upload{}
	}
	end := min(offset+limit, len(all))
	return all[offset:end]
}

// Update edits the mutable fields of an upload.
func (s *Service) Update(id string, patch UploadPatch) (Upload, error) {
	u, err := s.Get(id)
	if err != nil {
		return Upload{}, err
	}
	patch.apply(&u)
	if !s.store.Update(u) {
		return Upload{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return u, nil
}

// Delete removes an upload.
func (s *Service) Delete(id string) error {
	if _, ok := s.store.Delete(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.thumbs.Remove(id)
	return nil
}

// Thumbnail returns a browser-viewable image of an upload and its content
// type: PNG for mono frames, the stored JPEG for colour uploads.
func (s *Service) Thumbnail(id string) ([]byte, string, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}
	if u.Display.IsRGB() {
		return u.Data, "image/jpeg", nil
	}

	if png, ok := s.thumbs.Get(id); ok {
		return png, "image/png", nil
	}

	v, err, _ := s.group.Do(id, func() (interface{}, error) {
		png, err := codec.PackedToPNG(u.Data, codec.MonoWidth, codec.MonoHeight)
		if err != nil {
			return nil, err
		}
		s.thumbs.Add(id, png)
		return png, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("rendering thumbnail for %s: %w", id, err)
	}
	return v.([]byte), "image/png", nil
}
