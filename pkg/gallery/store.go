package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dixieflatline76/Glint/util/log"
)

// Store is a thread-safe, JSON-file backed collection of uploads.
type Store struct {
	mu      sync.RWMutex
	uploads []Upload
	index   map[string]int // uuid -> position in uploads

	path      string
	asyncSave bool

	saveTimer *time.Timer
	saveMu    sync.Mutex

	// writeMu serializes file writes; snapshots older than written are
	// dropped so a slow save never overwrites a newer one.
	writeMu sync.Mutex
	snapSeq atomic.Uint64
	written uint64

	// Testing hook
	saveFunc func()

	debounceDuration time.Duration

	updateCh chan struct{}
}

// NewStore creates a store persisted at path. An empty path keeps the store
// in memory only.
func NewStore(path string) *Store {
	return &Store{
		index:            make(map[string]int),
		path:             path,
		asyncSave:        true,
		debounceDuration: 2 * time.Second,
		updateCh:         make(chan struct{}),
	}
}

func (s *Store) SetDebounceDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounceDuration = d
}

func (s *Store) SetAsyncSave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asyncSave = enabled
}

// Add inserts a new upload. It returns false when the UUID is taken.
func (s *Store) Add(u Upload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[u.UUID]; exists {
		return false
	}
	s.uploads = append(s.uploads, u)
	s.index[u.UUID] = len(s.uploads) - 1
	s.scheduleSaveLocked()
	s.notifyUpdateLocked()
	return true
}

func (s *Store) Get(id string) (Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Upload{}, false
	}
	return s.uploads[i], true
}

// Update replaces the upload with the same UUID.
func (s *Store) Update(u Upload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[u.UUID]
	if !ok {
		return false
	}
	s.uploads[i] = u
	s.scheduleSaveLocked()
	s.notifyUpdateLocked()
	return true
}

func (s *Store) Delete(id string) (Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Upload{}, false
	}
	removed := s.uploads[i]
	s.uploads = append(s.uploads[:i], s.uploads[i+1:]...)
	s.reindexLocked()
	s.scheduleSaveLocked()
	s.notifyUpdateLocked()
	return removed, true
}

// List returns matching uploads, newest first. UUIDs are time-ordered, so
// this is a descending sort on UUID.
func (s *Store) List(f Filter) []Upload {
	s.mu.RLock()
	out := make([]Upload, 0, len(s.uploads))
	for _, u := range s.uploads {
		if f.match(u) {
			out = append(out, u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UUID > out[j].UUID })
	return out
}

func (s *Store) Count(f Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, u := range s.uploads {
		if f.match(u) {
			n++
		}
	}
	return n
}

// Load replaces the contents with the persisted file. A missing file is not
// an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var uploads []Upload
	if err := json.NewDecoder(file).Decode(&uploads); err != nil {
		return fmt.Errorf("decoding %s: %w", s.path, err)
	}
	s.uploads = uploads
	s.reindexLocked()
	s.notifyUpdateLocked()
	return nil
}

// Save writes the store to disk immediately, cancelling any pending
// debounced save.
func (s *Store) Save() error {
	s.saveMu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.saveMu.Unlock()

	uploads, seq := s.snapshot()
	return s.saveInternal(uploads, seq)
}

func (s *Store) snapshot() ([]Upload, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// CALLER MUST HOLD s.mu (read or write)
func (s *Store) snapshotLocked() ([]Upload, uint64) {
	out := make([]Upload, len(s.uploads))
	copy(out, s.uploads)
	return out, s.snapSeq.Add(1)
}

// scheduleSaveLocked handles persistence.
// CALLER MUST HOLD s.mu.Lock()
func (s *Store) scheduleSaveLocked() {
	if !s.asyncSave {
		if err := s.saveInternal(s.snapshotLocked()); err != nil {
			log.Printf("Store: %v", err)
		}
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.debounceDuration, func() {
		if err := s.saveInternal(s.snapshot()); err != nil {
			log.Printf("Store: %v", err)
		}
	})
}

func (s *Store) saveInternal(uploads []Upload, seq uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if seq <= s.written {
		return nil // a newer snapshot is already on disk
	}

	if s.saveFunc != nil {
		s.saveFunc()
	}

	if s.path == "" {
		s.written = seq
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save uploads: %w", err)
	}
	tmp := file.Name()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(uploads); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode uploads: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write uploads: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename uploads file: %w", err)
	}
	s.written = seq
	return nil
}

// CALLER MUST HOLD s.mu.Lock()
func (s *Store) reindexLocked() {
	s.index = make(map[string]int, len(s.uploads))
	for i, u := range s.uploads {
		s.index[u.UUID] = i
	}
}
