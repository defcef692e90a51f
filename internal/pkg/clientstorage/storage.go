package clientstorage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

// Well-known storage keys.
const (
	KeyToken       = "token"
	KeyUserID      = "userId"
	KeyCurrentUser = "currentUser"
)

// Store is the durable client-side state store. Each key is one file under
// the state directory, so a second process sees updates by watching file
// modification times. Consistency across processes is eventual, not
// immediate.
type Store struct {
	dir string

	mu       sync.Mutex
	watchers []func(key string)
	mtimes   map[string]time.Time
	done     chan struct{}
	once     sync.Once
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		mtimes: make(map[string]time.Time),
		done:   make(chan struct{}),
	}, nil
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	// keys are fixed identifiers; reject anything path-like
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

// Get returns the raw value for key, and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set writes key durably. The write is atomic (write-then-rename) so a
// concurrent reader never observes a torn value.
func (s *Store) Set(key, value string) error {
	p := s.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	s.markSeen(key)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	s.markSeen(key)
	return nil
}

// GetJSON decodes the stored value for key into v.
func (s *Store) GetJSON(key string, v interface{}) (bool, error) {
	raw, ok := s.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("failed to decode stored %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v as JSON under key.
func (s *Store) SetJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// OnChange registers a callback invoked with the key name whenever another
// process changes a watched key. Callbacks fire from the watch goroutine.
func (s *Store) OnChange(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Watch starts polling the watched keys for external modification. Local
// Set/Delete calls do not trigger callbacks; only changes made by another
// process do.
func (s *Store) Watch(keys []string, interval time.Duration) {
	for _, k := range keys {
		s.markSeen(k)
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				for _, k := range keys {
					s.checkKey(k)
				}
			}
		}
	}()
}

// Close stops the watch goroutine.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) markSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fi, err := os.Stat(s.path(key)); err == nil {
		s.mtimes[key] = fi.ModTime()
	} else {
		delete(s.mtimes, key)
	}
}

func (s *Store) checkKey(key string) {
	s.mu.Lock()
	prev, had := s.mtimes[key]
	fi, err := os.Stat(s.path(key))
	changed := false
	switch {
	case err != nil && had:
		delete(s.mtimes, key)
		changed = true
	case err == nil && (!had || fi.ModTime() != prev):
		s.mtimes[key] = fi.ModTime()
		changed = true
	}
	watchers := make([]func(string), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	if !changed {
		return
	}
	logger.Debug().Str("key", key).Msg("External storage change detected")
	for _, fn := range watchers {
		fn(key)
	}
}
