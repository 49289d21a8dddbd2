// Package store keeps a bounded list of recently used native handles and
// persists their host keys across sessions.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	apperrors "pickfs/internal/errors"
	"pickfs/internal/handle"
	"pickfs/internal/logging"
)

// DefaultSize is the number of handles remembered when no size is given.
const DefaultSize = 32

// Record is the persisted part of a remembered handle.
type Record struct {
	ID      string      `json:"id"`
	Kind    handle.Kind `json:"kind"`
	Name    string      `json:"name"`
	Key     string      `json:"key"`
	SavedAt time.Time   `json:"savedAt"`
}

type entry struct {
	record Record
	live   handle.Entry // nil until reopened in this session
}

// Store is safe for concurrent use.
type Store struct {
	path string
	log  *zap.Logger

	mu    sync.Mutex
	size  int
	cache *lru.Cache[string, entry]
}

// New creates a store of at most size records backed by the JSON file at
// path. An empty path keeps records in memory only. A missing file is not an
// error.
func New(path string, size int, log *zap.Logger) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, apperrors.NewStoreError("new", "creating cache failed", err)
	}
	s := &Store{path: path, log: logging.OrNop(log).Named("store"), size: size, cache: cache}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory creates a store that never touches disk.
func NewMemory(size int) *Store {
	s, _ := New("", size, nil)
	return s
}

// DefaultPath returns the handle file next to the configuration file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "handles.json"
	}
	return filepath.Join(dir, "pickfs", "handles.json")
}

// Put remembers a. Only native handles with a host key are accepted; the
// least recently used record is evicted when the store is full. The file is
// written first, so a failed write leaves the store unchanged.
func (s *Store) Put(a handle.AppHandle) (Record, error) {
	key, ok := a.PersistKey()
	if !ok {
		return Record{}, apperrors.NewCapabilityError("remember", a.Name,
			"persisting handles is not supported in this environment")
	}
	rec := Record{ID: a.ID, Kind: a.Kind, Name: a.Name, Key: key, SavedAt: time.Now().UTC()}

	s.mu.Lock()
	if err := s.writeLocked(s.recordsWith(rec)); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	evicted := s.cache.Add(rec.ID, entry{record: rec, live: a.Native})
	s.mu.Unlock()

	if evicted {
		s.log.Debug("evicted oldest handle")
	}
	s.log.Debug("handle remembered", zap.String("id", rec.ID), zap.String("name", rec.Name))
	return rec, nil
}

// Get returns the record for id and the live handle when it was opened in
// this session. It marks the record as recently used.
func (s *Store) Get(id string) (Record, handle.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache.Get(id)
	if !ok {
		return Record{}, nil, false
	}
	return e.record, e.live, true
}

// Attach records the live handle reopened for id.
func (s *Store) Attach(id string, live handle.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.cache.Peek(id); ok {
		e.live = live
		s.cache.Add(id, e)
	}
}

// Remove forgets id.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cache.Contains(id) {
		return false, nil
	}
	if err := s.writeLocked(s.recordsWithout(id)); err != nil {
		return false, err
	}
	s.cache.Remove(id)
	return true, nil
}

// Recent lists records, most recently used first.
func (s *Store) Recent() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.cache.Keys()
	out := make([]Record, 0, len(keys))
	for _, k := range slices.Backward(keys) {
		if e, ok := s.cache.Peek(k); ok {
			out = append(out, e.record)
		}
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

func (s *Store) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("no handle file, starting empty", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return apperrors.NewStoreError("load", "reading handle file failed", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return apperrors.NewStoreError("load", fmt.Sprintf("parsing %s failed", s.path), err)
	}
	// the file lists records oldest first
	for _, r := range records {
		if r.ID == "" || r.Key == "" {
			continue
		}
		s.cache.Add(r.ID, entry{record: r})
	}
	s.log.Debug("handles loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// recordsWithout lists the stored records except id, oldest first.
func (s *Store) recordsWithout(id string) []Record {
	keys := s.cache.Keys()
	out := make([]Record, 0, len(keys)+1)
	for _, k := range keys {
		if k == id {
			continue
		}
		if e, ok := s.cache.Peek(k); ok {
			out = append(out, e.record)
		}
	}
	return out
}

// recordsWith lists the records as they will be after rec is added.
func (s *Store) recordsWith(rec Record) []Record {
	out := s.recordsWithout(rec.ID)
	if len(out) >= s.size {
		out = out[len(out)-s.size+1:]
	}
	return append(out, rec)
}

// writeLocked replaces the handle file with records; caller must hold s.mu.
func (s *Store) writeLocked(records []Record) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperrors.NewStoreError("save", "encoding records failed", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.NewStoreError("save", "creating handle directory failed", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return apperrors.NewStoreError("save", "writing handle file failed", err)
	}
	return nil
}
