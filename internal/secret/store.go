// Package secret persists SMB credentials for the shell's read channel.
package secret

import "sync"

// Store is a credentials store keyed by host and share. Implementations are
// safe for concurrent use.
type Store interface {
	Get(host, share string) (domain, user, pass string, found bool, err error)
	Set(host, share, domain, user, pass string) error
	Delete(host, share string) error
}

type memoryEntry struct{ domain, user, pass string }

// MemoryStore keeps credentials for the lifetime of the process. It is the
// fallback when no OS keyring is available.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(host, share string) (string, string, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[makeKey(host, share)]
	return e.domain, e.user, e.pass, ok, nil
}

func (s *MemoryStore) Set(host, share, domain, user, pass string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[makeKey(host, share)] = memoryEntry{domain: domain, user: user, pass: pass}
	return nil
}

func (s *MemoryStore) Delete(host, share string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, makeKey(host, share))
	return nil
}
