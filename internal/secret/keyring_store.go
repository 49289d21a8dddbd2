package secret

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "pickfs.smb"

type keyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the OS keyring. Callers fall back to a MemoryStore
// when it fails.
func NewKeyringStore() (Store, error) {
	r, err := keyring.Open(keyring.Config{ServiceName: serviceName})
	if err != nil {
		return nil, err
	}
	return NewStore(r), nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) Store {
	return &keyringStore{ring: ring}
}

// Open returns the OS keyring store, or a MemoryStore when none is usable.
func Open() (Store, bool) {
	s, err := NewKeyringStore()
	if err != nil {
		return NewMemoryStore(), false
	}
	return s, true
}

func makeKey(host, share string) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(host), strings.ToLower(share))
}

// The user is stored in the item description as "domain\user" or "user";
// the password is the item data.
func (s *keyringStore) Get(host, share string) (domain, user, pass string, found bool, err error) {
	item, err := s.ring.Get(makeKey(host, share))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", "", "", false, nil
	}
	if err != nil {
		return "", "", "", false, err
	}
	if i := strings.IndexAny(item.Description, `\;`); i >= 0 {
		domain, user = item.Description[:i], item.Description[i+1:]
	} else {
		user = item.Description
	}
	return domain, user, string(item.Data), true, nil
}

func (s *keyringStore) Set(host, share, domain, user, pass string) error {
	desc := user
	if domain != "" {
		desc = domain + `\` + user
	}
	return s.ring.Set(keyring.Item{
		Key:         makeKey(host, share),
		Data:        []byte(pass),
		Description: desc,
		Label:       serviceName,
	})
}

func (s *keyringStore) Delete(host, share string) error {
	err := s.ring.Remove(makeKey(host, share))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
