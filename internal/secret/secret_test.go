package secret

import (
	"testing"

	"github.com/99designs/keyring"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	if _, _, _, found, err := s.Get("nas", "team"); found || err != nil {
		t.Fatalf("empty store returned found=%v err=%v", found, err)
	}
	if err := s.Set("nas", "team", "corp", "alice", "pw"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	d, u, p, found, err := s.Get("nas", "team")
	if err != nil || !found || d != "corp" || u != "alice" || p != "pw" {
		t.Fatalf("Get = %q %q %q %v %v", d, u, p, found, err)
	}
	if err := s.Delete("nas", "team"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, _, found, _ := s.Get("nas", "team"); found {
		t.Fatal("entry survived Delete")
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestKeyringStore(t *testing.T) {
	exercise(t, NewStore(keyring.NewArrayKeyring(nil)))
}

func TestKeyringStore_UserWithoutDomain(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))
	if err := s.Set("NAS", "Team", "", "bob", "x"); err != nil {
		t.Fatal(err)
	}
	d, u, _, found, _ := s.Get("nas", "team")
	if !found || d != "" || u != "bob" {
		t.Fatalf("Get = %q %q %v", d, u, found)
	}
	if err := s.Delete("nas", "missing"); err != nil {
		t.Fatalf("deleting a missing entry should succeed: %v", err)
	}
}
