package store_test

import (
	"testing"

	"quantumshield/internal/domain"
	"quantumshield/internal/store"
)

func TestUserFileStore_RegisterThenLookup(t *testing.T) {
	s := store.NewUserFileStore(t.TempDir())
	u := domain.User{UserID: 1, Username: "alice", KEMPub: []byte("kem"), SigPub: []byte("sig")}

	if err := s.Register(u); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok, err := s.LookupByID(1)
	if err != nil || !ok {
		t.Fatalf("lookup by id: ok=%v err=%v", ok, err)
	}
	if got.Username != u.Username {
		t.Fatalf("username mismatch: got %q", got.Username)
	}

	got, ok, err = s.LookupByUsername("alice")
	if err != nil || !ok {
		t.Fatalf("lookup by username: ok=%v err=%v", ok, err)
	}
	if got.UserID != u.UserID {
		t.Fatalf("user id mismatch: got %d", got.UserID)
	}
}

func TestUserFileStore_LookupMissing_ReturnsFalse(t *testing.T) {
	s := store.NewUserFileStore(t.TempDir())

	if _, ok, err := s.LookupByID(99); err != nil || ok {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.LookupByUsername("nobody"); err != nil || ok {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}
}

func TestUserFileStore_Register_OverwritesExisting(t *testing.T) {
	s := store.NewUserFileStore(t.TempDir())

	if err := s.Register(domain.User{UserID: 1, Username: "alice"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Register(domain.User{UserID: 1, Username: "alice2"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	got, ok, err := s.LookupByID(1)
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if got.Username != "alice2" {
		t.Fatalf("expected overwritten username, got %q", got.Username)
	}
}
