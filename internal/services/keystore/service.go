// Package keystore implements the client-side keystore lifecycle: password
// unlock, an in-memory session with an inactivity timeout, and a
// session-scoped mirror so a freshly started process can recover an
// unexpired session without re-prompting for a password.
package keystore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
	"quantumshield/internal/util/memzero"
)

// InactivityTimeout is the maximum idle period before a session is cleared,
// even if the process hosting it is still running.
const InactivityTimeout = 30 * time.Minute

// ErrSessionNotInitialized is returned by GetSecretKeys when no live or
// recoverable session exists for the requested username.
var ErrSessionNotInitialized = errors.New("keystore: session not initialized")

// ErrWrongPassword is returned by Unlock when the derived KEK fails to
// decrypt the stored secrets blob.
var ErrWrongPassword = errors.New("keystore: wrong password")

type secretsBlob struct {
	KEMSec domain.KEMPrivateKey `json:"kem_sec"`
	SigSec domain.SigPrivateKey `json:"sig_sec"`
}

// mirrorRecord is the on-disk shape of the session-scoped mirror: the KEK
// plus enough metadata to validate a restore attempt when a new process
// picks up an unexpired session.
type mirrorRecord struct {
	Username  domain.Username `json:"username"`
	KEK       []byte          `json:"kek"`
	UpdatedAt int64           `json:"updated_at"`
}

// Service manages the client keystore lifecycle: unlocking, holding the
// decrypted identity in memory for a bounded window, and clearing it again.
type Service struct {
	mu        sync.Mutex
	store     domain.KeystoreStore
	mirrorDir string

	session *domain.SessionState
	timer   *time.Timer
}

// New returns a keystore Service backed by store, mirroring session state
// under mirrorDir (a directory shared by successive processes, such as
// <home>/session, so a later process can restore the session).
func New(store domain.KeystoreStore, mirrorDir string) *Service {
	return &Service{store: store, mirrorDir: mirrorDir}
}

func (s *Service) mirrorPath(username domain.Username) string {
	return filepath.Join(s.mirrorDir, "session_"+username.String()+".json")
}

// Initialize provisions a brand-new keystore record for username: a fresh
// salt, a KEK derived via PBKDF2-HMAC-SHA256, and the secret keys sealed
// under that KEK. It leaves the account unlocked.
func (s *Service) Initialize(username domain.Username, password string, id domain.Identity) error {
	salt := make([]byte, crypto.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	kek := crypto.DeriveKEK(password, salt)

	raw, err := json.Marshal(secretsBlob{KEMSec: id.KEMSec, SigSec: id.SigSec})
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}
	iv, sealed, err := crypto.Seal(kek, raw, nil)
	memzero.Zero(raw)
	if err != nil {
		return fmt.Errorf("seal secrets: %w", err)
	}

	rec := domain.KeystoreRecord{
		Username:   username,
		Salt:       salt,
		IV:         iv,
		Ciphertext: sealed,
		KDFName:    "PBKDF2-HMAC-SHA256",
		Iterations: crypto.KEKIterations,
	}
	if err := s.store.SaveRecord(rec); err != nil {
		return fmt.Errorf("save keystore record: %w", err)
	}

	pub := domain.PublicKeyRecord{Username: username, KEMPub: id.KEMPub, SigPub: id.SigPub}
	if err := s.store.SavePublicKeys(pub); err != nil {
		return fmt.Errorf("save public keys: %w", err)
	}

	s.setSession(username, kek)
	return nil
}

// Unlock re-derives the KEK from password and validates it against the
// stored ciphertext before establishing a session.
func (s *Service) Unlock(username domain.Username, password string) error {
	rec, ok, err := s.store.LoadRecord(username)
	if err != nil {
		return fmt.Errorf("load keystore record: %w", err)
	}
	if !ok {
		return ErrSessionNotInitialized
	}

	kek := crypto.DeriveKEK(password, rec.Salt)
	if _, err := crypto.Open(kek, rec.IV, rec.Ciphertext, nil); err != nil {
		memzero.Zero(kek)
		return ErrWrongPassword
	}

	s.setSession(username, kek)
	return nil
}

// setSession installs kek as the live session for username, refreshes the
// inactivity timer, and updates the session mirror. Callers must not reuse
// kek afterward; the service owns its lifetime.
func (s *Service) setSession(username domain.Username, kek []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.session = &domain.SessionState{Username: username, KEK: kek, LastActivityAt: now.Unix()}
	s.resetTimerLocked()
	s.writeMirrorLocked(username, kek, now.Unix())
}

func (s *Service) resetTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(InactivityTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.clearLocked()
	})
}

func (s *Service) writeMirrorLocked(username domain.Username, kek []byte, updatedAt int64) {
	if s.mirrorDir == "" {
		return
	}
	rec := mirrorRecord{Username: username, KEK: kek, UpdatedAt: updatedAt}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = os.MkdirAll(s.mirrorDir, 0o700)
	_ = os.WriteFile(s.mirrorPath(username), b, 0o600)
}

// GetSecretKeys returns the decrypted secret keys for username, extending
// the session's activity deadline. If no in-memory session exists, it
// attempts to restore one from the session mirror.
func (s *Service) GetSecretKeys(username domain.Username) (domain.Identity, error) {
	s.mu.Lock()
	if s.session == nil || s.session.Username != username {
		if !s.restoreFromMirrorLocked(username) {
			s.mu.Unlock()
			return domain.Identity{}, ErrSessionNotInitialized
		}
	}
	if time.Since(time.Unix(s.session.LastActivityAt, 0)) > InactivityTimeout {
		s.clearLocked()
		s.mu.Unlock()
		return domain.Identity{}, ErrSessionNotInitialized
	}
	s.session.LastActivityAt = time.Now().Unix()
	s.resetTimerLocked()
	kek := append([]byte(nil), s.session.KEK...)
	s.mu.Unlock()
	defer memzero.Zero(kek)

	rec, ok, err := s.store.LoadRecord(username)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load keystore record: %w", err)
	}
	if !ok {
		return domain.Identity{}, ErrSessionNotInitialized
	}
	raw, err := crypto.Open(kek, rec.IV, rec.Ciphertext, nil)
	if err != nil {
		return domain.Identity{}, ErrSessionNotInitialized
	}
	defer memzero.Zero(raw)

	var blob secretsBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal secrets: %w", err)
	}

	pub, _, err := s.store.LoadPublicKeys(username)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load public keys: %w", err)
	}
	return domain.Identity{KEMPub: pub.KEMPub, KEMSec: blob.KEMSec, SigPub: pub.SigPub, SigSec: blob.SigSec}, nil
}

// restoreFromMirrorLocked attempts to repopulate s.session from the
// session-scoped mirror. s.mu must be held.
func (s *Service) restoreFromMirrorLocked(username domain.Username) bool {
	if s.mirrorDir == "" {
		return false
	}
	b, err := os.ReadFile(s.mirrorPath(username))
	if err != nil {
		return false
	}
	var rec mirrorRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return false
	}
	if rec.Username != username {
		return false
	}
	if time.Since(time.Unix(rec.UpdatedAt, 0)) > InactivityTimeout {
		return false
	}
	s.session = &domain.SessionState{Username: rec.Username, KEK: rec.KEK, LastActivityAt: rec.UpdatedAt}
	s.resetTimerLocked()
	return true
}

// GetPublicKeys returns the cached public keys for username.
func (s *Service) GetPublicKeys(username domain.Username) (domain.PublicKeyRecord, error) {
	pub, ok, err := s.store.LoadPublicKeys(username)
	if err != nil {
		return domain.PublicKeyRecord{}, err
	}
	if !ok {
		return domain.PublicKeyRecord{}, ErrSessionNotInitialized
	}
	return pub, nil
}

// ClearSession zeros the in-memory KEK, deletes the session mirror, and
// cancels the inactivity timer.
func (s *Service) ClearSession(username domain.Username) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.Username == username {
		s.clearLocked()
	}
	if s.mirrorDir != "" {
		_ = os.Remove(s.mirrorPath(username))
	}
}

func (s *Service) clearLocked() {
	if s.session != nil {
		memzero.Zero(s.session.KEK)
		s.session = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

var _ domain.KeystoreService = (*Service)(nil)
