package app

import (
	"os"
	"path/filepath"

	"quantumshield/internal/auth"
	"quantumshield/internal/domain"
	"quantumshield/internal/services/friendship"
	"quantumshield/internal/services/keystore"
	"quantumshield/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	KeystoreStore    domain.KeystoreStore
	FriendshipStore  domain.FriendshipStore
	UserStore        domain.UserStore
	OfflineQueue     domain.OfflineQueueStore
	Keystore         domain.KeystoreService
	Friendships      domain.FriendshipService
	Verifier         domain.TokenVerifier
	JWT              *auth.JWTVerifier // concrete handle, for local dev token issuance only
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	mirrorDir := filepath.Join(cfg.Home, "session")
	if err := os.MkdirAll(mirrorDir, 0o700); err != nil {
		return nil, err
	}

	keystoreStore := store.NewKeystoreFileStore(cfg.Home)
	friendshipStore := store.NewFriendshipFileStore(cfg.Home)
	userStore := store.NewUserFileStore(cfg.Home)
	queueStore := store.NewQueueFileStore(cfg.Home)

	ks := keystore.New(keystoreStore, mirrorDir)
	fs := friendship.New(friendshipStore)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	return &Wire{
		KeystoreStore:   keystoreStore,
		FriendshipStore: friendshipStore,
		UserStore:       userStore,
		OfflineQueue:    queueStore,
		Keystore:        ks,
		Friendships:     fs,
		Verifier:        verifier,
		JWT:             verifier,
	}, nil
}

// App assembles an App from the wired dependency graph.
func (w *Wire) App(relayAddr string) *App {
	return New(w.Keystore, w.Friendships, w.UserStore, w.Verifier, relayAddr)
}
