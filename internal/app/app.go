package app

import (
	"context"

	"quantumshield/internal/domain"
	"quantumshield/internal/relayclient"
)

// App bundles the services a CLI command needs, already wired to their
// backing stores.
type App struct {
	Keystore    domain.KeystoreService
	Friendships domain.FriendshipService
	Users       domain.UserStore
	Verifier    domain.TokenVerifier

	relayAddr string
}

// New assembles an App from already-constructed services.
func New(keystore domain.KeystoreService, friendships domain.FriendshipService, users domain.UserStore, verifier domain.TokenVerifier, relayAddr string) *App {
	return &App{
		Keystore:    keystore,
		Friendships: friendships,
		Users:       users,
		Verifier:    verifier,
		relayAddr:   relayAddr,
	}
}

// DialRelay opens an authenticated connection to the configured relay.
func (a *App) DialRelay(ctx context.Context, userID domain.UserID, token string) (*relayclient.Conn, error) {
	return relayclient.Dial(ctx, a.relayAddr, userID, token)
}
