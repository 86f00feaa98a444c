package main

import (
	"flag"
	"log"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"quantumshield/internal/auth"
	"quantumshield/internal/relayserver"
	"quantumshield/internal/store"
)

func main() {
	var (
		listenAddr = flag.String("listen", "127.0.0.1:8443", "TCP address to listen on")
		home       = flag.String("home", defaultHome(), "directory holding user and friendship projections")
		jwtSecret  = flag.String("jwt-secret", "", "HMAC secret used to verify bearer tokens (required)")
		rps        = flag.Float64("rate", 20, "max send_message/send_file events per second per user")
		burst      = flag.Int("burst", 40, "burst size for the per-user event rate limit")
	)
	flag.Parse()

	if *jwtSecret == "" {
		log.Fatal("relay: -jwt-secret is required")
	}
	if err := os.MkdirAll(*home, 0o700); err != nil {
		log.Fatalf("relay: %v", err)
	}

	users := store.NewUserFileStore(*home)
	friendships := store.NewFriendshipFileStore(*home)
	verifier := auth.NewJWTVerifier([]byte(*jwtSecret))
	limiter := auth.NewKeyedLimiter(rate.Limit(*rps), *burst)

	srv := relayserver.New(verifier, users, friendships, limiter)

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("relay: listen: %v", err)
	}
	log.Printf("relay listening on %s (home=%s)", *listenAddr, *home)
	log.Fatal(srv.Serve(ln))
}

func defaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".quantumshield-relay"
	}
	return filepath.Join(dir, ".quantumshield-relay")
}
