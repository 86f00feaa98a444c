// Package relayserver implements the authenticated realtime relay (C4): a
// TCP event bus that enforces the friendship ACL, verifies sender signatures
// before forwarding, and never persists an envelope past handler return.
//
// Transport is grounded on companyzero-zkc/zkserver/zkserver.go's listener
// and per-connection goroutine pair; framing is newline-terminated JSON
// (via encoding/json.Decoder/Encoder) rather than zkc's XDR, to produce
// JSON event payloads clients can decode without a shared IDL.
package relayserver

import (
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"

	"quantumshield/internal/auth"
	"quantumshield/internal/domain"
)

// HandshakeTimeout bounds how long a newly-accepted connection has to send
// its handshake frame before the relay gives up on it.
const HandshakeTimeout = 10 * time.Second

// Server is the relay's connection/room registry and event dispatcher.
type Server struct {
	verifier    domain.TokenVerifier
	users       domain.UserStore
	friendships domain.FriendshipStore
	limiter     *auth.KeyedLimiter

	mu    sync.RWMutex
	rooms map[domain.UserID][]*conn
}

// New returns a relay Server. limiter may be nil to disable event-layer rate
// limiting (tests commonly do this).
func New(verifier domain.TokenVerifier, users domain.UserStore, friendships domain.FriendshipStore, limiter *auth.KeyedLimiter) *Server {
	return &Server{
		verifier:    verifier,
		users:       users,
		friendships: friendships,
		limiter:     limiter,
		rooms:       make(map[domain.UserID][]*conn),
	}
}

// Serve accepts connections on ln until it returns an error (typically
// because ln was closed). Each connection is handled on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(nc)
	}
}

func (s *Server) handleConn(nc net.Conn) {
	defer nc.Close()

	nc.SetReadDeadline(time.Now().Add(HandshakeTimeout))
	dec := json.NewDecoder(nc)
	var hs wireMessage
	if err := dec.Decode(&hs); err != nil {
		log.Printf("relayserver: handshake read from %v failed: %v", nc.RemoteAddr(), err)
		return
	}

	claims, err := s.verifier.Verify(hs.Token)
	if err != nil {
		log.Printf("relayserver: handshake auth failed from %v: %v", nc.RemoteAddr(), err)
		_ = json.NewEncoder(nc).Encode(wireMessage{Type: typeMessageError, Error: "authentication error"})
		return
	}
	if claims.UserID != domain.UserID(hs.UserID) {
		log.Printf("relayserver: handshake identity mismatch from %v: token subject %v, claimed %v",
			nc.RemoteAddr(), claims.UserID, hs.UserID)
		_ = json.NewEncoder(nc).Encode(wireMessage{Type: typeMessageError, Error: "authentication error"})
		return
	}
	nc.SetReadDeadline(time.Time{})

	c := newConn(nc, dec, claims.UserID, claims.Username)

	s.join(c)
	defer s.leave(c)

	go c.runWriter()

	for {
		var msg wireMessage
		if err := c.dec.Decode(&msg); err != nil {
			return
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) join(c *conn) {
	s.mu.Lock()
	s.rooms[c.userID] = append(s.rooms[c.userID], c)
	s.mu.Unlock()
	log.Printf("relayserver: %v (%v) joined from %v", c.userID, c.username, c.nc.RemoteAddr())
}

func (s *Server) leave(c *conn) {
	c.close()

	s.mu.Lock()
	peers := s.rooms[c.userID]
	for i, peer := range peers {
		if peer == c {
			s.rooms[c.userID] = append(peers[:i], peers[i+1:]...)
			break
		}
	}
	if len(s.rooms[c.userID]) == 0 {
		delete(s.rooms, c.userID)
	}
	s.mu.Unlock()
	log.Printf("relayserver: %v (%v) left", c.userID, c.username)
}

// room returns a snapshot of the live connections for user, or nil if none.
func (s *Server) room(user domain.UserID) []*conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	peers := s.rooms[user]
	if len(peers) == 0 {
		return nil
	}
	out := make([]*conn, len(peers))
	copy(out, peers)
	return out
}

func (s *Server) dispatch(c *conn, msg wireMessage) {
	switch msg.Type {
	case typeSendMessage:
		s.handleSendMessage(c, msg)
	case typeSendFile:
		s.handleSendFile(c, msg)
	default:
		c.send(wireMessage{Type: typeMessageError, Error: "unknown event type: " + msg.Type})
	}
}

// PushFriendRequest notifies receiver's room (if any live connection exists)
// that a friend request was created via the HTTP surface (§4.4,
// friend_request_received). It is a best-effort notification, not
// authoritative — the HTTP surface itself is out of scope for the relay.
func (s *Server) PushFriendRequest(receiver domain.UserID, req domain.FriendRequest) {
	peers := s.room(receiver)
	if len(peers) == 0 {
		return
	}
	notice := wireMessage{
		Type:      typeFriendRequestRecvd,
		RequestID: string(req.ID),
		SenderID:  int64(req.SenderID),
		CreatedAt: req.CreatedAt,
	}
	for _, peer := range peers {
		peer.send(notice)
	}
}
