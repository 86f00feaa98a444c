package relayserver

import (
	"encoding/json"
	"log"
	"net"

	"quantumshield/internal/domain"
)

// conn is one authenticated, bidirectional connection. Reads happen
// synchronously in the server's per-connection goroutine; writes are
// serialized through a single writer goroutine so concurrent emits (an ack
// racing a broadcast from another sender) never interleave on the wire.
//
// Grounded on companyzero-zkc/zkserver/zkserver.go's sessionContext split
// between a read loop and a dedicated sessionWriter goroutine fed by a
// buffered channel.
type conn struct {
	nc       net.Conn
	dec      *json.Decoder
	userID   domain.UserID
	username domain.Username

	writer chan wireMessage
	quit   chan struct{}
}

const writerBacklog = 32

// newConn wraps nc for a connection already authenticated as (userID,
// username). dec is the json.Decoder the caller used to read the handshake
// frame, reused here so any bytes it has already buffered past the
// handshake object are not discarded.
func newConn(nc net.Conn, dec *json.Decoder, userID domain.UserID, username domain.Username) *conn {
	return &conn{
		nc:       nc,
		dec:      dec,
		userID:   userID,
		username: username,
		writer:   make(chan wireMessage, writerBacklog),
		quit:     make(chan struct{}),
	}
}

// send enqueues msg for delivery without blocking the caller on I/O. It is
// safe from any goroutine, including ones handling a different connection's
// event (the broadcast-to-receiver case).
func (c *conn) send(msg wireMessage) {
	select {
	case c.writer <- msg:
	case <-c.quit:
	}
}

// runWriter drains c.writer onto the socket until c.quit fires or a write
// fails, at which point it closes the connection so the read loop unblocks.
func (c *conn) runWriter() {
	enc := json.NewEncoder(c.nc)
	for {
		select {
		case <-c.quit:
			return
		case msg, ok := <-c.writer:
			if !ok {
				return
			}
			if err := enc.Encode(msg); err != nil {
				log.Printf("relayserver: write to %v (%v) failed: %v", c.userID, c.username, err)
				c.nc.Close()
				return
			}
		}
	}
}

func (c *conn) close() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
	c.nc.Close()
}
