package stream

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-i2p/i2p-sam-client/addr"
	"github.com/go-i2p/i2p-sam-client/samconn"
	"github.com/go-i2p/i2p-sam-client/samerr"
	"github.com/go-i2p/i2p-sam-client/session"
)

// Listener accepts inbound I2P streaming connections bound to a
// session's identity. Unlike a TCP listener it opens a fresh control
// connection for every single Accept call: SAM has no persistent
// "listening socket", only a STREAM ACCEPT command issued once per
// expected connection. Accept is a synchronous per-call sequence rather
// than an always-running background goroutine, since the watcher
// package owns the supervisory accept-and-rebuild loop, not this one.
type Listener struct {
	sess *session.Session
}

// NewListener returns a Listener bound to sess's identity. It opens no
// socket until Accept is called.
func NewListener(sess *session.Session) *Listener {
	return &Listener{sess: sess}
}

// Addr returns the listener's own I2P socket address.
func (l *Listener) Addr() net.Addr {
	return i2pAddr{addr: addr.NewSocketAddress(addr.Destination(l.sess.LocalDest()), 0)}
}

// Accept blocks for the next inbound connection: it opens a fresh
// control connection, issues STREAM ACCEPT, and blocks reading one more
// line carrying the connecting peer's base-64 destination (optionally
// followed by a FROM_PORT/TO_PORT tail on SAM >=3.2). A missing
// destination token is a protocol error (samerr.KindKeyNotFound),
// matching the assumption that this line is always present.
func (l *Listener) Accept() (*Conn, error) {
	conn, err := samconn.Connect(l.sess.BridgeAddr())
	if err != nil {
		return nil, err
	}

	// Close the accept socket on any error before the data handoff; on
	// success ownership passes to the returned Conn.
	ok := false
	defer func() {
		if !ok {
			conn.Close()
		}
	}()

	request := fmt.Sprintf("STREAM ACCEPT ID=%s SILENT=false\n", l.sess.Nickname())
	if _, err := conn.Send(request, "STREAM STATUS"); err != nil {
		return nil, err
	}
	conn.MarkBound()

	line, err := conn.ReadLine()
	if err != nil {
		return nil, err
	}

	peerDest := firstToken(line)
	if peerDest == "" {
		return nil, samerr.New(samerr.KindKeyNotFound, "no b64 destination in accept")
	}

	fromPort, toPort := acceptPorts(line)

	ok = true
	return &Conn{
		conn:  conn,
		laddr: addr.NewSocketAddress(addr.Destination(l.sess.LocalDest()), toPort),
		raddr: addr.NewSocketAddress(addr.Destination(peerDest), fromPort),
	}, nil
}

// firstToken returns the first whitespace-delimited token of line.
func firstToken(line string) string {
	for i, r := range line {
		if r == ' ' || r == '\t' {
			return line[:i]
		}
	}
	return line
}

// acceptPorts parses the optional FROM_PORT=/TO_PORT= tail SAM >=3.2
// appends to the accept side-channel line, after the peer's
// destination. Either or both may be absent, in which case the
// corresponding port is 0.
func acceptPorts(line string) (fromPort, toPort uint16) {
	fields := strings.Fields(line)
	if len(fields) <= 1 {
		return 0, 0
	}
	for _, field := range fields[1:] {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		switch key {
		case "FROM_PORT":
			if v, err := samconn.ParsePort(value); err == nil {
				fromPort = v
			}
		case "TO_PORT":
			if v, err := samconn.ParsePort(value); err == nil {
				toPort = v
			}
		}
	}
	return fromPort, toPort
}
