package stream

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/go-i2p/i2p-sam-client/addr"
	"github.com/go-i2p/i2p-sam-client/samconn"
	"github.com/go-i2p/i2p-sam-client/session"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Dial opens a fresh control connection bound to sess's bridge, resolves
// peer (a hostname, a .b32.i2p hash, or an already-resolved base-64
// destination) via NAMING LOOKUP, then issues STREAM CONNECT. port, if
// non-zero, is sent as TO_PORT. On success the control socket it opened
// becomes the returned Conn's data socket.
//
// Dial never reuses sess's own control socket: it always opens its own,
// per the invariant that a session's control connection carries no data.
func Dial(sess *session.Session, peer string, port uint16) (*Conn, error) {
	conn, err := samconn.Connect(sess.BridgeAddr())
	if err != nil {
		return nil, err
	}

	resolved, err := conn.NamingLookup(peer)
	if err != nil {
		conn.Close()
		return nil, err
	}

	request := fmt.Sprintf("STREAM CONNECT ID=%s DESTINATION=%s SILENT=false", sess.Nickname(), resolved)
	if port > 0 {
		request += fmt.Sprintf(" TO_PORT=%d", port)
	}
	request += "\n"

	if _, err := conn.Send(request, "STREAM STATUS"); err != nil {
		conn.Close()
		return nil, err
	}
	conn.MarkBound()

	log.WithFields(logrus.Fields{"nickname": sess.Nickname(), "peer": peer}).Debug("stream connected")

	return &Conn{
		conn:  conn,
		laddr: addr.NewSocketAddress(addr.Destination(sess.LocalDest()), 0),
		raddr: addr.NewSocketAddress(addr.Destination(resolved), port),
	}, nil
}
