// Package samconn owns the single TCP socket to a SAM bridge: the HELLO
// handshake, one-command one-reply request/response discipline, and
// RESULT classification, generalized behind one Send method instead of
// one bespoke command function per call site.
package samconn

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/go-i2p/i2p-sam-client/samerr"
	"github.com/go-i2p/i2p-sam-client/samopts"
	"github.com/go-i2p/i2p-sam-client/wireproto"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// DefaultAddr is the bridge's conventional listen address.
const DefaultAddr = "127.0.0.1:7656"

// minVersion/maxVersion bound the SAM protocol versions this client
// negotiates; versions outside 3.0-3.2 are out of scope.
const (
	minVersion = "3.0"
	maxVersion = "3.2"
)

// state tracks where a Conn sits in the Fresh -> Greeted -> Bound ->
// Closed lifecycle.
type state int

const (
	stateFresh state = iota
	stateGreeted
	stateBound
	stateClosed
)

// Conn owns one TCP socket to a SAM bridge. A Conn bound by SESSION
// CREATE, STREAM CONNECT, STREAM FORWARD, or STREAM ACCEPT must not be
// used to send any further command, apart from the NAMING LOOKUP NAME=ME
// that session.Create issues right after SESSION CREATE; see Duplicate
// for obtaining a second
// handle to the same identity without reusing this socket for data.
type Conn struct {
	addr  string
	conn  net.Conn
	r     *bufio.Reader
	state state
}

// Connect dials addr (DefaultAddr if empty) and performs the HELLO
// handshake, returning a Conn in the Greeted state.
func Connect(addr string) (*Conn, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	netConn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, oops.Errorf("samconn: dial %s: %w", addr, samerr.Wrap(samerr.KindTransport, err))
	}

	c := &Conn{
		addr: addr,
		conn: netConn,
		r:    bufio.NewReader(netConn),
	}
	if err := c.handshake(); err != nil {
		netConn.Close()
		return nil, err
	}
	return c, nil
}

// handshake sends HELLO VERSION and validates the reply.
func (c *Conn) handshake() error {
	hello := fmt.Sprintf("HELLO VERSION MIN=%s MAX=%s \n", minVersion, maxVersion)
	reply, err := c.send(hello, "HELLO REPLY")
	if err != nil {
		return err
	}
	if err := checkResult(reply); err != nil {
		return err
	}
	c.state = stateGreeted
	log.WithFields(logrus.Fields{"addr": c.addr, "version": reply["VERSION"]}).Debug("SAM hello successful")
	return nil
}

// Send writes request verbatim (the caller supplies the trailing "\n"),
// reads exactly one reply line, parses it against expectedTag, and
// returns the key/value map. A non-OK RESULT is classified into a typed
// *samerr.Error; a missing RESULT is treated as OK.
func (c *Conn) Send(request, expectedTag string) (map[string]string, error) {
	reply, err := c.send(request, expectedTag)
	if err != nil {
		return nil, err
	}
	if err := checkResult(reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// send performs the raw write/read/parse without RESULT classification,
// used internally by handshake and Send, which each classify RESULT
// themselves.
func (c *Conn) send(request, expectedTag string) (map[string]string, error) {
	if c.state == stateClosed {
		return nil, samerr.New(samerr.KindTransport, "connection closed")
	}
	if _, err := c.conn.Write([]byte(request)); err != nil {
		return nil, samerr.WrapMessage(samerr.KindTransport, "write request", err)
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return nil, samerr.WrapMessage(samerr.KindTransport, "read reply", err)
	}
	pairs, err := wireproto.ExpectTag(line, expectedTag)
	if err != nil {
		return nil, samerr.WrapMessage(samerr.KindParse, line, err)
	}
	return pairs.Map(), nil
}

// checkResult classifies a non-OK RESULT field into a typed error.
func checkResult(reply map[string]string) error {
	result, ok := reply["RESULT"]
	if !ok || result == "OK" {
		return nil
	}
	return samerr.FromResult(result, reply["MESSAGE"])
}

// NamingLookup resolves name (which may be a hostname, a ".b32.i2p"
// hash, or the sentinel "ME") to its base-64 destination.
func (c *Conn) NamingLookup(name string) (string, error) {
	reply, err := c.Send(fmt.Sprintf("NAMING LOOKUP NAME=%s \n", name), "NAMING REPLY")
	if err != nil {
		return "", err
	}
	value, ok := reply["VALUE"]
	if !ok {
		return "", samerr.New(samerr.KindParse, "NAMING REPLY missing VALUE")
	}
	return value, nil
}

// GenerateDestination issues DEST GENERATE for sigType and returns the
// (public, private) destination key pair.
func (c *Conn) GenerateDestination(sigType samopts.SignatureType) (pub, priv string, err error) {
	reply, err := c.Send(fmt.Sprintf("DEST GENERATE SIGNATURE_TYPE=%s \n", sigType), "DEST REPLY")
	if err != nil {
		return "", "", err
	}
	pub, pubOK := reply["PUB"]
	priv, privOK := reply["PRIV"]
	if !pubOK || !privOK {
		return "", "", samerr.New(samerr.KindParse, "DEST REPLY missing PUB/PRIV")
	}
	return pub, priv, nil
}

// MarkBound records that a SESSION CREATE / STREAM CONNECT / STREAM
// FORWARD / STREAM ACCEPT has succeeded on this socket: no further
// command may be sent on it, apart from the NAMING LOOKUP NAME=ME that
// session.Create issues right after SESSION CREATE.
func (c *Conn) MarkBound() {
	c.state = stateBound
}

// ReadLine reads one additional raw line from the socket, used for the
// STREAM ACCEPT peer-destination side channel and similar one-shot
// follow-on lines that aren't SAM command replies.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", samerr.WrapMessage(samerr.KindTransport, "read line", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NetConn exposes the underlying socket once bound to a data channel
// (STREAM CONNECT/ACCEPT). Callers must not write further SAM commands
// on it.
func (c *Conn) NetConn() net.Conn {
	return c.conn
}

// SetDeadline, SetReadDeadline and SetWriteDeadline delegate to the
// underlying socket.
func (c *Conn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

// Close closes the underlying socket.
func (c *Conn) Close() error {
	if c.state == stateClosed {
		return nil
	}
	c.state = stateClosed
	return c.conn.Close()
}

// Shutdown shuts down both directions of the underlying socket at the TCP
// layer, without releasing the file descriptor, matching the watcher's
// need to force a parked read/write to return before dropping the
// connection. A connection that is not a *net.TCPConn is closed instead.
func (c *Conn) Shutdown() error {
	if tc, ok := c.conn.(*net.TCPConn); ok {
		err := tc.CloseRead()
		if werr := tc.CloseWrite(); err == nil {
			err = werr
		}
		return err
	}
	return c.Close()
}

// Duplicate returns an independent Conn backed by a duplicated OS socket
// descriptor pointed at the same kernel-side connection: both handles
// observe the same byte stream. It exists so a Session's identity can be
// handed to a Stream or Listener without ever reusing the session's
// control socket to send a second command on it; callers must not issue
// concurrent SAM commands from both halves.
func (c *Conn) Duplicate() (*Conn, error) {
	tc, ok := c.conn.(*net.TCPConn)
	if !ok {
		return nil, samerr.New(samerr.KindTransport, "underlying connection is not a *net.TCPConn")
	}
	f, err := tc.File()
	if err != nil {
		return nil, samerr.WrapMessage(samerr.KindTransport, "duplicate socket descriptor", err)
	}
	defer f.Close()

	dupConn, err := net.FileConn(f)
	if err != nil {
		return nil, samerr.WrapMessage(samerr.KindTransport, "wrap duplicated descriptor", err)
	}

	return &Conn{
		addr:  c.addr,
		conn:  dupConn,
		r:     bufio.NewReader(dupConn),
		state: c.state,
	}, nil
}

// Addr returns the bridge address this connection was dialed to.
func (c *Conn) Addr() string { return c.addr }

// ParsePort parses the value half of a FROM_PORT=/TO_PORT= token on the
// accept side-channel line.
func ParsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
