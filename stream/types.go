// Package stream implements the two data-path operations that ride on
// top of a session: dialing out (STREAM CONNECT) and accepting inbound
// connections (STREAM ACCEPT). Both own their own samconn.Conn to the
// bridge and only borrow the session's identity (nickname, bridge
// address) rather than its control socket.
package stream

import (
	"net"
	"time"

	"github.com/go-i2p/i2p-sam-client/addr"
	"github.com/go-i2p/i2p-sam-client/samconn"
)

// Conn is a data byte-stream over I2P: the bound control socket from
// STREAM CONNECT or STREAM ACCEPT repurposed as a bidirectional pipe,
// once RESULT=OK has been observed on it.
type Conn struct {
	conn  *samconn.Conn
	laddr addr.SocketAddress
	raddr addr.SocketAddress
}

// Read implements io.Reader by delegating to the underlying socket.
func (c *Conn) Read(b []byte) (int, error) {
	return c.conn.NetConn().Read(b)
}

// Write implements io.Writer by delegating to the underlying socket.
func (c *Conn) Write(b []byte) (int, error) {
	return c.conn.NetConn().Write(b)
}

// Flush is a no-op: the bridge has no flush semantics on a data socket.
func (c *Conn) Flush() error { return nil }

// Close closes the underlying data socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Shutdown forces any blocked read/write on this connection to return,
// without releasing the descriptor.
func (c *Conn) Shutdown() error {
	return c.conn.Shutdown()
}

// LocalAddr returns this connection's own I2P socket address.
func (c *Conn) LocalAddr() addr.SocketAddress { return c.laddr }

// RemoteAddr returns the peer's I2P socket address.
func (c *Conn) RemoteAddr() addr.SocketAddress { return c.raddr }

// SetDeadline, SetReadDeadline and SetWriteDeadline delegate to the
// underlying socket, the supported cancellation mechanism for a blocked
// read or write.
func (c *Conn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

// i2pAddr adapts an addr.SocketAddress to the standard net.Addr
// interface.
type i2pAddr struct {
	addr addr.SocketAddress
}

func (a i2pAddr) Network() string { return a.addr.Network() }
func (a i2pAddr) String() string  { return a.addr.String() }

// NetAddr returns c.RemoteAddr() as a standard net.Addr.
func (c *Conn) NetAddr() net.Addr { return i2pAddr{addr: c.raddr} }
