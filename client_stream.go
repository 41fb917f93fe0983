package sam

import (
	"net"
	"time"

	"github.com/go-i2p/i2p-sam-client/addr"
	"github.com/go-i2p/i2p-sam-client/session"
	"github.com/go-i2p/i2p-sam-client/stream"
)

// Stream is a connected, anonymous byte-stream to an I2P destination. It
// satisfies the shape of net.Conn via AsNetConn, and additionally exposes
// the endpoints as addr.SocketAddress rather than net.Addr directly,
// since an I2P destination carries more structure than a bare host:port.
type Stream struct {
	sess     *session.Session
	conn     *stream.Conn
	ownsSess bool
}

// DialStream opens a transient session at bridgeAddr (DefaultAddr if
// empty) and connects it to peer (a hostname, a ".b32.i2p" hash, or an
// already-resolved base-64 destination) on the given virtual port (0 for
// none). The returned Stream owns both the session and the connection;
// closing it tears both down.
func DialStream(bridgeAddr, peer string, port uint16) (*Stream, error) {
	sess, err := session.Transient(bridgeAddr)
	if err != nil {
		return nil, err
	}
	conn, err := stream.Dial(sess, peer, port)
	if err != nil {
		sess.Close()
		return nil, err
	}
	return &Stream{sess: sess, conn: conn, ownsSess: true}, nil
}

// Read implements io.Reader.
func (s *Stream) Read(b []byte) (int, error) { return s.conn.Read(b) }

// Write implements io.Writer.
func (s *Stream) Write(b []byte) (int, error) { return s.conn.Write(b) }

// Flush is a no-op: the bridge has no flush semantics on a data socket.
func (s *Stream) Flush() error { return s.conn.Flush() }

// Close closes the data connection and, if this Stream owns its
// session (as DialStream's result does), the session as well.
func (s *Stream) Close() error {
	err := s.conn.Close()
	if s.ownsSess {
		if sessErr := s.sess.Close(); err == nil {
			err = sessErr
		}
	}
	return err
}

// Shutdown forces any blocked read/write to return, without releasing
// the descriptor.
func (s *Stream) Shutdown() error { return s.conn.Shutdown() }

// LocalAddr returns this stream's own I2P socket address.
func (s *Stream) LocalAddr() addr.SocketAddress { return s.conn.LocalAddr() }

// RemoteAddr returns the peer's I2P socket address.
func (s *Stream) RemoteAddr() addr.SocketAddress { return s.conn.RemoteAddr() }

// SetDeadline, SetReadDeadline and SetWriteDeadline delegate to the
// underlying socket.
func (s *Stream) SetDeadline(t time.Time) error      { return s.conn.SetDeadline(t) }
func (s *Stream) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *Stream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }

// netConn adapts a *Stream to the standard net.Conn interface for
// callers that need that exact shape.
type netConn struct{ *Stream }

func (n netConn) LocalAddr() net.Addr  { return i2pNetAddr{n.Stream.LocalAddr()} }
func (n netConn) RemoteAddr() net.Addr { return i2pNetAddr{n.Stream.RemoteAddr()} }

// AsNetConn adapts s to the standard net.Conn interface.
func AsNetConn(s *Stream) net.Conn { return netConn{s} }

type i2pNetAddr struct{ a addr.SocketAddress }

func (a i2pNetAddr) Network() string { return a.a.Network() }
func (a i2pNetAddr) String() string  { return a.a.String() }
