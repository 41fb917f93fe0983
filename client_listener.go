package sam

import (
	"github.com/go-i2p/i2p-sam-client/addr"
	"github.com/go-i2p/i2p-sam-client/samopts"
	"github.com/go-i2p/i2p-sam-client/session"
	"github.com/go-i2p/i2p-sam-client/watcher"
)

// Listener accepts inbound I2P streams on a destination. Unlike a
// net.Listener, a broken accept does not mean the listener is dead: the
// bridge session underneath it may be rebuilt transparently, so Accept
// can return a KindSessionRecreated error that callers should treat as
// "call Accept again" rather than "stop listening".
type Listener struct {
	w *watcher.Watcher
}

// ListenStream creates a session for destination (TRANSIENT to generate
// one) at bridgeAddr (DefaultAddr if empty) and returns a Listener bound
// to it, ready to accept inbound streams.
func ListenStream(bridgeAddr, destination string, opts *samopts.Options) (*Listener, error) {
	w, err := watcher.New(bridgeAddr, destination, session.StyleStream, opts)
	if err != nil {
		return nil, err
	}
	return &Listener{w: w}, nil
}

// Accept blocks for the next inbound stream. On any accept error the
// underlying session and listener are rebuilt automatically and Accept
// returns a KindSessionRecreated error; the caller should call Accept
// again rather than give up.
func (l *Listener) Accept() (*Stream, error) {
	conn, err := l.w.Accept()
	if err != nil {
		return nil, err
	}
	return &Stream{conn: conn, ownsSess: false}, nil
}

// AcceptResult is one element of the sequence returned by Incoming.
type AcceptResult struct {
	Stream *Stream
	Err    error
}

// Incoming returns a channel that yields one AcceptResult per call to
// Accept, forever. A KindSessionRecreated result is delivered like any
// other: the sequence itself never ends on its account, mirroring an
// endless lazy accept loop that papers over individual session rebuilds.
// The caller stops the sequence simply by no longer reading from it and
// calling Close.
func (l *Listener) Incoming() <-chan AcceptResult {
	out := make(chan AcceptResult)
	go func() {
		defer close(out)
		for {
			conn, err := l.Accept()
			out <- AcceptResult{Stream: conn, Err: err}
		}
	}()
	return out
}

// LocalAddr returns the destination this listener accepts streams on.
func (l *Listener) LocalAddr() addr.SocketAddress {
	sess := l.w.Session()
	return addr.SocketAddress{Dest: addr.Destination(sess.LocalDest())}
}

// SeenPeer reports whether a peer destination has been observed on a
// previously accepted connection, independent of session rebuilds.
func (l *Listener) SeenPeer(destination string) bool { return l.w.SeenPeer(destination) }

// Close tears down the listener's current session. It does not drain
// Incoming; callers using Incoming should stop reading from it after
// calling Close.
func (l *Listener) Close() error { return l.w.Close() }
