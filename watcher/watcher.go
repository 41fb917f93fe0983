// Package watcher supervises a (session, listener) pair and transparently
// rebuilds both after any accept error: recycle-on-error rather than
// retry-in-place, because SAM errors on the forward channel are
// typically fatal to that session and discriminating them correctly is
// brittle.
package watcher

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/go-i2p/i2p-sam-client/samerr"
	"github.com/go-i2p/i2p-sam-client/samopts"
	"github.com/go-i2p/i2p-sam-client/session"
	"github.com/go-i2p/i2p-sam-client/stream"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// peerCacheSize bounds the watcher's diagnostic memory of recent peer
// destinations seen on accept, independent of how many sessions get
// rebuilt over the watcher's lifetime.
const peerCacheSize = 256

// Watcher owns a session and a listener built on it, and rebuilds both
// whenever Accept fails.
type Watcher struct {
	bridgeAddr  string
	destination string
	style       session.Style
	opts        *samopts.Options

	mu       sync.Mutex
	sess     *session.Session
	listener *stream.Listener

	// recentPeers remembers the last few peer destinations this watcher
	// has accepted connections from, across however many session
	// rebuilds have happened, so a caller debugging a flaky bridge can
	// ask "have we seen this peer before" without keeping its own cache.
	recentPeers *lru.Cache[string, struct{}]
}

// New builds a Watcher: a fresh session for destination (TRANSIENT
// generates one) and a listener bound to it.
func New(bridgeAddr, destination string, style session.Style, opts *samopts.Options) (*Watcher, error) {
	cache, err := lru.New[string, struct{}](peerCacheSize)
	if err != nil {
		return nil, samerr.WrapMessage(samerr.KindTransport, "allocate peer cache", err)
	}

	w := &Watcher{
		bridgeAddr:  bridgeAddr,
		destination: destination,
		style:       style,
		opts:        opts,
		recentPeers: cache,
	}
	if err := w.recreate(); err != nil {
		return nil, err
	}
	return w, nil
}

// recreate builds a brand-new session (with a freshly generated
// nickname) and listener, replacing whatever this Watcher held before.
// Callers must hold w.mu.
func (w *Watcher) recreate() error {
	nickname, err := session.NewNickname()
	if err != nil {
		return err
	}

	sess, err := session.Create(w.bridgeAddr, w.destination, nickname, w.style, w.opts)
	if err != nil {
		return err
	}

	w.sess = sess
	w.listener = stream.NewListener(sess)
	log.WithFields(logrus.Fields{"nickname": nickname}).Debug("watcher (re)created session and listener")
	return nil
}

// Accept delegates to the current listener. On any error it tears the
// (session, listener) pair down and rebuilds it with a fresh nickname,
// then returns samerr.KindSessionRecreated so the caller retries with
// fresh state rather than receiving the same broken listener twice.
func (w *Watcher) Accept() (*stream.Conn, error) {
	w.mu.Lock()
	listener := w.listener
	w.mu.Unlock()

	conn, err := listener.Accept()
	if err == nil {
		w.rememberPeer(conn)
		return conn, nil
	}

	log.WithError(err).Warn("accept failed, recreating session")

	w.mu.Lock()
	defer w.mu.Unlock()

	// Shut down and drop the broken pair before rebuilding.
	if w.sess != nil {
		w.sess.Shutdown()
		w.sess.Close()
	}

	if recreateErr := w.recreate(); recreateErr != nil {
		return nil, recreateErr
	}

	return nil, samerr.WrapMessage(samerr.KindSessionRecreated, "accept failed, session rebuilt", err)
}

// rememberPeer records the peer destination of an accepted connection in
// the diagnostic cache.
func (w *Watcher) rememberPeer(conn *stream.Conn) {
	w.recentPeers.Add(string(conn.RemoteAddr().Dest), struct{}{})
}

// SeenPeer reports whether destination has been observed on an accepted
// connection recently, across any number of session rebuilds.
func (w *Watcher) SeenPeer(destination string) bool {
	return w.recentPeers.Contains(destination)
}

// Session returns the watcher's current session. The returned value may
// become stale the instant a concurrent Accept rebuilds it; callers that
// need a stable handle should call this immediately before using it.
func (w *Watcher) Session() *session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess
}

// Close tears down the watcher's current session and listener. It does
// not rebuild.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sess == nil {
		return nil
	}
	return w.sess.Close()
}
