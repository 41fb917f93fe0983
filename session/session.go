// Package session ties a long-lived control connection to a named
// destination at the bridge, exposing a single SESSION CREATE operation
// rather than a multi-session PRIMARY/sub-session hierarchy.
package session

import (
	"crypto/rand"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/go-i2p/i2p-sam-client/addr"
	"github.com/go-i2p/i2p-sam-client/samconn"
	"github.com/go-i2p/i2p-sam-client/samerr"
	"github.com/go-i2p/i2p-sam-client/samopts"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Style selects the SESSION CREATE STYLE= value. Only Stream is fully
// supported; Datagram and Raw are accepted on the wire but the data-path
// types built on top of this package (stream.*) only implement Stream.
type Style string

const (
	StyleStream   Style = "STREAM"
	StyleDatagram Style = "DATAGRAM"
	StyleRaw      Style = "RAW"
)

const nicknameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewNickname generates a unique session label in the "i2prs-<8 alnum>"
// form used for generated session nicknames.
func NewNickname() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", samerr.WrapMessage(samerr.KindTransport, "generate nickname", err)
	}
	out := make([]byte, 8)
	for i, b := range buf {
		out[i] = nicknameAlphabet[int(b)%len(nicknameAlphabet)]
	}
	return "i2prs-" + string(out), nil
}

// Session is a named, persistent identity at the bridge: a control
// connection that must remain open and otherwise idle for the session's
// lifetime, plus the destination it was assigned.
type Session struct {
	conn       *samconn.Conn
	nickname   string
	style      Style
	localDest  string
	bridgeAddr string
}

// Create opens a fresh control connection, issues SESSION CREATE, and on
// success resolves the session's own destination via NAMING LOOKUP
// NAME=ME. The returned Session's control socket must not be reused to
// send any further command; it exists only to keep the session alive at
// the bridge until Close.
func Create(bridgeAddr string, destination string, nickname string, style Style, opts *samopts.Options) (*Session, error) {
	conn, err := samconn.Connect(bridgeAddr)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = samopts.New()
	}

	request := fmt.Sprintf("SESSION CREATE STYLE=%s ID=%s DESTINATION=%s %s\n",
		style, nickname, destination, opts.String())

	if _, err := conn.Send(request, "SESSION STATUS"); err != nil {
		conn.Close()
		return nil, err
	}
	conn.MarkBound()

	localDest, err := conn.NamingLookup(addr.ME)
	if err != nil {
		conn.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{"nickname": nickname, "style": style}).Debug("session created")

	return &Session{
		conn:       conn,
		nickname:   nickname,
		style:      style,
		localDest:  localDest,
		bridgeAddr: bridgeAddr,
	}, nil
}

// Transient creates a STREAM session with a generated nickname and a
// freshly generated, throwaway destination.
func Transient(bridgeAddr string) (*Session, error) {
	nickname, err := NewNickname()
	if err != nil {
		return nil, err
	}
	return Create(bridgeAddr, addr.TRANSIENT, nickname, StyleStream, samopts.New())
}

// Nickname returns the session's ID, used by stream/watcher to bind
// further commands on other sockets to this identity.
func (s *Session) Nickname() string { return s.nickname }

// Style returns the session's SESSION CREATE STYLE.
func (s *Session) Style() Style { return s.style }

// LocalDest returns the base-64 destination the bridge assigned to this
// session.
func (s *Session) LocalDest() string { return s.localDest }

// BridgeAddr returns the bridge address this session was created
// against, so callers can open further control connections to the same
// bridge.
func (s *Session) BridgeAddr() string { return s.bridgeAddr }

// Duplicate produces a logical alias sharing this session's nickname and
// local destination but holding an independently duplicated socket
// descriptor. It does not create a new session at the bridge; it exists
// so a Stream or Listener can carry the session's identity without ever
// reusing the session's own control socket to send a second command.
func (s *Session) Duplicate() (*Session, error) {
	dup, err := s.conn.Duplicate()
	if err != nil {
		return nil, err
	}
	return &Session{
		conn:       dup,
		nickname:   s.nickname,
		style:      s.style,
		localDest:  s.localDest,
		bridgeAddr: s.bridgeAddr,
	}, nil
}

// Shutdown forces any blocked read/write on the session's control socket
// to return, without releasing the underlying descriptor. Used by the
// watcher when tearing a session down for rebuild.
func (s *Session) Shutdown() error {
	return s.conn.Shutdown()
}

// Close closes the session's control socket, which tears the session
// down at the bridge. A Session must only ever be closed once, by its
// owner; duplicates returned by Duplicate close independently.
func (s *Session) Close() error {
	return s.conn.Close()
}
