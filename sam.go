// Package sam provides a pure-Go client for the I2P SAM v3 bridge
// protocol: HELLO handshake, session creation, STREAM CONNECT/ACCEPT,
// NAMING LOOKUP, and DEST GENERATE, plus a supervisory watcher that
// rebuilds a session transparently after an accept error. It lets an
// ordinary application open anonymous bidirectional byte-streams across
// the I2P network addressed by destination rather than by IP.
//
// The root package is a thin façade: wire parsing lives in wireproto,
// destination/address handling in addr, the option tree in samopts, the
// control connection in samconn, session lifecycle in session, the data
// path in stream, and the accept-and-rebuild loop in watcher.
package sam

import (
	"github.com/go-i2p/i2p-sam-client/samconn"
	"github.com/go-i2p/i2p-sam-client/samopts"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// DefaultAddr is the bridge's conventional listen address.
const DefaultAddr = samconn.DefaultAddr

// GenerateDestination asks the bridge at bridgeAddr (DefaultAddr if
// empty) for a fresh destination key pair, independent of any session.
// It opens and closes its own control connection.
func GenerateDestination(bridgeAddr string, sigType samopts.SignatureType) (pub, priv string, err error) {
	conn, err := samconn.Connect(bridgeAddr)
	if err != nil {
		return "", "", err
	}
	defer conn.Close()
	return conn.GenerateDestination(sigType)
}
