// Package addr models I2P destination addresses and the socket addresses
// built from them. A destination may be carried in three forms: a
// friendly hostname ending in ".i2p", a base-32 hash of the destination
// ending in ".b32.i2p", or the full base-64 destination blob.
package addr

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/go-i2p/i2p-sam-client/samerr"
)

// b32Ext is the suffix appended to a base-32 destination hash.
const b32Ext = ".b32.i2p"

// i2pBase64 is I2P's custom base-64 alphabet: the standard alphabet with
// '+' and '/' replaced by '-' and '~'.
var i2pBase64 = base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-~").WithPadding('=')

// TRANSIENT requests an ephemeral, throwaway destination from the bridge
// rather than reusing a persisted one.
const TRANSIENT = "TRANSIENT"

// ME is the sentinel NAMING LOOKUP name that resolves to a session's own
// destination.
const ME = "ME"

// Destination is an I2P destination, stored verbatim in whichever
// printable form it was given: normally the base-64 blob, but hostnames
// and ".b32.i2p" names (as split out by HostPort) are carried unchanged.
// The zero value is not a valid destination.
type Destination string

// NewDestination wraps a raw base-64 destination string without
// validating it; validation happens lazily on first decode.
func NewDestination(b64 string) Destination {
	return Destination(b64)
}

// String returns the stored form.
func (d Destination) String() string {
	return string(d)
}

// Base32 derives the ".b32.i2p" hostname for this destination: the
// SHA-256 digest of the decoded destination bytes, encoded with I2P's
// unpadded lowercase base-32 alphabet.
func (d Destination) Base32() (string, error) {
	raw, err := i2pBase64.DecodeString(string(d))
	if err != nil {
		return "", samerr.WrapMessage(samerr.KindBadEncoding, "decode base64 destination", err)
	}
	sum := sha256.Sum256(raw)
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(enc.EncodeToString(sum[:])) + b32Ext, nil
}

// IsEmpty reports whether d carries no destination data.
func (d Destination) IsEmpty() bool {
	return d == ""
}

// SocketAddress pairs an I2P destination with a virtual port, mirroring
// the FROM_PORT/TO_PORT fields SAM v3.1+ attaches to a stream.
type SocketAddress struct {
	Dest Destination
	Port uint16
}

// NewSocketAddress builds a SocketAddress from a destination and port.
func NewSocketAddress(dest Destination, port uint16) SocketAddress {
	return SocketAddress{Dest: dest, Port: port}
}

// Network returns "i2p", satisfying the shape of net.Addr.
func (s SocketAddress) Network() string { return "i2p" }

// String renders "<base32-host>:<port>" when the port is non-zero, and
// just the base32 host otherwise. Falls back to the stored destination
// string if it cannot be decoded as base-64 and reduced to base-32.
func (s SocketAddress) String() string {
	host := string(s.Dest)
	if b32, err := s.Dest.Base32(); err == nil {
		host = b32
	}
	if s.Port == 0 {
		return host
	}
	return host + ":" + strconv.Itoa(int(s.Port))
}

// Resolver resolves a name to zero or more SocketAddress candidates,
// giving dynamic dispatch over host:port strings, bare destinations,
// and pre-built addresses.
type Resolver interface {
	ToSocketAddrs() ([]SocketAddress, error)
}

// socketAddrs is a Resolver over an already-resolved slice.
type socketAddrs []SocketAddress

func (s socketAddrs) ToSocketAddrs() ([]SocketAddress, error) { return []SocketAddress(s), nil }

// FixedAddr wraps a single resolved SocketAddress as a Resolver.
func FixedAddr(addr SocketAddress) Resolver {
	return socketAddrs{addr}
}

// hostPort is a Resolver over a "host:port" string, where host may be a
// friendly name, a .b32.i2p hash, or a raw base-64 destination. Lookup of
// friendly names against the bridge happens above this package; hostPort
// only splits and parses, it does not perform NAMING LOOKUP itself.
type hostPort string

func (h hostPort) ToSocketAddrs() ([]SocketAddress, error) {
	s := string(h)
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return nil, samerr.New(samerr.KindUnresolvable, "missing port in \""+s+"\"")
	}
	host, portStr := s[:idx], s[idx+1:]
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, samerr.WrapMessage(samerr.KindUnresolvable, "invalid port in \""+s+"\"", err)
	}
	return []SocketAddress{{Dest: Destination(host), Port: uint16(port)}}, nil
}

// HostPort builds a Resolver from a "host:port" string.
func HostPort(s string) Resolver {
	return hostPort(s)
}

// ResolveSocketAddrs resolves any supported address form: a Resolver, a
// plain "host:port" string, or a bare Destination (port 0).
func ResolveSocketAddrs(v any) ([]SocketAddress, error) {
	switch t := v.(type) {
	case Resolver:
		return t.ToSocketAddrs()
	case string:
		return hostPort(t).ToSocketAddrs()
	case Destination:
		return []SocketAddress{{Dest: t}}, nil
	case SocketAddress:
		return []SocketAddress{t}, nil
	default:
		return nil, samerr.New(samerr.KindUnresolvable, "unsupported address type")
	}
}

// IsI2PHostname reports whether name looks like a friendly ".i2p" name
// that needs a NAMING LOOKUP round trip rather than direct use.
func IsI2PHostname(name string) bool {
	return strings.HasSuffix(name, ".i2p") && !strings.HasSuffix(name, b32Ext)
}
