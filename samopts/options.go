// Package samopts models the SESSION CREATE option tree: the top-level
// FROM_PORT/TO_PORT/SIGNATURE_TYPE fields SAM itself understands, plus
// the much larger I2CP option namespace (i2cp.*, crypto.*, inbound.*,
// outbound.*) that SAM passes through to the router untouched, mirroring
// the I2CP option layout field for field and wire-key for wire-key.
package samopts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SignatureType selects the destination signature algorithm for DEST
// GENERATE and SESSION CREATE.
type SignatureType int

const (
	SigDSASHA1 SignatureType = iota
	SigECDSASHA256P256
	SigECDSASHA384P384
	SigECDSASHA512P521
	SigRSASHA256_2048
	SigRSASHA384_3072
	SigRSASHA512_4096
	SigEdDSASHA512Ed25519
	SigEdDSASHA512Ed25519ph
	SigRedDSASHA512Ed25519
)

// DefaultSignatureType is the default used when a session does not pick
// one explicitly.
const DefaultSignatureType = SigEdDSASHA512Ed25519

func (s SignatureType) String() string {
	switch s {
	case SigDSASHA1:
		return "DSA_SHA1"
	case SigECDSASHA256P256:
		return "ECDSA_SHA256_P256"
	case SigECDSASHA384P384:
		return "ECDSA_SHA384_P384"
	case SigECDSASHA512P521:
		return "ECDSA_SHA512_P521"
	case SigRSASHA256_2048:
		return "RSA_SHA256_2048"
	case SigRSASHA384_3072:
		return "RSA_SHA384_3072"
	case SigRSASHA512_4096:
		return "RSA_SHA512_4096"
	case SigEdDSASHA512Ed25519:
		return "EdDSA_SHA512_Ed25519"
	case SigEdDSASHA512Ed25519ph:
		return "EdDSA_SHA512_Ed25519ph"
	case SigRedDSASHA512Ed25519:
		return "RedDSA_SHA512_Ed25519"
	default:
		return "EdDSA_SHA512_Ed25519"
	}
}

// LeaseSetAuthType is the per-client authentication mode for encrypted LS2.
type LeaseSetAuthType int

const (
	AuthNoPerClient LeaseSetAuthType = iota
	AuthDHPerClient
	AuthPSKPerClient
)

func (a LeaseSetAuthType) String() string {
	switch a {
	case AuthDHPerClient:
		return "1"
	case AuthPSKPerClient:
		return "2"
	default:
		return "0"
	}
}

// MessageReliability selects the streaming-lib delivery guarantee.
type MessageReliability int

const (
	ReliabilityNone MessageReliability = iota
	ReliabilityBestEffort
)

func (m MessageReliability) String() string {
	if m == ReliabilityBestEffort {
		return "BestEffort"
	}
	return "None"
}

// DefaultLeaseSetEncType is applied when no encryption type is requested:
// "4" (ECIES-X25519) with "0" (ElGamal) kept for backward compatibility.
const DefaultLeaseSetEncType = "4,0"

// RouterCrypto covers the ElGamal/AES and ECIES-ratchet session-tag knobs
// under crypto.*.
type RouterCrypto struct {
	LowTagThreshold   *uint8
	RatchetInbound    *uint64
	RatchetOutbound   *uint64
	TagsToSend        *uint8
}

func (c *RouterCrypto) render(w *strings.Builder) {
	if c == nil {
		return
	}
	writeUint8(w, "crypto.lowTagThreshold", c.LowTagThreshold)
	writeUint64(w, "crypto.ratchet.inboundTags", c.RatchetInbound)
	writeUint64(w, "crypto.ratchet.outboundTags", c.RatchetOutbound)
	writeUint8(w, "crypto.tagsToSend", c.TagsToSend)
}

// RouterOptions covers i2cp.* fields the router itself interprets,
// distinct from the ones the client library applies locally.
type RouterOptions struct {
	ClientMessageTimeout  *uint32
	Crypto                *RouterCrypto
	DontPublishLeaseSet   *bool
	FastReceive           *bool
	LeaseSetAuthType      *LeaseSetAuthType
	LeaseSetEncType       string
	LeaseSetOfflineExpiry *uint32
	LeaseSetPrivKey       string
	LeaseSetSecret        string
	LeaseSetTransientKey  string
	LeaseSetType          *uint8
	MessageReliability    *MessageReliability
	Username              string
	Password              string
	Inbound               *TunnelInbound
	Outbound              *TunnelOutbound
	ShouldBundleReplyInfo *bool
}

func (r *RouterOptions) render(w *strings.Builder) {
	if r == nil {
		return
	}
	writeUint32(w, "clientMessageTimeout", r.ClientMessageTimeout)
	r.Crypto.render(w)
	writeBool(w, "i2cp.dontPublishLeaseSet", r.DontPublishLeaseSet)
	writeBool(w, "i2cp.fastReceive", r.FastReceive)
	if r.LeaseSetAuthType != nil {
		fmt.Fprintf(w, "i2cp.leaseSetAuthType=%s ", r.LeaseSetAuthType)
	}
	writeString(w, "i2cp.leaseSetEncType", r.LeaseSetEncType)
	writeUint32(w, "i2cp.leaseSetOfflineExpiration", r.LeaseSetOfflineExpiry)
	writeString(w, "i2cp.leaseSetPrivKey", r.LeaseSetPrivKey)
	writeString(w, "i2cp.leaseSetSecret", r.LeaseSetSecret)
	writeString(w, "i2cp.leaseSetTransientPublicKey", r.LeaseSetTransientKey)
	writeUint8(w, "i2cp.leaseSetType", r.LeaseSetType)
	if r.MessageReliability != nil {
		fmt.Fprintf(w, "i2cp.messageReliability=%s ", r.MessageReliability)
	}
	writeString(w, "i2cp.password", r.Password)
	writeString(w, "i2cp.username", r.Username)
	r.Inbound.render(w)
	r.Outbound.render(w)
	writeBool(w, "shouldBundleReplyInfo", r.ShouldBundleReplyInfo)
}

// ClientOptions covers i2cp.* fields the client library applies locally
// before the router ever sees the connection.
type ClientOptions struct {
	CloseIdleTime       *uint64
	CloseOnIdle         *bool
	EncryptLeaseSet     *bool
	FastReceive         *bool
	Gzip                *bool
	LeaseSetAuthType    *LeaseSetAuthType
	LeaseSetBlindedType *uint16
	LeaseSetEncType     string
	LeaseSetKey         string
	LeaseSetPrivateKey  string
	LeaseSetSecret      string
	LeaseSetSigningKey  string
	MessageReliability  *MessageReliability
	ReduceIdleTime      *uint64
	ReduceOnIdle        *bool
	ReduceQuantity      *uint8
	SSL                 *bool
	TCPHost             string
	TCPPort             *uint8
}

func (c *ClientOptions) render(w *strings.Builder) {
	if c == nil {
		return
	}
	writeUint64(w, "i2cp.closeIdleTime", c.CloseIdleTime)
	writeBool(w, "i2cp.closeOnIdle", c.CloseOnIdle)
	writeBool(w, "i2cp.encryptLeaseSet", c.EncryptLeaseSet)
	writeBool(w, "i2cp.fastReceive", c.FastReceive)
	writeBool(w, "i2cp.gzip", c.Gzip)
	if c.LeaseSetAuthType != nil {
		fmt.Fprintf(w, "i2cp.leaseSetAuthType=%s ", c.LeaseSetAuthType)
	}
	writeUint16(w, "i2cp.leaseSetBlindedType", c.LeaseSetBlindedType)
	writeString(w, "i2cp.leaseSetEncType", c.LeaseSetEncType)
	writeString(w, "i2cp.leaseSetKey", c.LeaseSetKey)
	writeString(w, "i2cp.leaseSetPrivateKey", c.LeaseSetPrivateKey)
	writeString(w, "i2cp.leaseSetSecret", c.LeaseSetSecret)
	writeString(w, "i2cp.leaseSetSigningPrivateKey", c.LeaseSetSigningKey)
	if c.MessageReliability != nil {
		fmt.Fprintf(w, "i2cp.messageReliability=%s ", c.MessageReliability)
	}
	writeUint64(w, "i2cp.reduceIdleTime", c.ReduceIdleTime)
	writeBool(w, "i2cp.reduceOnIdle", c.ReduceOnIdle)
	writeBool(w, "i2cp.ssl", c.SSL)
	writeString(w, "i2cp.tcp.host", c.TCPHost)
	writeUint8(w, "i2cp.tcp.port", c.TCPPort)
}

// TunnelInbound covers inbound.* tunnel-pool parameters.
type TunnelInbound struct {
	AllowZeroHop   *bool
	BackupQuantity *uint8
	IPRestriction  *uint8
	Length         *uint8
	LengthVariance *int8
	Quantity       *uint8
	RandomKey      string
}

func (t *TunnelInbound) render(w *strings.Builder) {
	if t == nil {
		return
	}
	writeBool(w, "inbound.allowZeroHop", t.AllowZeroHop)
	writeUint8(w, "inbound.backupQuantity", t.BackupQuantity)
	writeUint8(w, "inbound.IPRestriction", t.IPRestriction)
	writeUint8(w, "inbound.length", t.Length)
	writeInt8(w, "inbound.lengthVariance", t.LengthVariance)
	writeUint8(w, "inbound.quantity", t.Quantity)
	writeString(w, "inbound.randomKey", t.RandomKey)
}

// TunnelOutbound covers outbound.* tunnel-pool parameters.
type TunnelOutbound struct {
	AllowZeroHop   *bool
	BackupQuantity *uint8
	IPRestriction  *uint8
	Length         *uint8
	LengthVariance *int8
	Priority       *int8
	Quantity       *uint8
	RandomKey      string
}

func (t *TunnelOutbound) render(w *strings.Builder) {
	if t == nil {
		return
	}
	writeBool(w, "outbound.allowZeroHop", t.AllowZeroHop)
	writeUint8(w, "outbound.backupQuantity", t.BackupQuantity)
	writeUint8(w, "outbound.IPRestriction", t.IPRestriction)
	writeUint8(w, "outbound.length", t.Length)
	writeInt8(w, "outbound.lengthVariance", t.LengthVariance)
	writeInt8(w, "outbound.priority", t.Priority)
	writeUint8(w, "outbound.quantity", t.Quantity)
	writeString(w, "outbound.randomKey", t.RandomKey)
}

// I2CPOptions splits router-side and client-side option sets, mirroring
// how SAM forwards them to two different consumers.
type I2CPOptions struct {
	Router *RouterOptions
	Client *ClientOptions
}

func (i *I2CPOptions) render(w *strings.Builder) {
	if i == nil {
		return
	}
	i.Router.render(w)
	i.Client.render(w)
}

// Options is the full SESSION CREATE option set: FROM_PORT/TO_PORT,
// SIGNATURE_TYPE, and the nested I2CP tree.
type Options struct {
	FromPort      *uint16
	ToPort        *uint16
	SignatureType SignatureType
	I2CP          *I2CPOptions
}

// New returns an Options value carrying only minimal defaults: the
// signature type and lease-set encryption type are set, leaving
// everything else to the router's own defaults, since over-specifying
// values empirically broke destination leaseset connectivity during
// interop testing.
func New() *Options {
	return &Options{
		SignatureType: DefaultSignatureType,
		I2CP: &I2CPOptions{
			Router: &RouterOptions{LeaseSetEncType: DefaultLeaseSetEncType},
			Client: &ClientOptions{LeaseSetEncType: DefaultLeaseSetEncType},
		},
	}
}

// String renders the option set as the space-separated KEY=VALUE tokens
// SESSION CREATE expects, sorted and deduplicated so a field set on both
// the router and client option trees only appears once.
func (o *Options) String() string {
	if o == nil {
		return ""
	}
	var w strings.Builder
	if o.FromPort != nil {
		fmt.Fprintf(&w, "FROM_PORT=%d ", *o.FromPort)
	}
	if o.ToPort != nil {
		fmt.Fprintf(&w, "TO_PORT=%d ", *o.ToPort)
	}
	fmt.Fprintf(&w, "SIGNATURE_TYPE=%s ", o.SignatureType)
	o.I2CP.render(&w)

	rendered := strings.TrimSpace(w.String())
	if rendered == "" {
		return ""
	}
	parts := strings.Split(rendered, " ")
	sort.Strings(parts)
	parts = dedup(parts)
	return strings.Join(parts, " ") + " "
}

func dedup(sorted []string) []string {
	out := sorted[:0:0]
	var prev string
	for i, s := range sorted {
		if i == 0 || s != prev {
			out = append(out, s)
		}
		prev = s
	}
	return out
}

func writeString(w *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s=%s ", key, value)
}

func writeBool(w *strings.Builder, key string, value *bool) {
	if value == nil {
		return
	}
	fmt.Fprintf(w, "%s=%t ", key, *value)
}

func writeUint8(w *strings.Builder, key string, value *uint8) {
	if value == nil {
		return
	}
	fmt.Fprintf(w, "%s=%d ", key, *value)
}

func writeUint16(w *strings.Builder, key string, value *uint16) {
	if value == nil {
		return
	}
	fmt.Fprintf(w, "%s=%d ", key, *value)
}

func writeUint32(w *strings.Builder, key string, value *uint32) {
	if value == nil {
		return
	}
	fmt.Fprintf(w, "%s=%d ", key, *value)
}

func writeUint64(w *strings.Builder, key string, value *uint64) {
	if value == nil {
		return
	}
	fmt.Fprintf(w, "%s=%d ", key, *value)
}

func writeInt8(w *strings.Builder, key string, value *int8) {
	if value == nil {
		return
	}
	fmt.Fprintf(w, "%s=%d ", key, *value)
}

// ParseLeaseSetEncType validates a comma-separated list of encryption
// type integers, the form i2cp.leaseSetEncType/i2cp.leaseSetPrivateKey
// accept since 0.9.39 for multi-type LS2 support.
func ParseLeaseSetEncType(s string) error {
	for _, part := range strings.Split(s, ",") {
		if _, err := strconv.Atoi(strings.TrimSpace(part)); err != nil {
			return fmt.Errorf("samopts: invalid lease set encryption type %q: %w", s, err)
		}
	}
	return nil
}
