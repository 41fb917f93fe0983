// Package samerr defines the typed error taxonomy shared across the SAM
// client: a single Kind enum plus a message string, in place of the
// original implementation's layered backtrace-carrying error object.
package samerr

import "fmt"

// Kind identifies the broad category of a SAM client failure.
type Kind int

const (
	// KindTransport covers TCP connect/read/write failures and EOF mid-line.
	KindTransport Kind = iota
	// KindParse covers a malformed SAM reply line.
	KindParse
	// KindUnresolvable covers a caller-supplied address that yielded no candidates.
	KindUnresolvable
	// KindBadEncoding covers a base-32/base-64 decode failure on a destination.
	KindBadEncoding
	// KindCantReachPeer mirrors RESULT=CANT_REACH_PEER.
	KindCantReachPeer
	// KindKeyNotFound mirrors RESULT=KEY_NOT_FOUND.
	KindKeyNotFound
	// KindPeerNotFound mirrors RESULT=PEER_NOT_FOUND.
	KindPeerNotFound
	// KindDuplicatedDest mirrors RESULT=DUPLICATED_DEST.
	KindDuplicatedDest
	// KindDuplicatedID mirrors RESULT=DUPLICATED_ID.
	KindDuplicatedID
	// KindInvalidKey mirrors RESULT=INVALID_KEY.
	KindInvalidKey
	// KindInvalidID mirrors RESULT=INVALID_ID.
	KindInvalidID
	// KindTimeout mirrors RESULT=TIMEOUT.
	KindTimeout
	// KindI2PError mirrors RESULT=I2P_ERROR.
	KindI2PError
	// KindNoVersion mirrors RESULT=NOVERSION.
	KindNoVersion
	// KindAlreadyAccepting mirrors RESULT=ALREADY_ACCEPTING.
	KindAlreadyAccepting
	// KindSessionRecreated is the watcher's soft "retry with fresh state" signal.
	KindSessionRecreated
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "message parsing"
	case KindUnresolvable:
		return "unresolvable address"
	case KindBadEncoding:
		return "bad address encoding"
	case KindCantReachPeer:
		return "can't reach peer"
	case KindKeyNotFound:
		return "destination key not found"
	case KindPeerNotFound:
		return "peer not found"
	case KindDuplicatedDest:
		return "duplicate destination"
	case KindDuplicatedID:
		return "duplicate session id"
	case KindInvalidKey:
		return "invalid destination key"
	case KindInvalidID:
		return "invalid session id"
	case KindTimeout:
		return "timeout"
	case KindI2PError:
		return "I2P router error"
	case KindNoVersion:
		return "no compatible SAM version"
	case KindAlreadyAccepting:
		return "already accepting"
	case KindSessionRecreated:
		return "session recreated, retry"
	default:
		return "unknown"
	}
}

// Error is the single error type used throughout the SAM client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
		}
		return e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a message.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap builds an Error of the given kind wrapping a lower-level cause.
func Wrap(k Kind, cause error) *Error {
	return &Error{Kind: k, Cause: cause}
}

// WrapMessage builds an Error of the given kind with both a message and a cause.
func WrapMessage(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

// Is reports whether err is a *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if se, ok := err.(*Error); ok {
			e = se
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == k
}

// resultKind maps a SAM RESULT= value (see spec §6) to its error Kind.
// OK is handled by the caller before this is consulted.
var resultKind = map[string]Kind{
	"CANT_REACH_PEER":   KindCantReachPeer,
	"KEY_NOT_FOUND":     KindKeyNotFound,
	"PEER_NOT_FOUND":    KindPeerNotFound,
	"DUPLICATED_DEST":   KindDuplicatedDest,
	"DUPLICATED_ID":     KindDuplicatedID,
	"INVALID_KEY":       KindInvalidKey,
	"INVALID_ID":        KindInvalidID,
	"TIMEOUT":           KindTimeout,
	"I2P_ERROR":         KindI2PError,
	"NOVERSION":         KindNoVersion,
	"ALREADY_ACCEPTING": KindAlreadyAccepting,
}

// FromResult classifies a bridge RESULT code (and optional MESSAGE) into a
// typed *Error. Callers only invoke this once RESULT has been confirmed
// non-OK; an unrecognised RESULT still yields a best-effort KindI2PError.
func FromResult(result, message string) *Error {
	kind, ok := resultKind[result]
	if !ok {
		kind = KindI2PError
	}
	if message == "" {
		message = result
	}
	return New(kind, message)
}
