// Package wireproto parses one line of the SAM v3 reply grammar into an
// ordered list of key/value pairs. It is purely synchronous and
// input-only: it never touches a socket.
//
// A reply line is a two-word tag (e.g. "HELLO REPLY", "SESSION STATUS")
// followed by space-separated KEY=VALUE pairs, terminated by exactly one
// '\n'. Values are either a bare token with no space/quote/newline, or a
// double-quoted string with no escape sequences. This is one reusable
// entry point for that grammar instead of a hand-rolled token walk
// re-implemented at every call site.
package wireproto

import (
	"fmt"
	"strings"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Pair is one KEY=VALUE entry from a reply line, in the order it appeared.
type Pair struct {
	Key   string
	Value string
}

// Pairs preserves reply-line order while supporting map-style lookup.
type Pairs []Pair

// Get returns the value for key and whether it was present. When a key
// repeats, the first occurrence wins, per spec.
func (p Pairs) Get(key string) (string, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return "", false
}

// Map collapses Pairs into a map[string]string, first-key-wins on
// duplicates, for callers that don't need the original order.
func (p Pairs) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, pair := range p {
		if _, exists := m[pair.Key]; !exists {
			m[pair.Key] = pair.Value
		}
	}
	return m
}

// ParseLine parses one SAM reply line (without the trailing '\n') and
// returns its two-word tag and ordered key/value pairs. It fails on any
// deviation from the grammar: missing tag, doubled spaces, unterminated
// quote, or trailing junk.
func ParseLine(line string) (tag string, pairs Pairs, err error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	s := scanner{input: line}

	word1, ok := s.word()
	if !ok {
		log.WithField("line", line).Debug("failed to parse SAM reply tag")
		return "", nil, fmt.Errorf("wireproto: missing reply tag in %q", line)
	}
	if !s.consumeSingleSpace() {
		return "", nil, fmt.Errorf("wireproto: missing second tag word in %q", line)
	}
	word2, ok := s.word()
	if !ok {
		return "", nil, fmt.Errorf("wireproto: missing second tag word in %q", line)
	}
	tag = word1 + " " + word2

	for {
		if s.atEnd() {
			break
		}
		if !s.consumeSingleSpace() {
			return "", nil, fmt.Errorf("wireproto: malformed whitespace in %q", line)
		}
		if s.atEnd() {
			// trailing space with nothing after it is junk.
			return "", nil, fmt.Errorf("wireproto: trailing whitespace in %q", line)
		}
		key, ok := s.key()
		if !ok {
			return "", nil, fmt.Errorf("wireproto: malformed key in %q", line)
		}
		if !s.consumeByte('=') {
			return "", nil, fmt.Errorf("wireproto: missing '=' after key %q in %q", key, line)
		}
		value, ok := s.value()
		if !ok {
			return "", nil, fmt.Errorf("wireproto: malformed value for key %q in %q", key, line)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	return tag, pairs, nil
}

// ExpectTag parses line and verifies its tag matches expected exactly.
func ExpectTag(line, expected string) (Pairs, error) {
	tag, pairs, err := ParseLine(line)
	if err != nil {
		return nil, err
	}
	if tag != expected {
		return nil, fmt.Errorf("wireproto: expected tag %q, got %q", expected, tag)
	}
	return pairs, nil
}

// scanner walks a single reply line byte by byte.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.input) }

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.input[s.pos]
}

func (s *scanner) consumeByte(b byte) bool {
	if s.atEnd() || s.input[s.pos] != b {
		return false
	}
	s.pos++
	return true
}

// consumeSingleSpace requires exactly one space; a doubled space is a
// grammar violation per spec §4.A.
func (s *scanner) consumeSingleSpace() bool {
	if !s.consumeByte(' ') {
		return false
	}
	if s.peek() == ' ' {
		return false
	}
	return true
}

// word reads a maximal run of non-space characters.
func (s *scanner) word() (string, bool) {
	start := s.pos
	for !s.atEnd() && s.input[s.pos] != ' ' {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.input[start:s.pos], true
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// key reads a maximal run of ASCII alphanumerics.
func (s *scanner) key() (string, bool) {
	start := s.pos
	for !s.atEnd() && isAlnum(s.input[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.input[start:s.pos], true
}

// value reads either a quoted string (no escapes, runs until the next
// quote) or a bare token with no space or quote.
func (s *scanner) value() (string, bool) {
	if s.consumeByte('"') {
		start := s.pos
		for !s.atEnd() && s.input[s.pos] != '"' {
			s.pos++
		}
		if s.atEnd() {
			return "", false // unterminated quote
		}
		value := s.input[start:s.pos]
		s.pos++ // closing quote
		return value, true
	}

	start := s.pos
	for !s.atEnd() && s.input[s.pos] != ' ' && s.input[s.pos] != '"' {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.input[start:s.pos], true
}
