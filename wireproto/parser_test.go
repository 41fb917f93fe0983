package wireproto

import "testing"

func TestParseLineHelloReply(t *testing.T) {
	tag, pairs, err := ParseLine("HELLO REPLY RESULT=OK VERSION=3.1\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != "HELLO REPLY" {
		t.Fatalf("tag = %q, want %q", tag, "HELLO REPLY")
	}
	result, ok := pairs.Get("RESULT")
	if !ok || result != "OK" {
		t.Fatalf("RESULT = %q, %v", result, ok)
	}
	version, ok := pairs.Get("VERSION")
	if !ok || version != "3.1" {
		t.Fatalf("VERSION = %q, %v", version, ok)
	}
}

func TestParseLineQuotedValue(t *testing.T) {
	tag, pairs, err := ParseLine(`SESSION STATUS RESULT=OK MESSAGE="duplicate destination"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != "SESSION STATUS" {
		t.Fatalf("tag = %q", tag)
	}
	msg, ok := pairs.Get("MESSAGE")
	if !ok || msg != "duplicate destination" {
		t.Fatalf("MESSAGE = %q, %v", msg, ok)
	}
}

func TestParseLinePreservesOrder(t *testing.T) {
	_, pairs, err := ParseLine("NAMING REPLY RESULT=OK NAME=foo VALUE=bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("len(pairs) = %d, want 3", len(pairs))
	}
	if pairs[0].Key != "RESULT" || pairs[1].Key != "NAME" || pairs[2].Key != "VALUE" {
		t.Fatalf("unexpected order: %+v", pairs)
	}
}

func TestParseLineFirstKeyWins(t *testing.T) {
	_, pairs, err := ParseLine("STREAM STATUS RESULT=OK RESULT=DUPLICATE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := pairs.Get("RESULT")
	if !ok || v != "OK" {
		t.Fatalf("Get(RESULT) = %q, %v, want OK", v, ok)
	}
	m := pairs.Map()
	if m["RESULT"] != "OK" {
		t.Fatalf("Map()[RESULT] = %q, want OK", m["RESULT"])
	}
}

func TestParseLineRejectsDoubledSpace(t *testing.T) {
	_, _, err := ParseLine("HELLO REPLY RESULT=OK  VERSION=3.1")
	if err == nil {
		t.Fatal("expected error for doubled space")
	}
}

func TestParseLineMissingSpaceBetweenPairsIsOneValue(t *testing.T) {
	_, pairs, err := ParseLine("HELLO REPLY RESULT=OKVERSION=3.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Without a space the bare value runs on and absorbs the next pair,
	// which is still a valid bare token. samconn.Send then sees a
	// RESULT other than OK and reports it as an error.
	if v, _ := pairs.Get("RESULT"); v != "OKVERSION=3.1" {
		t.Fatalf("Get(RESULT) = %q, want OKVERSION=3.1", v)
	}
}

func TestParseLineRejectsUnterminatedQuote(t *testing.T) {
	_, _, err := ParseLine(`SESSION STATUS RESULT=OK MESSAGE="unterminated`)
	if err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestParseLineRejectsMissingTag(t *testing.T) {
	_, _, err := ParseLine("")
	if err == nil {
		t.Fatal("expected error for empty line")
	}
}

func TestParseLineRejectsMissingEquals(t *testing.T) {
	_, _, err := ParseLine("HELLO REPLY RESULT")
	if err == nil {
		t.Fatal("expected error for key without '='")
	}
}

func TestParseLineNoPairs(t *testing.T) {
	tag, pairs, err := ParseLine("PING PONG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != "PING PONG" {
		t.Fatalf("tag = %q", tag)
	}
	if len(pairs) != 0 {
		t.Fatalf("len(pairs) = %d, want 0", len(pairs))
	}
}

func TestExpectTagMismatch(t *testing.T) {
	_, err := ExpectTag("HELLO REPLY RESULT=OK", "SESSION STATUS")
	if err == nil {
		t.Fatal("expected tag mismatch error")
	}
}
