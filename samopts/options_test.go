package samopts

import (
	"sort"
	"strings"
	"testing"
)

func boolPtr(b bool) *bool     { return &b }
func uint8Ptr(v uint8) *uint8  { return &v }
func uint16Ptr(v uint16) *uint16 { return &v }

func TestDefaultOptionsRenderMinimal(t *testing.T) {
	o := New()
	s := o.String()
	if !containsToken(s, "i2cp.leaseSetEncType=4,0") {
		t.Fatalf("expected default lease set enc type in %q", s)
	}
	if !containsToken(s, "SIGNATURE_TYPE=EdDSA_SHA512_Ed25519") {
		t.Fatalf("expected default signature type in %q", s)
	}
}

func TestSignatureTypeStrings(t *testing.T) {
	cases := map[SignatureType]string{
		SigDSASHA1:              "DSA_SHA1",
		SigECDSASHA256P256:      "ECDSA_SHA256_P256",
		SigEdDSASHA512Ed25519:   "EdDSA_SHA512_Ed25519",
		SigEdDSASHA512Ed25519ph: "EdDSA_SHA512_Ed25519ph",
		SigRedDSASHA512Ed25519:  "RedDSA_SHA512_Ed25519",
	}
	for sig, want := range cases {
		if got := sig.String(); got != want {
			t.Errorf("SignatureType(%d).String() = %q, want %q", sig, got, want)
		}
	}
}

func TestOptionsStringSortedAndDeduped(t *testing.T) {
	o := New()
	o.I2CP.Router.LeaseSetEncType = "4,0"
	o.I2CP.Client.LeaseSetEncType = "4,0"
	o.I2CP.Router.FastReceive = boolPtr(true)
	o.I2CP.Client.FastReceive = boolPtr(true)

	s := o.String()
	count := 0
	for i := 0; i+len("i2cp.fastReceive=true") <= len(s); i++ {
		if s[i:i+len("i2cp.fastReceive=true")] == "i2cp.fastReceive=true" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected i2cp.fastReceive to appear once after dedup, got %d in %q", count, s)
	}
	if !sort.StringsAreSorted(strings.Fields(s)) {
		t.Fatalf("expected tokens in sorted order, got %q", s)
	}
}

func TestTunnelInboundRendersExpectedKeys(t *testing.T) {
	o := New()
	o.I2CP.Router.Inbound = &TunnelInbound{
		Length:   uint8Ptr(3),
		Quantity: uint8Ptr(2),
	}
	s := o.String()
	if !containsToken(s, "inbound.length=3") || !containsToken(s, "inbound.quantity=2") {
		t.Fatalf("missing inbound keys in %q", s)
	}
}

func TestParseLeaseSetEncTypeValidAndInvalid(t *testing.T) {
	if err := ParseLeaseSetEncType("4,0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ParseLeaseSetEncType("4,x"); err == nil {
		t.Fatal("expected error for non-numeric encryption type")
	}
}

func TestMessageReliabilityString(t *testing.T) {
	if ReliabilityNone.String() != "None" {
		t.Fatalf("ReliabilityNone.String() = %q", ReliabilityNone.String())
	}
	if ReliabilityBestEffort.String() != "BestEffort" {
		t.Fatalf("ReliabilityBestEffort.String() = %q", ReliabilityBestEffort.String())
	}
}

func containsToken(s, token string) bool {
	for i := 0; i+len(token) <= len(s); i++ {
		if s[i:i+len(token)] == token {
			return true
		}
	}
	return false
}
