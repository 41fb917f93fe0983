package session

import (
	"bufio"
	"net"
	"testing"

	"github.com/go-i2p/i2p-sam-client/samopts"
)

func mockBridge(t *testing.T, script func(r *bufio.Reader, w net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(bufio.NewReader(conn), conn)
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func TestCreateResolvesLocalDest(t *testing.T) {
	addr := mockBridge(t, func(r *bufio.Reader, w net.Conn) {
		r.ReadString('\n') // HELLO
		w.Write([]byte("HELLO REPLY RESULT=OK VERSION=3.1\n"))
		r.ReadString('\n') // SESSION CREATE
		w.Write([]byte("SESSION STATUS RESULT=OK DESTINATION=abc\n"))
		r.ReadString('\n') // NAMING LOOKUP NAME=ME
		w.Write([]byte("NAMING REPLY RESULT=OK NAME=ME VALUE=mydest\n"))
	})

	s, err := Create(addr, "TRANSIENT", "nick", StyleStream, samopts.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	if s.LocalDest() != "mydest" {
		t.Fatalf("LocalDest() = %q, want mydest", s.LocalDest())
	}
	if s.Nickname() != "nick" {
		t.Fatalf("Nickname() = %q, want nick", s.Nickname())
	}
}

func TestNewNicknameFormat(t *testing.T) {
	n, err := NewNickname()
	if err != nil {
		t.Fatalf("NewNickname: %v", err)
	}
	if len(n) != len("i2prs-") + 8 {
		t.Fatalf("nickname %q has unexpected length", n)
	}
	if n[:6] != "i2prs-" {
		t.Fatalf("nickname %q missing i2prs- prefix", n)
	}
}
