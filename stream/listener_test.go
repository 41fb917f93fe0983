package stream

import (
	"bufio"
	"net"
	"testing"

	"github.com/go-i2p/i2p-sam-client/samerr"
)

func TestListenerAcceptDerivesB32Address(t *testing.T) {
	addr := mockBridge(t,
		func(r *bufio.Reader, w net.Conn) {
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("SESSION STATUS RESULT=OK DESTINATION=abc\n"))
			r.ReadString('\n')
			w.Write([]byte("NAMING REPLY RESULT=OK NAME=ME VALUE=mydest\n"))
		},
		func(r *bufio.Reader, w net.Conn) {
			helloOK(r, w)
			r.ReadString('\n') // STREAM ACCEPT
			w.Write([]byte("STREAM STATUS RESULT=OK\n"))
			w.Write([]byte("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA FROM_PORT=1 TO_PORT=2\n"))
		},
	)

	sess := newTestSession(t, addr)
	defer sess.Close()

	l := NewListener(sess)
	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer conn.Close()

	b32, err := conn.RemoteAddr().Dest.Base32()
	if err != nil {
		t.Fatalf("Base32: %v", err)
	}
	want := b32 + ":1"
	if conn.RemoteAddr().String() != want {
		t.Fatalf("RemoteAddr().String() = %q, want %q", conn.RemoteAddr().String(), want)
	}
	if conn.RemoteAddr().Port != 1 {
		t.Fatalf("RemoteAddr().Port = %d, want 1 (parsed from FROM_PORT)", conn.RemoteAddr().Port)
	}
	if conn.LocalAddr().Port != 2 {
		t.Fatalf("LocalAddr().Port = %d, want 2 (parsed from TO_PORT)", conn.LocalAddr().Port)
	}
}

func TestListenerAcceptMissingDestinationIsKeyNotFound(t *testing.T) {
	addr := mockBridge(t,
		func(r *bufio.Reader, w net.Conn) {
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("SESSION STATUS RESULT=OK DESTINATION=abc\n"))
			r.ReadString('\n')
			w.Write([]byte("NAMING REPLY RESULT=OK NAME=ME VALUE=mydest\n"))
		},
		func(r *bufio.Reader, w net.Conn) {
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("STREAM STATUS RESULT=OK\n"))
			w.Write([]byte("\n"))
		},
	)

	sess := newTestSession(t, addr)
	defer sess.Close()

	l := NewListener(sess)
	_, err := l.Accept()
	if !samerr.Is(err, samerr.KindKeyNotFound) {
		t.Fatalf("err = %v, want KindKeyNotFound", err)
	}
}
