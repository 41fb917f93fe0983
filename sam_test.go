package sam

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// mockBridge serves scripts in order, one per accepted TCP connection.
func mockBridge(t *testing.T, scripts ...func(r *bufio.Reader, w net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for _, script := range scripts {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn, s func(r *bufio.Reader, w net.Conn)) {
				defer c.Close()
				s(bufio.NewReader(c), c)
			}(conn, script)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func helloOK(r *bufio.Reader, w net.Conn) {
	r.ReadString('\n')
	w.Write([]byte("HELLO REPLY RESULT=OK VERSION=3.1\n"))
}

func TestGenerateDestinationTopLevel(t *testing.T) {
	addr := mockBridge(t, func(r *bufio.Reader, w net.Conn) {
		helloOK(r, w)
		r.ReadString('\n')
		w.Write([]byte("DEST REPLY PUB=mypub PRIV=mypriv\n"))
	})

	pub, priv, err := GenerateDestination(addr, 0)
	if err != nil {
		t.Fatalf("GenerateDestination: %v", err)
	}
	if pub != "mypub" || priv != "mypriv" {
		t.Fatalf("got pub=%q priv=%q", pub, priv)
	}
}

func TestListenStreamAcceptRemembersPeer(t *testing.T) {
	listenerAddr := mockBridge(t,
		func(r *bufio.Reader, w net.Conn) { // session create for listener
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("SESSION STATUS RESULT=OK DESTINATION=serverpriv\n"))
			r.ReadString('\n')
			w.Write([]byte("NAMING REPLY RESULT=OK NAME=ME VALUE=serverdest\n"))
		},
		func(r *bufio.Reader, w net.Conn) { // accept
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("STREAM STATUS RESULT=OK\n"))
			w.Write([]byte("clientdest FROM_PORT=0 TO_PORT=0\n"))
		},
	)

	l, err := ListenStream(listenerAddr, "TRANSIENT", nil)
	if err != nil {
		t.Fatalf("ListenStream: %v", err)
	}
	defer l.Close()

	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer conn.Close()

	if conn.RemoteAddr().Dest != "clientdest" {
		t.Fatalf("RemoteAddr = %v", conn.RemoteAddr())
	}
	if !l.SeenPeer("clientdest") {
		t.Fatal("expected SeenPeer(\"clientdest\") to be true")
	}
}

func TestDialStreamFailureClosesSession(t *testing.T) {
	sessionClosed := make(chan struct{})
	dialAddr := mockBridge(t,
		func(r *bufio.Reader, w net.Conn) { // transient session create
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("SESSION STATUS RESULT=OK DESTINATION=clientpriv\n"))
			r.ReadString('\n')
			w.Write([]byte("NAMING REPLY RESULT=OK NAME=ME VALUE=clientdest\n"))
			// The session socket stays silent until the client closes it.
			if _, err := r.ReadString('\n'); err != nil {
				close(sessionClosed)
			}
		},
		func(r *bufio.Reader, w net.Conn) { // lookup + connect, connect fails
			helloOK(r, w)
			r.ReadString('\n')
			w.Write([]byte("NAMING REPLY RESULT=OK NAME=peer.i2p VALUE=peerdest\n"))
			r.ReadString('\n')
			w.Write([]byte("STREAM STATUS RESULT=CANT_REACH_PEER MESSAGE=\"no route\"\n"))
		},
	)

	_, err := DialStream(dialAddr, "peer.i2p", 0)
	if err == nil {
		t.Fatal("expected DialStream to fail")
	}
	select {
	case <-sessionClosed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected DialStream to close its session socket after the failed connect")
	}
}
