package daemonclient

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"
)

// fakeDaemon serves one greeting + module-list exchange over a net.Pipe,
// mirroring the bytes internal/rsyncd's Server would send.
func fakeDaemon(t *testing.T, server net.Conn, modules []Module) {
	t.Helper()
	rw := bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server))
	rw.WriteString("@RSYNCD: 30\n")
	rw.Flush()

	clientGreeting, err := rw.ReadString('\n')
	if err != nil {
		t.Errorf("reading client greeting: %v", err)
		return
	}
	if !strings.HasPrefix(clientGreeting, "@RSYNCD:") {
		t.Errorf("unexpected client greeting: %q", clientGreeting)
		return
	}

	req, err := rw.ReadString('\n')
	if err != nil {
		t.Errorf("reading request line: %v", err)
		return
	}
	req = strings.TrimRight(req, "\n")
	if req == "#list" {
		for _, m := range modules {
			rw.WriteString(m.Name + "\t" + m.Comment + "\n")
		}
		rw.WriteString("@RSYNCD: EXIT\n")
		rw.Flush()
		return
	}

	rw.WriteString("@RSYNCD: OK\n")
	rw.Flush()

	// Drain the client's argv + blank terminator so its final write doesn't
	// block on the pipe.
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		if strings.TrimRight(line, "\n") == "" {
			return
		}
	}
}

func TestSessionGreetAndList(t *testing.T) {
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		fakeDaemon(t, server, []Module{{Name: "public", Comment: "public module"}})
		close(done)
	}()

	s := &Session{conn: client, rw: bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client))}
	if err := s.greet(); err != nil {
		t.Fatal(err)
	}
	if s.ProtocolVersion() != 30 {
		t.Fatalf("ProtocolVersion() = %d, want 30", s.ProtocolVersion())
	}
	modules, err := s.ListModules()
	if err != nil {
		t.Fatal(err)
	}
	if len(modules) != 1 || modules[0].Name != "public" {
		t.Fatalf("modules = %+v", modules)
	}
	<-done
}

func TestSessionSelectModule(t *testing.T) {
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		fakeDaemon(t, server, nil)
		close(done)
	}()

	s := &Session{conn: client, rw: bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client))}
	if err := s.greet(); err != nil {
		t.Fatal(err)
	}

	resultCh := make(chan error, 1)
	go func() {
		_, _, err := s.SelectModule("public", nil)
		resultCh <- err
	}()
	select {
	case err := <-resultCh:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SelectModule")
	}
	<-done
}
