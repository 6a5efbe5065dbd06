// Package daemonclient speaks the client side of the legacy "@RSYNCD:"
// daemon greeting over a TCP connection: version exchange, MOTD lines,
// module listing, and module selection; no authentication challenge is
// handled. Grounded on internal/prologue's greeting grammar (shared with
// the daemon side) and the module-list line format internal/rsyncd's
// formatModuleList emits ("name\tcomment\n" per module), generalized from
// "format for a listener" to "parse as a dialer"; the listing read here
// ends at the "@RSYNCD: EXIT" line.
package daemonclient

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/oferchen/rsync-sub001/internal/prologue"
)

// ClientProtocolVersion is the major version this client offers in its
// greeting line.
const ClientProtocolVersion = 27

// Module describes one entry of a daemon's module list, as parsed from the
// "name\tcomment\n" lines following a listing request.
type Module struct {
	Name    string
	Comment string
}

// Session is an established, greeted, but not-yet-module-selected
// connection to a daemon.
type Session struct {
	conn    net.Conn
	rw      *bufio.ReadWriter
	greeted *prologue.DaemonGreeting
	motd    []string
}

// Dial connects to host:port (defaulting to port 873) and performs the
// greeting exchange, returning a Session ready to list or select a module.
func Dial(host string, port int, timeout time.Duration) (*Session, error) {
	if port == 0 {
		port = 873
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing rsync daemon %s: %w", addr, err)
	}
	s := &Session{
		conn: conn,
		rw:   bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
	}
	if err := s.greet(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) greet() error {
	sniffer := prologue.New()
	decision, err := sniffer.ReadFrom(s.conn)
	if err != nil {
		return fmt.Errorf("reading daemon greeting: %w", err)
	}
	if decision != prologue.LegacyAscii {
		return fmt.Errorf("daemon did not send a legacy @RSYNCD: greeting")
	}
	for !sniffer.LegacyMarkerConfirmed() {
		if _, err := sniffer.ReadFrom(s.conn); err != nil {
			return fmt.Errorf("reading daemon greeting: %w", err)
		}
	}
	greeting, err := prologue.ReadAndParseLegacyDaemonGreeting(sniffer, s.conn)
	if err != nil {
		return err
	}
	s.greeted = greeting

	reply := prologue.FormatLegacyDaemonGreeting(&prologue.DaemonGreeting{
		Major: ClientProtocolVersion,
	})
	if _, err := s.rw.WriteString(reply); err != nil {
		return fmt.Errorf("sending client greeting: %w", err)
	}
	return s.rw.Flush()
}

// ProtocolVersion returns the daemon's advertised major protocol version.
func (s *Session) ProtocolVersion() int {
	if s.greeted == nil {
		return 0
	}
	return s.greeted.Major
}

// ListModules requests and parses the daemon's module list (an operand of
// the empty-module-name form), draining any MOTD lines first: lines of the
// form "@RSYNCD: MOTD text" are kept for MOTD(), an "@RSYNCD: OK" line is
// skipped, and every other non-blank line before "@RSYNCD: EXIT" is a
// module.
func (s *Session) ListModules() ([]Module, error) {
	if _, err := s.rw.WriteString("#list\n"); err != nil {
		return nil, err
	}
	if err := s.rw.Flush(); err != nil {
		return nil, err
	}
	var modules []Module
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if line == "@RSYNCD: EXIT" {
			break
		}
		if strings.HasPrefix(line, "@ERROR") {
			return nil, fmt.Errorf("daemon error: %s", strings.TrimPrefix(line, "@ERROR: "))
		}
		if strings.HasPrefix(line, "@RSYNCD: MOTD ") {
			s.motd = append(s.motd, strings.TrimPrefix(line, "@RSYNCD: MOTD "))
			continue
		}
		if line == "" || line == "@RSYNCD: OK" {
			continue
		}
		name, comment, _ := strings.Cut(line, "\t")
		modules = append(modules, Module{Name: name, Comment: comment})
	}
	return modules, nil
}

// SelectModule requests a module by name, forwarding the given argv (the
// remainder of the rsync command line the daemon expects after the module
// name) and returning the net.Conn ready for wire-protocol handshake, plus
// any MOTD lines the daemon sent first.
func (s *Session) SelectModule(name string, argv []string) (net.Conn, []string, error) {
	if _, err := s.rw.WriteString(name + "\n"); err != nil {
		return nil, nil, err
	}
	if err := s.rw.Flush(); err != nil {
		return nil, nil, err
	}

	var motd []string
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, nil, err
		}
		if strings.HasPrefix(line, "@ERROR") {
			return nil, nil, fmt.Errorf("daemon error: %s", strings.TrimPrefix(line, "@ERROR: "))
		}
		if line == "@RSYNCD: OK" {
			break
		}
		motd = append(motd, line)
	}
	for _, a := range argv {
		if _, err := s.rw.WriteString(a + "\n"); err != nil {
			return nil, nil, err
		}
	}
	if _, err := s.rw.WriteString("\n"); err != nil {
		return nil, nil, err
	}
	if err := s.rw.Flush(); err != nil {
		return nil, nil, err
	}
	s.motd = motd
	return s.conn, motd, nil
}

func (s *Session) readLine() (string, error) {
	line, err := s.rw.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading daemon line: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// MOTD returns any message-of-the-day lines observed during module
// listing or module selection (populated by ListModules or a successful
// SelectModule call).
func (s *Session) MOTD() []string {
	return s.motd
}
