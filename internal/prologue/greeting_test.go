package prologue

import (
	"bytes"
	"errors"
	"os"
	"testing"
)

func TestParseLegacyDaemonGreeting(t *testing.T) {
	tests := []struct {
		line    string
		major   int
		minor   int
		hasMin  bool
		digests []string
		wantErr bool
	}{
		{line: "@RSYNCD: 31.0\n", major: 31, minor: 0, hasMin: true},
		{line: "@RSYNCD: 27\n", major: 27},
		{line: "@RSYNCD: 31.0 sha512 sha256 md5\n", major: 31, minor: 0, hasMin: true,
			digests: []string{"sha512", "sha256", "md5"}},
		{line: "not a greeting\n", wantErr: true},
		{line: "@RSYNCD:\n", wantErr: true},
	}
	for _, tt := range tests {
		g, err := ParseLegacyDaemonGreeting([]byte(tt.line))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.line)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.line, err)
		}
		if g.Major != tt.major || g.Minor != tt.minor || g.HasMinor != tt.hasMin {
			t.Errorf("%q: got %+v", tt.line, g)
		}
		if len(g.Digests) != len(tt.digests) {
			t.Errorf("%q: digests = %v, want %v", tt.line, g.Digests, tt.digests)
		}
	}
}

func TestParseLegacyDaemonGreetingErrorIsDowncastable(t *testing.T) {
	_, err := ParseLegacyDaemonGreeting([]byte("not a greeting\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	var parseErr *GreetingParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error is not *GreetingParseError: %v", err)
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected errors.Is(err, os.ErrInvalid) to hold: %v", err)
	}
}

func TestReadLegacyDaemonLineRejectsNonLegacy(t *testing.T) {
	s := New()
	s.Observe([]byte{0x00}) // binary
	var line []byte
	if err := ReadLegacyDaemonLine(s, bytes.NewReader(nil), &line); err == nil {
		t.Fatal("expected error for binary-classified sniffer")
	}
}

func TestReadLegacyDaemonLineRejectsIncompletePrefix(t *testing.T) {
	s := New()
	s.Observe([]byte("@RSYNC")) // only 6 of 8 marker bytes seen
	var line []byte
	if err := ReadLegacyDaemonLine(s, bytes.NewReader(nil), &line); err == nil {
		t.Fatal("expected error for incomplete marker")
	}
}

func TestFormatLegacyDaemonGreetingRoundTrip(t *testing.T) {
	g := &DaemonGreeting{Major: 31, Minor: 0, HasMinor: true, Digests: []string{"sha512", "md5"}}
	formatted := FormatLegacyDaemonGreeting(g)
	g2, err := ParseLegacyDaemonGreeting([]byte(formatted))
	if err != nil {
		t.Fatal(err)
	}
	if g2.Major != g.Major || g2.Minor != g.Minor || g2.HasMinor != g.HasMinor {
		t.Fatalf("round trip mismatch: %+v vs %+v", g, g2)
	}
}
