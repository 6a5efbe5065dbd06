package filelist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadLineMode(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(p, []byte("a\r\n# comment\n\n; also comment\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := DefaultSource()
	got, err := s.Load([]string{p}, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadZeroTerminatedDoesNotTreatHashAsComment(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(p, []byte("#notacomment\x00plain\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := DefaultSource()
	got, err := s.Load([]string{p}, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"#notacomment", "plain"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadStdin(t *testing.T) {
	s := Source{Stdin: strings.NewReader("one\ntwo\n")}
	got, err := s.Load([]string{"-"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("got %v", got)
	}
}

func TestLoadMissingFileError(t *testing.T) {
	s := DefaultSource()
	if _, err := s.Load([]string{"/nonexistent/path/list.txt"}, false); err == nil {
		t.Fatal("expected error for missing file")
	}
}
