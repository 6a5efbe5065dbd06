package localpipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oferchen/rsync-sub001/internal/filterrules"
)

func TestRunCopiesIncludedFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.WriteFile(filepath.Join(src, "keep.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "nested.txt"), []byte("world"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Run(context.Background(), Options{Source: src, Dest: dst})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(result.Entries), result.Entries)
	}

	got, err := os.ReadFile(filepath.Join(dst, "keep.txt"))
	if err != nil || string(got) != "hello" {
		t.Fatalf("keep.txt = %q, %v", got, err)
	}
	got, err = os.ReadFile(filepath.Join(dst, "sub", "nested.txt"))
	if err != nil || string(got) != "world" {
		t.Fatalf("sub/nested.txt = %q, %v", got, err)
	}
}

func TestRunExcludesViaRuleSet(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "b.txt"), []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	rules := filterrules.NewRuleSet(nil)
	rules.Append(filterrules.Entry{Kind: filterrules.KindExclude, Pattern: "*.log"})

	result, err := Run(context.Background(), Options{Source: src, Dest: dst, Rules: rules})
	if err != nil {
		t.Fatal(err)
	}
	var gotPaths []string
	for _, e := range result.Entries {
		gotPaths = append(gotPaths, e.RelPath)
	}
	if diff := cmp.Diff([]string{"b.txt"}, gotPaths); diff != "" {
		t.Fatalf("surviving entries mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dst, "a.log")); !os.IsNotExist(err) {
		t.Fatalf("a.log should not have been copied")
	}
}

func TestRunDeletesExtraneousWhenDeleteSet(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, "stale.txt"), []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), Options{Source: src, Dest: dst, Delete: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dst, "stale.txt")); !os.IsNotExist(err) {
		t.Fatalf("stale.txt should have been deleted")
	}
}

func TestRunDryRunDoesNotWrite(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Run(context.Background(), Options{Source: src, Dest: dst, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("entries = %+v", result.Entries)
	}
	if _, err := os.Stat(filepath.Join(dst, "keep.txt")); !os.IsNotExist(err) {
		t.Fatalf("dry run must not write files")
	}
}
