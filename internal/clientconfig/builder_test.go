package clientconfig

import "testing"

func TestBuilderDefaults(t *testing.T) {
	cfg, err := NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HumanReadable() != HumanReadableEnabled {
		t.Fatalf("HumanReadable = %v, want Enabled", cfg.HumanReadable())
	}
	if !cfg.ImpliedDirs() {
		t.Fatal("ImpliedDirs should default true")
	}
	if cfg.OutFormat() != "%i %n%L" {
		t.Fatalf("OutFormat = %q, want default itemize template", cfg.OutFormat())
	}
}

func TestBuilderArchiveImpliesFlags(t *testing.T) {
	cfg, err := NewBuilder().Archive(true).Build()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Relative() || !cfg.Devices() || !cfg.Specials() {
		t.Fatalf("archive should imply relative/devices/specials: %+v", cfg)
	}
}

func TestBuilderDeleteExcludedImpliesDeleteDuring(t *testing.T) {
	cfg, err := NewBuilder().DeleteExcluded(true).Build()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeleteMode() != DeleteDuring {
		t.Fatalf("DeleteMode = %v, want DeleteDuring", cfg.DeleteMode())
	}
}

func TestBuilderMaxDeleteImpliesDelete(t *testing.T) {
	cfg, err := NewBuilder().MaxDelete(5).Build()
	if err != nil {
		t.Fatal(err)
	}
	if n, set := cfg.MaxDelete(); !set || n != 5 {
		t.Fatalf("MaxDelete = (%d,%v), want (5,true)", n, set)
	}
	if !cfg.DeleteEnabled() {
		t.Fatal("--max-delete should imply delete enabled")
	}
}

func TestBuilderSizeRangeValidation(t *testing.T) {
	if _, err := NewBuilder().SizeRange(100, 10).Build(); err == nil {
		t.Fatal("expected error for min > max")
	}
	if _, err := NewBuilder().SizeRange(-1, 10).Build(); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestBuilderNegativeTimeoutRejected(t *testing.T) {
	if _, err := NewBuilder().Timeout(-5).Build(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestBuilderBackupDirImpliesBackup(t *testing.T) {
	cfg, err := NewBuilder().BackupDir("/tmp/backups").Build()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Backup() {
		t.Fatal("--backup-dir should imply --backup")
	}
}

func TestBuilderChecksumAlgorithmInvalid(t *testing.T) {
	if _, err := NewBuilder().ChecksumAlgorithm("bogus").Build(); err == nil {
		t.Fatal("expected error for invalid checksum algorithm")
	}
}

func TestBuilderImmutableSnapshot(t *testing.T) {
	b := NewBuilder().Operands([]string{"a", "b"})
	cfg, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	ops := cfg.Operands()
	ops[0] = "mutated"
	if cfg.Operands()[0] != "a" {
		t.Fatal("Operands() must return a defensive copy")
	}
}

func TestBuilderAppendVerifyRequiresWholeFile(t *testing.T) {
	if _, err := NewBuilder().AppendVerify(true).WholeFile(false).Build(); err == nil {
		t.Fatal("expected error: append-verify requires whole-file")
	}
}
