package operand

import "testing"

func TestClassifyLocalPaths(t *testing.T) {
	for _, p := range []string{"/home/user/file", "relative/path", "./file", "file.txt"} {
		if got := Classify(p); got.Kind != KindLocal {
			t.Errorf("%q classified %v, want Local", p, got.Kind)
		}
	}
}

func TestClassifyRemoteShell(t *testing.T) {
	c := Classify("user@host:/path/to/file")
	if c.Kind != KindRemoteShell || c.Host != "user@host" || c.Path != "/path/to/file" {
		t.Fatalf("got %+v", c)
	}
}

func TestClassifyDaemonDoubleColon(t *testing.T) {
	c := Classify("host::module/path")
	if c.Kind != KindRemoteDaemon || c.Host != "host" || c.Module != "module" || c.Path != "path" {
		t.Fatalf("got %+v", c)
	}
}

func TestClassifyDaemonDoubleColonListing(t *testing.T) {
	c := Classify("host::")
	if c.Kind != KindRemoteDaemon || !c.ModuleListing {
		t.Fatalf("got %+v", c)
	}
}

func TestClassifyRsyncURL(t *testing.T) {
	c := Classify("rsync://host/module/path")
	if c.Kind != KindRemoteDaemon || c.Host != "host" || c.Module != "module" || c.Path != "path" {
		t.Fatalf("got %+v", c)
	}
}

func TestClassifyRsyncURLListing(t *testing.T) {
	for _, u := range []string{"rsync://host/", "rsync://host"} {
		c := Classify(u)
		if c.Kind != KindRemoteDaemon || !c.ModuleListing {
			t.Errorf("%q: got %+v", u, c)
		}
	}
}

func TestClassifyWindowsDriveLetterIsLocal(t *testing.T) {
	c := Classify(`C:\Users\foo\file.txt`)
	if c.Kind != KindLocal {
		t.Fatalf("drive-letter path classified %v, want Local", c.Kind)
	}
}

func TestClassifyWindowsExtendedPrefixIsLocal(t *testing.T) {
	for _, p := range []string{`\\?\C:\very\long\path`, `\\.\PhysicalDrive0`, `\\server\share\file`, `//server/share/file`} {
		if got := Classify(p); got.Kind != KindLocal {
			t.Errorf("%q classified %v, want Local", p, got.Kind)
		}
	}
}

func TestClassifySingleLetterColonTreatedAsDrive(t *testing.T) {
	// "a:b" on a non-Windows-style single extra char still reads as a
	// drive-letter form under this classifier's rule (matches spec's "is
	// not a pure single-letter drive identifier" carve-out applying to
	// the *remote-shell* hostspec's left side, not to 'C:' style paths).
	c := Classify("a:relative")
	if c.Kind != KindLocal {
		t.Fatalf("single letter + colon classified %v, want Local (drive-style)", c.Kind)
	}
}

func TestRequiresFallback(t *testing.T) {
	if !RequiresFallback([]string{"host:/path"}, nil) {
		t.Fatal("expected fallback required for remote source")
	}
	if RequiresFallback([]string{"/local/path"}, nil) {
		t.Fatal("expected no fallback for purely local operands")
	}
	if !RequiresFallback([]string{"/local"}, []string{"host::mod/list.txt"}) {
		t.Fatal("expected fallback required when files-from operand is remote")
	}
}

func TestIsModuleListing(t *testing.T) {
	if !IsModuleListing([]string{"host::"}, nil) {
		t.Fatal("expected module listing")
	}
	if IsModuleListing([]string{"host::mod"}, nil) {
		t.Fatal("operand with a module must not be a listing")
	}
	if IsModuleListing([]string{"host::"}, []string{"-"}) {
		t.Fatal("files-from operand present must disqualify listing")
	}
	if IsModuleListing([]string{"a::", "b::"}, nil) {
		t.Fatal("more than one operand must disqualify listing")
	}
}
