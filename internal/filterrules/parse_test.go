package filterrules

import "testing"

func TestParseDirectiveShortForms(t *testing.T) {
	tests := []struct {
		in       string
		wantKind Kind
		wantPat  string
	}{
		{"+ foo", KindInclude, "foo"},
		{"- foo", KindExclude, "foo"},
		{"+foo", KindInclude, "foo"},
		{"-foo", KindExclude, "foo"},
		{"P secret.txt", KindProtect, "secret.txt"},
		{"H .git", KindHide, ".git"},
		{"S build", KindShow, "build"},
		{"R tmp", KindRisk, "tmp"},
		{"include foo", KindInclude, "foo"},
		{"exclude foo", KindExclude, "foo"},
		{"exclude-if-present .nobackup", KindExcludeIfPresent, ".nobackup"},
		{"protect secret", KindProtect, "secret"},
		{"risk tmp", KindRisk, "tmp"},
		{"show build", KindShow, "build"},
		{"hide .git", KindHide, ".git"},
	}
	for _, tt := range tests {
		d, err := ParseDirective(tt.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if d.Rule == nil {
			t.Fatalf("%q: expected a rule directive", tt.in)
		}
		if d.Rule.Kind != tt.wantKind {
			t.Errorf("%q: kind = %v, want %v", tt.in, d.Rule.Kind, tt.wantKind)
		}
		if d.Rule.Pattern != tt.wantPat {
			t.Errorf("%q: pattern = %q, want %q", tt.in, d.Rule.Pattern, tt.wantPat)
		}
	}
}

func TestParseDirectiveClear(t *testing.T) {
	for _, in := range []string{"!", "clear"} {
		d, err := ParseDirective(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if d.Rule == nil || d.Rule.Kind != KindClear {
			t.Fatalf("%q: expected Clear rule, got %+v", in, d)
		}
	}
}

func TestParseDirectiveExcludeIfPresentNotSwallowedByExclude(t *testing.T) {
	d, err := ParseDirective("exclude-if-present .nobackup")
	if err != nil {
		t.Fatal(err)
	}
	if d.Rule.Kind != KindExcludeIfPresent {
		t.Fatalf("kind = %v, want KindExcludeIfPresent", d.Rule.Kind)
	}
}

func TestParseDirectiveMergeShortForms(t *testing.T) {
	d, err := ParseDirective(". /path/to/file")
	if err != nil {
		t.Fatal(err)
	}
	if d.Merge == nil || d.Merge.Source != "/path/to/file" {
		t.Fatalf("merge directive = %+v", d)
	}
	if !d.Merge.Options.InheritRules {
		t.Fatalf("plain merge should default InheritRules=true")
	}

	d2, err := ParseDirective(": .rsync-filter")
	if err != nil {
		t.Fatal(err)
	}
	if d2.Merge == nil || d2.Merge.Source != ".rsync-filter" {
		t.Fatalf("dir-merge directive = %+v", d2)
	}
	if d2.Merge.Options.ListClearAllowed {
		t.Fatalf("dir-merge should default ListClearAllowed=false")
	}
}

func TestParseDirectiveMergeKeywordWithModifiers(t *testing.T) {
	d, err := ParseDirective("merge,C /cvs/style/file")
	if err != nil {
		t.Fatal(err)
	}
	if d.Merge == nil {
		t.Fatalf("expected merge directive")
	}
	if !d.Merge.Options.CVS {
		t.Fatalf("expected CVS modifier applied")
	}
	if d.Merge.Options.Enforced != EnforcedExclude {
		t.Fatalf("expected CVS modifier to force Exclude")
	}
}

func TestParseDirectiveDirMergeKeyword(t *testing.T) {
	d, err := ParseDirective("dir-merge,n- .nomerge")
	if err != nil {
		t.Fatal(err)
	}
	if d.Merge == nil || d.Merge.Source != ".nomerge" {
		t.Fatalf("dir-merge directive = %+v", d)
	}
	if d.Merge.Options.Enforced != EnforcedExclude {
		t.Fatalf("expected '-' modifier to force Exclude")
	}
}

func TestParseDirectiveUnrecognized(t *testing.T) {
	if _, err := ParseDirective("bogus thing"); err == nil {
		t.Fatal("expected error for unrecognized directive")
	}
}

func TestParseDirectiveEmpty(t *testing.T) {
	if _, err := ParseDirective(""); err == nil {
		t.Fatal("expected error for empty directive")
	}
}
