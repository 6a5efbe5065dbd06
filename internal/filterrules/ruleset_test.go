package filterrules

import "testing"

func TestMatchPatternBasenameSlashFree(t *testing.T) {
	if !MatchPattern("*.o", "src/foo.o", false) {
		t.Fatal("expected slash-free pattern to match at depth")
	}
	if MatchPattern("*.o", "src/foo.c", false) {
		t.Fatal("unexpected match")
	}
}

func TestMatchPatternAnchored(t *testing.T) {
	if !MatchPattern("/build", "build", true) {
		t.Fatal("anchored pattern should match root-level build")
	}
	if MatchPattern("/build", "src/build", true) {
		t.Fatal("anchored pattern must not match nested build")
	}
}

func TestMatchPatternDirOnly(t *testing.T) {
	if MatchPattern("logs/", "logs", false) {
		t.Fatal("dir-only pattern must not match a file")
	}
	if !MatchPattern("logs/", "logs", true) {
		t.Fatal("dir-only pattern should match a directory")
	}
}

func TestMatchPatternDoubleStarCrossesSlashes(t *testing.T) {
	if !MatchPattern("a/**/z", "a/b/c/z", false) {
		t.Fatal("** should cross directory boundaries")
	}
	if MatchPattern("a/*/z", "a/b/c/z", false) {
		t.Fatal("* should not cross directory boundaries")
	}
}

func TestRuleSetEvaluateFirstMatchWins(t *testing.T) {
	rs := NewRuleSet([]Entry{
		{Kind: KindInclude, Pattern: "*.keep"},
		{Kind: KindExclude, Pattern: "*"},
	})
	ctx := EvalContext{Side: SideBoth}
	if got := rs.Evaluate("a.keep", false, ctx); got != DecisionInclude {
		t.Fatalf("a.keep = %v, want Include", got)
	}
	if got := rs.Evaluate("a.txt", false, ctx); got != DecisionExclude {
		t.Fatalf("a.txt = %v, want Exclude", got)
	}
}

func TestRuleSetEvaluateUnmatchedDefault(t *testing.T) {
	rs := NewRuleSet(nil)
	if got := rs.Evaluate("anything", false, EvalContext{Side: SideBoth}); got != DecisionUnmatched {
		t.Fatalf("empty rule set = %v, want Unmatched", got)
	}
}

func TestRuleSetHideShowSenderOnly(t *testing.T) {
	rs := NewRuleSet([]Entry{{Kind: KindHide, Pattern: "secret"}})
	if got := rs.Evaluate("secret", false, EvalContext{Side: SideSender}); got != DecisionExclude {
		t.Fatalf("sender-side hide = %v, want Exclude", got)
	}
	if got := rs.Evaluate("secret", false, EvalContext{Side: SideReceiver}); got != DecisionUnmatched {
		t.Fatalf("receiver-side hide should not apply, got %v", got)
	}
}

func TestRuleSetProtectOnlyDuringDeletionPass(t *testing.T) {
	rs := NewRuleSet([]Entry{{Kind: KindProtect, Pattern: "keepme"}})
	if got := rs.Evaluate("keepme", false, EvalContext{Side: SideReceiver, DeletionPass: true}); got != DecisionExclude {
		t.Fatalf("protect during deletion pass = %v, want Exclude", got)
	}
	if got := rs.Evaluate("keepme", false, EvalContext{Side: SideReceiver, DeletionPass: false}); got != DecisionUnmatched {
		t.Fatalf("protect outside deletion pass should not apply, got %v", got)
	}
}

func TestRuleSetClear(t *testing.T) {
	rs := NewRuleSet([]Entry{{Kind: KindExclude, Pattern: "*"}})
	rs.Clear()
	if len(rs.Entries()) != 0 {
		t.Fatalf("expected empty rule set after Clear")
	}
}

func TestRuleSetScopedEntry(t *testing.T) {
	rs := NewRuleSet([]Entry{{Kind: KindExclude, Pattern: "*.tmp", Scope: "sub"}})
	ctx := EvalContext{Side: SideBoth}
	if got := rs.Evaluate("sub/a.tmp", false, ctx); got != DecisionExclude {
		t.Fatalf("scoped rule within scope = %v, want Exclude", got)
	}
	if got := rs.Evaluate("other/a.tmp", false, ctx); got != DecisionUnmatched {
		t.Fatalf("scoped rule outside scope = %v, want Unmatched", got)
	}
}
