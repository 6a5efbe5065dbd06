package filterrules

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultCVSIgnorePatterns is rsync's built-in CVS-exclude list, the first
// layer CVSDefaultExcludes returns, ahead of $CVSIGNORE and
// $HOME/.cvsignore.
var defaultCVSIgnorePatterns = []string{
	"RCS", "SCCS", "CVS", "CVS.adm", "RCSLOG", "cvslog.*",
	"tags", "TAGS", ".make.state", ".nse_depinfo",
	"*~", "#*", ".#*", ",*", "_$*", "*$",
	"*.old", "*.bak", "*.BAK", "*.orig", "*.rej", ".del-*",
	"*.a", "*.olb", "*.o", "*.obj", "*.so", "*.exe",
	"*.Z", "*.elc", "*.ln", "core", ".git", ".svn", ".hg", ".bzr",
}

// CVSDefaultExcludes builds the exclude entries CVS-exclude mode
// contributes: the compiled-in defaults, then $CVSIGNORE (whitespace
// separated), then $HOME/.cvsignore if present — the order spec.md's
// environment table assigns them, each layer able to override an earlier
// one only in the sense that later entries are appended and therefore
// evaluated first by RuleSet's first-match-wins walk is NOT how rsync
// layers them: CVS-exclude entries are always lowest priority, appended
// after any explicit rule, so callers must append these to the END of a
// RuleSet's pattern list, not the front. No caller in this module applies
// the result: -C/--cvs-exclude in internal/cliflags adds only a .cvsignore
// dir-merge entry, which the local pipeline does not expand.
func CVSDefaultExcludes(env func(string) string) []Entry {
	if env == nil {
		env = os.Getenv
	}
	entries := make([]Entry, 0, len(defaultCVSIgnorePatterns)+4)
	for _, p := range defaultCVSIgnorePatterns {
		entries = append(entries, Entry{Kind: KindExclude, Pattern: p})
	}
	if v := env("CVSIGNORE"); v != "" {
		for _, p := range strings.Fields(v) {
			entries = append(entries, Entry{Kind: KindExclude, Pattern: p})
		}
	}
	if home := env("HOME"); home != "" {
		if data, err := os.ReadFile(filepath.Join(home, ".cvsignore")); err == nil {
			for _, p := range strings.Fields(string(data)) {
				entries = append(entries, Entry{Kind: KindExclude, Pattern: p})
			}
		}
	}
	return entries
}

// CVSIgnoreFileEntries reads a single per-directory .cvsignore file,
// returning the additional patterns it contributes scoped to dir. The
// local pipeline's walk does not call it.
func CVSIgnoreFileEntries(dir string) []Entry {
	data, err := os.ReadFile(filepath.Join(dir, ".cvsignore"))
	if err != nil {
		return nil
	}
	var entries []Entry
	for _, p := range strings.Fields(string(data)) {
		entries = append(entries, Entry{Kind: KindExclude, Pattern: p, Scope: dir})
	}
	return entries
}
