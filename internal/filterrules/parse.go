package filterrules

import (
	"fmt"
	"strings"
)

// ParseDirective parses a single filter-rule line (as it would appear in a
// --filter argument, an --include/--exclude argument turned into its
// canonical form, or a line from a merge file) into a Directive.
//
// Disambiguation follows the order the teacher's option table applies to
// popt's own short/long form duality (rsyncopts.table()'s mixed short-flag
// and long-keyword entries): short punctuation forms are tried before
// keyword forms, and the keyword forms are tried longest-prefix first so
// "exclude-if-present" is never swallowed by "exclude".
func ParseDirective(raw string) (Directive, error) {
	line := strings.TrimRight(raw, "\r\n")
	if line == "" {
		return Directive{}, fmt.Errorf("empty filter rule")
	}

	// Step 1: leading '.' or ':' short forms for merge/dir-merge.
	if line[0] == '.' || line[0] == ':' {
		kind := byte('.')
		mods, rest := splitModifiers(line[1:])
		source := strings.TrimSpace(rest)
		if source == "" {
			return Directive{}, fmt.Errorf("merge directive %q: missing file argument", raw)
		}
		if line[0] == ':' {
			kind = ':'
		}
		return mergeDirectiveFromShortForm(kind, mods, source)
	}

	// Step 2: '!' or the bare keyword "clear" -> Clear (takes no pattern).
	if line == "!" {
		return Directive{Rule: &RuleSpec{Kind: KindClear}}, nil
	}
	if line == "clear" {
		return Directive{Rule: &RuleSpec{Kind: KindClear}}, nil
	}

	// Step 3: single-letter shorthands P/H/S/R followed by a pattern.
	if len(line) >= 2 && line[1] == ' ' {
		switch line[0] {
		case 'P':
			return Directive{Rule: &RuleSpec{Kind: KindProtect, Pattern: strings.TrimSpace(line[2:])}}, nil
		case 'H':
			return Directive{Rule: &RuleSpec{Kind: KindHide, Pattern: strings.TrimSpace(line[2:])}}, nil
		case 'S':
			return Directive{Rule: &RuleSpec{Kind: KindShow, Pattern: strings.TrimSpace(line[2:])}}, nil
		case 'R':
			return Directive{Rule: &RuleSpec{Kind: KindRisk, Pattern: strings.TrimSpace(line[2:])}}, nil
		}
	}

	// Step 4: "exclude-if-present" prefix (checked before plain "exclude").
	if pat, ok := cutKeyword(line, "exclude-if-present"); ok {
		if pat == "" {
			return Directive{}, fmt.Errorf("exclude-if-present rule %q: missing pattern", raw)
		}
		return Directive{Rule: &RuleSpec{Kind: KindExcludeIfPresent, Pattern: pat}}, nil
	}

	// Step 5: '+'/'-' single-char Include/Exclude shorthand.
	if len(line) >= 2 && (line[0] == '+' || line[0] == '-') && line[1] == ' ' {
		kind := KindInclude
		if line[0] == '-' {
			kind = KindExclude
		}
		return Directive{Rule: &RuleSpec{Kind: kind, Pattern: strings.TrimSpace(line[2:])}}, nil
	}
	// Also accept "+pattern"/"-pattern" with no space, as rsync does for the
	// compact form.
	if len(line) >= 2 && (line[0] == '+' || line[0] == '-') && line[1] != ',' {
		kind := KindInclude
		if line[0] == '-' {
			kind = KindExclude
		}
		return Directive{Rule: &RuleSpec{Kind: kind, Pattern: strings.TrimSpace(line[1:])}}, nil
	}

	// Step 6: "dir-merge" prefix, optionally with ",modifiers".
	if mods, rest, ok := cutKeywordModifiers(line, "dir-merge"); ok {
		source := strings.TrimSpace(rest)
		if source == "" {
			return Directive{}, fmt.Errorf("dir-merge directive %q: missing file argument", raw)
		}
		return mergeDirectiveFromShortForm(':', mods, source)
	}

	// Step 7: "merge" prefix, optionally with ",modifiers".
	if mods, rest, ok := cutKeywordModifiers(line, "merge"); ok {
		source := strings.TrimSpace(rest)
		if source == "" {
			return Directive{}, fmt.Errorf("merge directive %q: missing file argument", raw)
		}
		return mergeDirectiveFromShortForm('.', mods, source)
	}

	// Step 8: full keyword forms.
	for _, kw := range []struct {
		word string
		kind Kind
	}{
		{"include", KindInclude},
		{"exclude", KindExclude},
		{"show", KindShow},
		{"hide", KindHide},
		{"protect", KindProtect},
		{"risk", KindRisk},
	} {
		if pat, ok := cutKeyword(line, kw.word); ok {
			if pat == "" {
				return Directive{}, fmt.Errorf("%s rule %q: missing pattern", kw.word, raw)
			}
			return Directive{Rule: &RuleSpec{Kind: kw.kind, Pattern: pat}}, nil
		}
	}

	return Directive{}, fmt.Errorf("unrecognized filter rule: %q", raw)
}

// cutKeyword reports whether line begins with keyword followed by either a
// space or a comma (modifiers), returning the trimmed pattern/remainder
// after the keyword and its separator. A keyword that has no separator
// following it (i.e. is itself only a prefix of a longer word) is rejected.
func cutKeyword(line, keyword string) (string, bool) {
	if !strings.HasPrefix(line, keyword) {
		return "", false
	}
	rest := line[len(keyword):]
	if rest == "" {
		return "", false
	}
	if rest[0] != ' ' && rest[0] != ',' {
		return "", false
	}
	if rest[0] == ',' {
		// modifiers attached directly: "exclude,s pattern" form not
		// supported for plain rules, treat comma as part of pattern text
		// would be wrong, so just require whitespace-separated pattern
		// after skipping nothing — fall through to generic trim.
		idx := strings.IndexByte(rest, ' ')
		if idx < 0 {
			return "", false
		}
		rest = rest[idx:]
	}
	return strings.TrimSpace(rest), true
}

// cutKeywordModifiers handles "merge"/"dir-merge" which may carry
// ",<modifiers>" directly after the keyword before the required space and
// file argument.
func cutKeywordModifiers(line, keyword string) (mods string, rest string, ok bool) {
	if !strings.HasPrefix(line, keyword) {
		return "", "", false
	}
	after := line[len(keyword):]
	if after == "" {
		return "", "", false
	}
	if after[0] == ' ' {
		return "", after[1:], true
	}
	if after[0] != ',' {
		return "", "", false
	}
	after = after[1:]
	sp := strings.IndexByte(after, ' ')
	if sp < 0 {
		return after, "", true
	}
	return after[:sp], after[sp+1:], true
}

// splitModifiers splits the leading run of modifier characters (before the
// first space) from the remainder, used by the '.'/':'  short merge forms
// where modifiers are attached with no comma, e.g. ".-C /path".
func splitModifiers(rest string) (mods string, tail string) {
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return "", rest
	}
	candidate := rest[:sp]
	if candidate != "" && isAllModifierChars(candidate) {
		return candidate, rest[sp+1:]
	}
	return "", rest
}

func isAllModifierChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte("-+Cenrsw/", s[i]) < 0 {
			return false
		}
	}
	return true
}

// mergeDirectiveFromShortForm builds a MergeDirective given the short-form
// marker byte ('.' => merge, ':' => dir-merge), its modifier characters,
// and the already-trimmed source argument.
func mergeDirectiveFromShortForm(marker byte, mods, source string) (Directive, error) {
	var base DirMergeOptions
	if marker == ':' {
		base = DefaultDirMergeOptions()
	} else {
		base = DefaultMergeOptions()
	}
	present := map[byte]bool{}
	for i := 0; i < len(mods); i++ {
		present[mods[i]] = true
	}
	child := base
	child.ExcludesSelf = present['e']
	child.InheritRules = !present['n']
	if present['w'] {
		child.UsesWhitespace = true
		child.AllowsComments = false
	}
	child.AnchorRoot = present['/']
	opts := Compose(base, child, present)

	// A plain merge ('.') is a one-shot read of Source at parse time; a
	// dir-merge (':') treats Source as a per-directory filename re-read on
	// every directory visit. C5's resolver distinguishes the two cases by
	// how the directive reached it, not by a field on MergeDirective.
	return Directive{Merge: &MergeDirective{Source: source, Options: opts}}, nil
}
