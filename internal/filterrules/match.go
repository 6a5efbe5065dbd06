package filterrules

import "github.com/bmatcuk/doublestar/v4"

// globMatch adapts rsync's pattern glyphs ('*' single-segment, '**'
// cross-segment, '?' single-char, '[...]' class) onto doublestar's
// Match, which already implements the same "** crosses slashes,
// * does not" semantics doublestar was built for (picked for this package
// per SPEC_FULL.md's domain-stack wiring since no filter-glob engine
// survived retrieval from the teacher or rclone).
func globMatch(pat, s string) bool {
	ok, err := doublestar.Match(pat, s)
	if err != nil {
		return false
	}
	return ok
}
