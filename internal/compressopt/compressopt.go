// Package compressopt resolves the --compress/--compress-level/
// --compress-choice/--skip-compress surface into a small immutable
// settings value; the actual compression codec is a declared non-goal.
package compressopt

import "strings"

// Setting is the resolved compression configuration for a transfer.
type Setting struct {
	Enabled      bool
	Level        int // explicit level; math.MinInt32-sentinel handled by caller as "unset"
	Choice       string
	SkipSuffixes map[string]bool
}

// Default matches the teacher's NewOptions() default of "compression
// undecided" (do_compression_level left at its min-int sentinel until the
// orchestrator resolves it against --whole-file and protocol defaults).
func Default() Setting {
	return Setting{SkipSuffixes: defaultSkipCompressSet()}
}

// ParseSkipCompress splits a --skip-compress value (slash-separated
// suffix list, e.g. "gz/zip") into a set, lower-cased for
// case-insensitive matching.
func ParseSkipCompress(v string) map[string]bool {
	set := map[string]bool{}
	for _, s := range strings.Split(v, "/") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		set[strings.ToLower(s)] = true
	}
	return set
}

// defaultSkipCompressSet mirrors rsync's built-in list of suffixes assumed
// already compressed.
func defaultSkipCompressSet() map[string]bool {
	return ParseSkipCompress("gz/zip/z/rpm/deb/iso/bz2/tgz/tbz/7z/mp3/mp4/mov/avi/ogg/jpg/jpeg/png")
}

// ShouldSkip reports whether name's suffix is in the skip-compress set.
func (s Setting) ShouldSkip(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	suffix := strings.ToLower(name[idx+1:])
	return s.SkipSuffixes[suffix]
}

// EmitLevelZeroAsDisabled reports whether an explicit level 0 must be
// rendered as --no-compress --compress-level 0 rather than --compress, per
// the fallback-argument-builder rule.
func (s Setting) EmitLevelZeroAsDisabled() bool {
	return s.Enabled && s.Level == 0
}
