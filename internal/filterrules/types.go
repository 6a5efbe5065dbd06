// Package filterrules implements the filter-rule pipeline: parsing single
// directives (internal/rsyncopts' --filter/--exclude/--include surface
// funnels here), the ordered rule set they form, and the merge/dir-merge
// file resolver that recursively pulls in further rules from disk or
// stdin.
//
// The shape mirrors internal/rsyncopts's "ordered table of typed
// directives" idiom (Options.table()'s []poptOption), generalized to a
// full filter grammar.
package filterrules

// Kind is the tag of a single filter rule.
type Kind int

const (
	KindInclude Kind = iota
	KindExclude
	KindClear
	KindExcludeIfPresent
	KindProtect
	KindRisk
	KindHide
	KindShow
	KindDirMerge
)

func (k Kind) String() string {
	switch k {
	case KindInclude:
		return "include"
	case KindExclude:
		return "exclude"
	case KindClear:
		return "clear"
	case KindExcludeIfPresent:
		return "exclude-if-present"
	case KindProtect:
		return "protect"
	case KindRisk:
		return "risk"
	case KindHide:
		return "hide"
	case KindShow:
		return "show"
	case KindDirMerge:
		return "dir-merge"
	default:
		return "unknown"
	}
}

// EnforcedKind names what a merge directive's modifiers force every rule
// parsed from its file to become.
type EnforcedKind int

const (
	EnforcedNone EnforcedKind = iota
	EnforcedInclude
	EnforcedExclude
)

// SidePreference narrows a rule to only one side of the transfer.
type SidePreference int

const (
	SideEither SidePreference = iota
	SideSenderOnly
	SideReceiverOnly
)

// DirMergeOptions is the modifier bag attached to a merge/dir-merge rule.
// A directive's modifiers are composed with that directive
// kind's defaults when it is parsed (see Compose); a merge nested inside a
// merge file keeps its own parsed options and does not inherit the
// enclosing directive's options.
type DirMergeOptions struct {
	InheritRules     bool
	ExcludesSelf     bool
	ListClearAllowed bool
	UsesWhitespace   bool
	AllowsComments   bool
	AnchorRoot       bool
	Enforced         EnforcedKind
	Side             SidePreference
	// CVS requests CVS-exclude compatibility semantics (modifier 'C').
	CVS bool
}

// DefaultMergeOptions returns the defaults for a plain "merge" directive.
func DefaultMergeOptions() DirMergeOptions {
	return DirMergeOptions{
		InheritRules:     true,
		ListClearAllowed: true,
		AllowsComments:   true,
	}
}

// DefaultDirMergeOptions returns the defaults for a "dir-merge" directive:
// identical except list-clear is not allowed unless explicitly granted via
// the 'C' (CVS) modifier, matching the teacher's general "child explicit,
// else inherit" option-merge rule described for merge composition.
func DefaultDirMergeOptions() DirMergeOptions {
	o := DefaultMergeOptions()
	o.ListClearAllowed = false
	return o
}

// Compose merges a nested directive's options onto those of its enclosing
// directive: the child's explicitly-set fields override the parent's,
// anything left at the child's zero/default value inherits from the
// parent. Since plain bools can't distinguish "explicitly false" from
// "unset", Compose is called with the child's options as produced directly
// by modifier parsing (which only flips fields modifiers actually named),
// using present as the set of modifier characters the child's directive
// text actually specified.
func Compose(parent, child DirMergeOptions, present map[byte]bool) DirMergeOptions {
	out := parent
	if present['+'] || present['-'] {
		if present['+'] {
			out.Enforced = EnforcedInclude
		}
		if present['-'] {
			out.Enforced = EnforcedExclude
		}
	}
	if present['C'] {
		out.CVS = true
		out.Enforced = EnforcedExclude
		out.UsesWhitespace = true
		out.AllowsComments = false
		out.InheritRules = false
		out.ListClearAllowed = true
	}
	if present['e'] {
		out.ExcludesSelf = child.ExcludesSelf
	}
	if present['n'] {
		out.InheritRules = child.InheritRules
	}
	if present['w'] {
		out.UsesWhitespace = child.UsesWhitespace
		out.AllowsComments = child.AllowsComments
	}
	if present['s'] {
		out.Side = SideSenderOnly
	}
	if present['r'] {
		out.Side = SideReceiverOnly
	}
	if present['/'] {
		out.AnchorRoot = child.AnchorRoot
	}
	return out
}

// RuleSpec is a single parsed filter rule (the AST node C3 produces for
// everything except merge directives, which parse to a MergeDirective
// instead).
type RuleSpec struct {
	Kind    Kind
	Pattern string
	// DirMerge is non-nil only when Kind == KindDirMerge.
	DirMerge *DirMergeOptions
}

// MergeDirective is a resolved include of another rules file.
type MergeDirective struct {
	// Source is the file path, or "-" for stdin.
	Source  string
	Options DirMergeOptions
}

// Directive is the sum type C3's parser produces: exactly one of Rule or
// Merge is non-nil.
type Directive struct {
	Rule  *RuleSpec
	Merge *MergeDirective
}
