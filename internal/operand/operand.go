// Package operand classifies a command-line transfer operand as local or
// remote, and recognizes module-listing and daemon-URL forms, the way the
// teacher's checkForHostspec call site in maincmd splits a hostspec into
// host/path/port before deciding how to dial — generalized here into a
// pure classifier with no dialing side effects, since C7 only decides
// routing, it does not open connections.
package operand

import "strings"

// Kind is the classification of a single operand.
type Kind int

const (
	KindLocal Kind = iota
	KindRemoteShell
	KindRemoteDaemon
)

// Classification is the result of classifying one operand.
type Classification struct {
	Kind Kind
	// Host is set for remote operands (daemon or remote-shell).
	Host string
	// Module is set when Host was reached via the rsync daemon protocol
	// and a module name was given.
	Module string
	// Path is the remaining path component (module-relative for daemon
	// operands, host-relative for remote-shell operands, as given for
	// local operands).
	Path string
	// ModuleListing is true when the operand names a daemon with no
	// module path component (e.g. "host::" or "rsync://host/").
	ModuleListing bool
}

// Classify implements §4.6's operand classifier.
func Classify(operand string) Classification {
	if rest, ok := cutPrefix(operand, "rsync://"); ok {
		return classifyDaemonURL(rest)
	}
	if host, modAndPath, ok := splitDoubleColon(operand); ok {
		return classifyDaemonHostspec(host, modAndPath)
	}
	if isWindowsLocal(operand) {
		return Classification{Kind: KindLocal, Path: operand}
	}
	if host, path, ok := splitRemoteShellHostspec(operand); ok {
		return Classification{Kind: KindRemoteShell, Host: host, Path: path}
	}
	return Classification{Kind: KindLocal, Path: operand}
}

// IsRemote reports whether operand requires either daemon or remote-shell
// transport.
func IsRemote(operand string) bool {
	return Classify(operand).Kind != KindLocal
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func classifyDaemonURL(rest string) Classification {
	// rest is "host[:port]/module/path..." or "host[:port]/" (listing) or
	// "host[:port]" (listing, no trailing slash).
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return Classification{Kind: KindRemoteDaemon, Host: rest, ModuleListing: true}
	}
	host := rest[:slash]
	tail := rest[slash+1:]
	if tail == "" {
		return Classification{Kind: KindRemoteDaemon, Host: host, ModuleListing: true}
	}
	module, path := splitModuleAndPath(tail)
	return Classification{Kind: KindRemoteDaemon, Host: host, Module: module, Path: path}
}

func splitModuleAndPath(tail string) (module, path string) {
	if idx := strings.IndexByte(tail, '/'); idx >= 0 {
		return tail[:idx], tail[idx+1:]
	}
	return tail, ""
}

// splitDoubleColon splits "host::module/path" and "host::" forms.
func splitDoubleColon(operand string) (host, rest string, ok bool) {
	idx := strings.Index(operand, "::")
	if idx < 0 {
		return "", "", false
	}
	return operand[:idx], operand[idx+2:], true
}

func classifyDaemonHostspec(host, modAndPath string) Classification {
	if modAndPath == "" {
		return Classification{Kind: KindRemoteDaemon, Host: host, ModuleListing: true}
	}
	module, path := splitModuleAndPath(modAndPath)
	return Classification{Kind: KindRemoteDaemon, Host: host, Module: module, Path: path}
}

// isWindowsLocal reports whether operand is a Windows path that must be
// treated as local despite containing a ':' — drive letters, \\?\ and \\.\
// extended prefixes, \\server\share UNC paths, and //server/share
// forward-slash UNC paths.
func isWindowsLocal(operand string) bool {
	if hasDrivePrefix(operand) {
		return true
	}
	if strings.HasPrefix(operand, `\\?\`) || strings.HasPrefix(operand, `\\.\`) {
		return true
	}
	if strings.HasPrefix(operand, `\\`) && len(operand) > 2 {
		return true
	}
	if strings.HasPrefix(operand, `//`) && len(operand) > 2 {
		return true
	}
	return false
}

// hasDrivePrefix reports whether operand starts with "<letter>:" where the
// letter is a single ASCII letter — the sole case where a leading
// single-letter-then-colon must NOT be treated as a remote-shell hostspec.
func hasDrivePrefix(operand string) bool {
	if len(operand) < 2 || operand[1] != ':' {
		return false
	}
	c := operand[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splitRemoteShellHostspec recognizes "host:path" and "user@host:path"
// forms. The left side of the first ':' must contain no path separator
// and must not be a single-letter drive identifier (already excluded by
// isWindowsLocal before this is reached).
func splitRemoteShellHostspec(operand string) (host, path string, ok bool) {
	idx := strings.IndexByte(operand, ':')
	if idx < 0 {
		return "", "", false
	}
	left := operand[:idx]
	if left == "" || strings.ContainsAny(left, `/\`) {
		return "", "", false
	}
	return left, operand[idx+1:], true
}
