// Package version holds the client identification string every stderr
// error line carries, per spec.md's "all error messages emitted to stderr
// carry a trailer identifying the client's version" requirement.
//
// Grounded on internal/maincmd.version's osenv.Logf("gokrazy rsync, pid
// %d", ...) banner, generalized from a startup banner into a reusable
// trailer any error path can append.
package version

import "fmt"

// ClientVersion is this client's self-reported version string.
const ClientVersion = "0.1.0"

// ProtocolCap is the highest protocol version this client negotiates,
// matching clientconfig.NewBuilder's default protocolCap.
const ProtocolCap = 27

// Trailer formats the version line appended below an error message.
func Trailer() string {
	return fmt.Sprintf("rsync-sub001 %s (protocol %d)", ClientVersion, ProtocolCap)
}
