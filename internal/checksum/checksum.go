// Package checksum names the whole-file/block checksum algorithms a client
// may request via --checksum-choice, and resolves the identifier to the
// hash constructor the rest of the transfer engine would use. Selecting an
// algorithm is in scope; the block-checksum/rolling-checksum transfer
// algorithm itself is a declared non-goal, so this package stops at
// identification.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"hash"

	"github.com/mmcloughlin/md4"
)

// Algorithm identifies a checksum implementation a peer negotiation or
// --checksum-choice selection may resolve to.
type Algorithm int

const (
	Auto Algorithm = iota
	MD5
	MD4
	SHA1
	None
)

func (a Algorithm) String() string {
	switch a {
	case Auto:
		return "auto"
	case MD5:
		return "md5"
	case MD4:
		return "md4"
	case SHA1:
		return "sha1"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// Parse resolves a --checksum-choice value, the values original_source's
// client CLI accepts for the flag, to an Algorithm.
func Parse(name string) (Algorithm, error) {
	switch name {
	case "", "auto":
		return Auto, nil
	case "md5":
		return MD5, nil
	case "md4":
		return MD4, nil
	case "sha1":
		return SHA1, nil
	case "none":
		return None, nil
	default:
		return Auto, fmt.Errorf("unknown checksum algorithm %q", name)
	}
}

// New returns a fresh hash.Hash for the algorithm, or nil for None/Auto
// (Auto must be resolved against the negotiated protocol before a concrete
// hash can be built; that negotiation is out of this package's scope).
func New(a Algorithm) hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case MD4:
		return md4.New()
	case SHA1:
		return sha1.New()
	default:
		return nil
	}
}
