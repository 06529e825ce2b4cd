// Package romset identifies supplied Kernal/BASIC/Chargen ROM images
// against a table of known checksums, the same advisory name lookup
// libsidplayfp's SystemROMBanks performs against an MD5 table built
// from known dumps. No MD5 reference table ships with this pack (it
// is derived from copyrighted ROM binaries we don't have), so this
// package keys its table on SHA-256 instead and seeds it only with the
// checksum of its own built-in fallback Kernal.
package romset

import (
	"crypto/sha256"

	"github.com/halfcycle/sidcore/internal/kernal"
)

// Kind distinguishes which ROM socket an image belongs to, purely for
// the descriptive name returned alongside a checksum match.
type Kind int

const (
	KindKernal Kind = iota
	KindBasic
	KindChargen
)

func (k Kind) String() string {
	switch k {
	case KindKernal:
		return "Kernal"
	case KindBasic:
		return "BASIC"
	case KindChargen:
		return "Chargen"
	default:
		return "unknown"
	}
}

// Entry names one recognized ROM dump.
type Entry struct {
	Name string
	Kind Kind
	Sum  [32]byte
}

var registry = map[[32]byte]Entry{}

func register(name string, kind Kind, data []byte) {
	sum := sha256.Sum256(data)
	registry[sum] = Entry{Name: name, Kind: kind, Sum: sum}
}

func init() {
	register("built-in minimal fallback", KindKernal, kernal.Fake())
}

// Register adds a known-good image's checksum under a descriptive
// name, so callers carrying real ROM dumps (not distributable with
// this module) can extend the table at startup.
func Register(name string, kind Kind, data []byte) { register(name, kind, data) }

// Identify looks up a supplied image's checksum in the table. The
// match is advisory only: an unrecognized image still plays, it is
// simply reported as unidentified.
func Identify(data []byte) (Entry, bool) {
	sum := sha256.Sum256(data)
	e, ok := registry[sum]
	return e, ok
}

// Checksum computes the identifying checksum for an arbitrary ROM
// image, exposed so callers can pre-register dumps without needing to
// import crypto/sha256 themselves.
func Checksum(data []byte) [32]byte { return sha256.Sum256(data) }
