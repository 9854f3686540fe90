// Package pow provides the hashing support for the mining contest. A candidate
// string is hashed and the hex digest must start with a difficulty number of
// 0's for the candidate to be considered a solution.
package pow

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Set of supported hash algorithms.
const (
	SHA1      = "sha1"
	SHA256    = "sha256"
	Keccak256 = "keccak256"
)

// ErrUnknownAlgorithm is returned when an oracle is requested for a hash
// algorithm that isn't supported.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// algorithms maps the algorithm name to the function producing the raw hash.
var algorithms = map[string]func(data []byte) []byte{
	SHA1: func(data []byte) []byte {
		h := sha1.Sum(data)
		return h[:]
	},
	SHA256: func(data []byte) []byte {
		h := sha256.Sum256(data)
		return h[:]
	},
	Keccak256: func(data []byte) []byte {
		return crypto.Keccak256(data)
	},
}

// =============================================================================

// Oracle hashes candidates and decides if they solve a puzzle. The zero value
// is not usable, construct one with New.
type Oracle struct {
	name string
	sum  func(data []byte) []byte
}

// Default is the oracle used by the contest unless configured otherwise.
var Default = MustNew(SHA1)

// New constructs an oracle for the specified hash algorithm. An empty name
// selects SHA1.
func New(name string) (Oracle, error) {
	if name == "" {
		name = SHA1
	}

	name = strings.ToLower(name)
	sum, exists := algorithms[name]
	if !exists {
		return Oracle{}, fmt.Errorf("%q: %w", name, ErrUnknownAlgorithm)
	}

	return Oracle{name: name, sum: sum}, nil
}

// MustNew is like New but panics when the algorithm isn't supported.
func MustNew(name string) Oracle {
	o, err := New(name)
	if err != nil {
		panic(err)
	}
	return o
}

// Algorithm returns the name of the hash algorithm in use.
func (o Oracle) Algorithm() string {
	return o.name
}

// Size returns the number of hex characters in a digest.
func (o Oracle) Size() int {
	return len(o.sum(nil)) * 2
}

// Digest returns the lower case hex encoded hash of the candidate.
func (o Oracle) Digest(candidate string) string {
	return hex.EncodeToString(o.sum([]byte(candidate)))
}

// MeetsDifficulty reports whether the digest of the candidate starts with
// difficulty 0's. A difficulty of zero or less is always met.
func (o Oracle) MeetsDifficulty(candidate string, difficulty int) bool {
	return IsSolved(difficulty, o.Digest(candidate))
}

// =============================================================================

// Digest hashes the candidate with the default oracle.
func Digest(candidate string) string {
	return Default.Digest(candidate)
}

// MeetsDifficulty checks the candidate with the default oracle.
func MeetsDifficulty(candidate string, difficulty int) bool {
	return Default.MeetsDifficulty(candidate, difficulty)
}

// IsSolved checks the digest to make sure it complies with the POW rules. We
// need to match a difficulty number of 0's.
func IsSolved(difficulty int, digest string) bool {
	if difficulty <= 0 {
		return true
	}

	if difficulty > len(digest) {
		return false
	}

	return LeadingZeros(digest) >= difficulty
}

// LeadingZeros counts the number of '0' characters the digest starts with.
func LeadingZeros(digest string) int {
	for i := 0; i < len(digest); i++ {
		if digest[i] != '0' {
			return i
		}
	}
	return len(digest)
}
