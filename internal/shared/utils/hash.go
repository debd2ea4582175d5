package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	BLAKE2b256 HashAlgorithm = "blake2b-256"
	SHA256     HashAlgorithm = "sha256"
)

// Hasher produces hex digests of source text and response bodies
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a BLAKE2b-256 hasher
func DefaultHasher() *Hasher {
	return NewHasher(BLAKE2b256)
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

func (h *Hasher) new() hash.Hash {
	if h.algorithm == SHA256 {
		return sha256.New()
	}
	// unkeyed blake2b never errors
	d, _ := blake2b.New256(nil)
	return d
}

// Hash computes a hex digest of data
func (h *Hasher) Hash(data []byte) string {
	d := h.new()
	d.Write(data)
	return hex.EncodeToString(d.Sum(nil))
}

// HashString computes a hex digest of s
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashFields digests fields in order. Each field is length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func (h *Hasher) HashFields(fields ...string) string {
	d := h.new()
	var n [8]byte
	for _, f := range fields {
		l := uint64(len(f))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		d.Write(n[:])
		d.Write([]byte(f))
	}
	return hex.EncodeToString(d.Sum(nil))
}

// ETag returns a strong entity tag for a response body
func (h *Hasher) ETag(body []byte) string {
	return `"` + h.Hash(body)[:32] + `"`
}

// MatchETag reports whether an If-None-Match header value matches tag
func MatchETag(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}
