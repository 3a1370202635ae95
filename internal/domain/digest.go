// Package domain defines the core value types of the agent version control
// system: content digests, AgentSpec/CIRunSpec identities, runs, events,
// releases, and the error taxonomy that every other package in this module
// builds on.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// digestSize is the length in bytes of a SHA-256 digest.
const digestSize = sha256.Size

// Digest is a 32-byte SHA-256 hash, displayed as 64 lowercase hex
// characters. The only construction paths are Compute and ParseDigest.
type Digest struct {
	bytes [digestSize]byte
}

// Compute returns the Digest of b.
func Compute(b []byte) Digest {
	return Digest{bytes: sha256.Sum256(b)}
}

// ParseDigest parses a 64-character lowercase hex string into a Digest.
func ParseDigest(hexStr string) (Digest, error) {
	if !IsValidHexDigest(hexStr) {
		return Digest{}, &InvalidDigestError{Hex: hexStr}
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return Digest{}, &InvalidDigestError{Hex: hexStr}
	}
	var d Digest
	copy(d.bytes[:], raw)
	return d, nil
}

// IsValidHexDigest reports whether s is exactly 64 lowercase hex characters.
func IsValidHexDigest(s string) bool {
	if len(s) != digestSize*2 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// String renders the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d.bytes[:])
}

// Bytes returns the raw 32 digest bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, digestSize)
	copy(out, d.bytes[:])
	return out
}

// IsZero reports whether d is the zero-value digest (never a valid
// construction result, useful as an "absent" sentinel in call sites that
// need one).
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// CanonicalDigest computes the digest of v's RFC-8785-equivalent canonical
// JSON encoding: object keys sorted lexicographically at every nesting
// level, no insignificant whitespace, UTF-8 bytes. Every digest-producing
// function in this system must route through this function so identical
// inputs yield identical digests across processes.
func CanonicalDigest(v any) (Digest, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Digest{}, fmt.Errorf("canonical digest: marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Digest{}, fmt.Errorf("canonical digest: unmarshal: %w", err)
	}
	canon, err := canonicalize(generic)
	if err != nil {
		return Digest{}, err
	}
	return Compute(canon), nil
}

// canonicalize produces deterministic, sorted-key JSON bytes for v, which
// must be a value produced by json.Unmarshal into `any` (so maps are
// map[string]any, arrays are []any, numbers are float64/json.Number).
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyBytes...)
			buf = append(buf, ':')
			childBytes, err := canonicalize(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, childBytes...)
		}
		buf = append(buf, '}')
		return buf, nil
	case []any:
		buf := []byte{'['}
		for i, elem := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			childBytes, err := canonicalize(elem)
			if err != nil {
				return nil, err
			}
			buf = append(buf, childBytes...)
		}
		buf = append(buf, ']')
		return buf, nil
	default:
		// Scalars (string, float64, bool, nil) already serialise
		// deterministically via encoding/json.
		return json.Marshal(val)
	}
}
