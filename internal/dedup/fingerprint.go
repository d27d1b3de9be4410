package dedup

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint computes a deterministic hash over the canonicalized inputs
// of a generation request. The kind participates in the hash, so identical
// inputs submitted to different pipelines deliberately never share a
// deduplication key.
//
// Canonicalization sorts the field names, so callers can build the map in
// any order and still get a stable key.
func Fingerprint(kind string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, _ := blake2b.New256(nil)
	h.Write([]byte(kind))
	h.Write([]byte{0})
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0x1f})
		h.Write([]byte(fields[k]))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
