package bankstore

import (
	"github.com/adorsys-gis/bankstore/entities"
	"github.com/cespare/xxhash"
)

// Fingerprint reduces a canonical serialization to a 64-bit content
// hash. Zero is reserved for the deletion tombstone in the audit
// ledger, so a genuine zero hash maps to one.
//
// Fingerprints only decide whether a write changes anything; every
// comparison that matters also checks primary key and version, so a
// collision can cost an extra write or a skipped no-op, never data.
func Fingerprint(canonical []byte) int64 {
	h := int64(xxhash.Sum64(canonical))
	if h == 0 {
		h = 1
	}
	return h
}

// TombstoneFingerprint marks the terminal audit row of a deleted entity.
const TombstoneFingerprint int64 = 0

// EntityFingerprint hashes an entity's canonical form.
func EntityFingerprint(e entities.Entity) int64 {
	return Fingerprint(e.AppendCanonical(nil))
}
