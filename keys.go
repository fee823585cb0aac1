package bankstore

import (
	"encoding/binary"

	"github.com/adorsys-gis/bankstore/entities"
	"github.com/google/uuid"
)

// Three logical tables per kind, one key prefix each. The audit key
// ends in a big-endian version so a bounded iterator yields the trail
// in version order.
const (
	prefixEntity byte = 'E'
	prefixIndex  byte = 'X'
	prefixAudit  byte = 'A'
)

const entityKeyLen = 1 + 1 + 16
const auditKeyLen = entityKeyLen + 2

// EKey is the current-row key of an entity.
func EKey(kind entities.Kind, id uuid.UUID) []byte {
	key := make([]byte, 0, entityKeyLen)
	key = append(key, prefixEntity, byte(kind))
	return append(key, id[:]...)
}

// XKey is the index-row key of an entity.
func XKey(kind entities.Kind, id uuid.UUID) []byte {
	key := make([]byte, 0, entityKeyLen)
	key = append(key, prefixIndex, byte(kind))
	return append(key, id[:]...)
}

// AKey is the audit-row key of one version of an entity.
func AKey(kind entities.Kind, id uuid.UUID, version uint16) []byte {
	key := make([]byte, 0, auditKeyLen)
	key = append(key, prefixAudit, byte(kind))
	key = append(key, id[:]...)
	return binary.BigEndian.AppendUint16(key, version)
}

// AKeyVersion recovers the version from an audit key.
func AKeyVersion(key []byte) uint16 {
	if len(key) != auditKeyLen {
		return 0
	}
	return binary.BigEndian.Uint16(key[auditKeyLen-2:])
}

// kindRange bounds an iterator over every key of one table and kind.
// Kind bytes are letters, so kind+1 is a safe exclusive bound.
func kindRange(prefix byte, kind entities.Kind) (lo, hi []byte) {
	return []byte{prefix, byte(kind)}, []byte{prefix, byte(kind) + 1}
}

// auditRange bounds an iterator over the full audit trail of one id.
func auditRange(kind entities.Kind, id uuid.UUID) (lo, hi []byte) {
	lo = AKey(kind, id, 0)
	hi = append(AKey(kind, id, 0xffff), 0)
	return
}
