package bankstore

import (
	"encoding/binary"
	"errors"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/adorsys-gis/bankstore/tlv"
	"github.com/google/uuid"
)

// Index row value: 'I' id, 'V' version, 'H' fingerprint, 'U' unique
// keys (8 bytes each, concatenated), 'N' non-unique keys likewise.

func encodeIndexRow(rec indexes.Record) []byte {
	var ver [2]byte
	binary.BigEndian.PutUint16(ver[:], rec.Version)
	var hash [8]byte
	binary.BigEndian.PutUint64(hash[:], uint64(rec.Hash))

	buf := tlv.Append(nil, 'I', rec.ID[:])
	buf = tlv.Append(buf, 'V', ver[:])
	buf = tlv.Append(buf, 'H', hash[:])
	buf = tlv.Append(buf, 'U', packKeys(rec.Keys.Unique))
	buf = tlv.Append(buf, 'N', packKeys(rec.Keys.Nonunique))
	return buf
}

func decodeIndexRow(data []byte) (rec indexes.Record, err error) {
	fields := [5]struct {
		lit  byte
		want int // -1 for variable length
	}{
		{'I', 16}, {'V', 2}, {'H', 8}, {'U', -1}, {'N', -1},
	}
	bodies := [5][]byte{}
	rest := data
	for i, f := range fields {
		var body []byte
		body, rest, err = tlv.TakeWary(f.lit, rest)
		if err != nil {
			return rec, errors.Join(bankstore_errors.ErrBadRow, err)
		}
		if f.want >= 0 && len(body) != f.want {
			return rec, bankstore_errors.ErrBadRow
		}
		bodies[i] = body
	}
	copy(rec.ID[:], bodies[0])
	rec.Version = binary.BigEndian.Uint16(bodies[1])
	rec.Hash = int64(binary.BigEndian.Uint64(bodies[2]))
	if rec.Keys.Unique, err = unpackKeys(bodies[3]); err != nil {
		return rec, err
	}
	rec.Keys.Nonunique, err = unpackKeys(bodies[4])
	return rec, err
}

func packKeys(keys []uint64) []byte {
	buf := make([]byte, 0, len(keys)*8)
	for _, k := range keys {
		buf = binary.BigEndian.AppendUint64(buf, k)
	}
	return buf
}

func unpackKeys(body []byte) ([]uint64, error) {
	if len(body)%8 != 0 {
		return nil, bankstore_errors.ErrBadRow
	}
	if len(body) == 0 {
		return nil, nil
	}
	keys := make([]uint64, 0, len(body)/8)
	for off := 0; off < len(body); off += 8 {
		keys = append(keys, binary.BigEndian.Uint64(body[off:off+8]))
	}
	return keys, nil
}

// Audit row value: 'G' audit log id, 'H' fingerprint, 'B' full row
// snapshot. The snapshot of a tombstone is the last live row.

func encodeAuditRow(auditLogID uuid.UUID, hash int64, snapshot []byte) []byte {
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], uint64(hash))
	buf := tlv.Append(nil, 'G', auditLogID[:])
	buf = tlv.Append(buf, 'H', h[:])
	buf = tlv.Append(buf, 'B', snapshot)
	return buf
}

func decodeAuditRow(data []byte) (auditLogID uuid.UUID, hash int64, snapshot []byte, err error) {
	body, rest, err := tlv.TakeWary('G', data)
	if err != nil || len(body) != 16 {
		return auditLogID, 0, nil, errors.Join(bankstore_errors.ErrBadRow, err)
	}
	copy(auditLogID[:], body)
	body, rest, err = tlv.TakeWary('H', rest)
	if err != nil || len(body) != 8 {
		return auditLogID, 0, nil, errors.Join(bankstore_errors.ErrBadRow, err)
	}
	hash = int64(binary.BigEndian.Uint64(body))
	body, _, err = tlv.TakeWary('B', rest)
	if err != nil {
		return auditLogID, 0, nil, errors.Join(bankstore_errors.ErrBadRow, err)
	}
	snapshot = make([]byte, len(body))
	copy(snapshot, body)
	return auditLogID, hash, snapshot, nil
}
