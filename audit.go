package bankstore

import (
	"context"
	"errors"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/adorsys-gis/bankstore/entities"
	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

// AuditRecord is one immutable row of an entity's history. The ledger
// answers "what did this entity look like at version N and who changed
// it"; current state always comes from the entity table and the cache.
type AuditRecord struct {
	ID         uuid.UUID
	Version    uint16
	Hash       int64
	AuditLogID uuid.UUID
	Snapshot   []byte
}

// Tombstone reports whether this row marks the entity's deletion.
func (a AuditRecord) Tombstone() bool {
	return a.Hash == TombstoneFingerprint
}

// DecodeSnapshot materializes the entity state captured by an audit row.
func DecodeSnapshot[T any, PT entities.Ptr[T]](rec AuditRecord) (PT, error) {
	var v T
	pt := PT(&v)
	if err := pt.DecodeRow(rec.Snapshot); err != nil {
		return nil, err
	}
	return pt, nil
}

// auditTrail reads every audit row of one id, in version order. The
// big-endian version suffix of the key makes key order version order;
// wall clocks are never consulted, two mutations may share a timestamp.
func auditTrail(ctx context.Context, db *DB, kind entities.Kind, id uuid.UUID) ([]AuditRecord, error) {
	if db.db == nil {
		return nil, bankstore_errors.ErrClosed
	}
	lo, hi := auditRange(kind, id)
	it, err := db.db.NewIter(&pebble.IterOptions{
		LowerBound: lo,
		UpperBound: hi,
	})
	if err != nil {
		return nil, errors.Join(bankstore_errors.ErrPersistenceFailure, err)
	}
	defer it.Close()

	var trail []AuditRecord
	for valid := it.First(); valid; valid = it.Next() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logID, hash, snapshot, err := decodeAuditRow(it.Value())
		if err != nil {
			db.log.ErrorCtx(ctx, "bad audit row", "kind", kind.String(), "id", id, "err", err)
			return nil, err
		}
		trail = append(trail, AuditRecord{
			ID:         id,
			Version:    AKeyVersion(it.Key()),
			Hash:       hash,
			AuditLogID: logID,
			Snapshot:   snapshot,
		})
	}
	return trail, nil
}
