package bankstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/adorsys-gis/bankstore/entities"
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Store is the batch CRUD orchestrator for one entity kind.
//
// Every batch operation pre-checks existence against the index cache
// before any persistence I/O, stages all row writes into a single
// pebble batch, and mutates the cache only after the batch commit
// confirmed. A failed commit therefore leaves the cache exactly as the
// backing store: unchanged.
//
// Two concurrent batches on disjoint ids proceed without contention.
// Two batches racing on the same id resolve at the pre-check; the
// store offers no per-id serializability beyond that, callers needing
// it serialize above.
type Store[T any, PT entities.Ptr[T]] struct {
	db    *DB
	kind  entities.Kind
	life  entities.Lifecycle
	cache *indexes.Cache

	// encoded-row LRU serving LoadBatch; entities are decoded per
	// call so callers always receive their own copy
	rows *lru.Cache[uuid.UUID, []byte]
}

// OpenStore builds the store for T and warms its index cache from a
// full scan of the persisted index table. The scan happens here, once,
// synchronously: the store is not handed out before the cache is
// complete, and the cache is never rebuilt afterwards.
func OpenStore[T any, PT entities.Ptr[T]](db *DB) (*Store[T, PT], error) {
	if db.db == nil {
		return nil, bankstore_errors.ErrClosed
	}
	var probe T
	kind := PT(&probe).Kind()
	rows, err := lru.New[uuid.UUID, []byte](db.opts.RowCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Store[T, PT]{
		db:    db,
		kind:  kind,
		life:  kind.Lifecycle(),
		cache: indexes.NewCache(kind.String()),
		rows:  rows,
	}
	if err := s.warm(); err != nil {
		return nil, err
	}
	db.log.Info("store ready", "kind", kind.String(), "records", s.cache.Len())
	return s, nil
}

func (s *Store[T, PT]) Kind() entities.Kind           { return s.kind }
func (s *Store[T, PT]) Lifecycle() entities.Lifecycle { return s.life }

func (s *Store[T, PT]) warm() error {
	lo, hi := kindRange(prefixIndex, s.kind)
	it, err := s.db.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return errors.Join(bankstore_errors.ErrPersistenceFailure, err)
	}
	defer it.Close()
	for valid := it.First(); valid; valid = it.Next() {
		rec, err := decodeIndexRow(it.Value())
		if err != nil {
			return err
		}
		if err := s.cache.Add(rec); err != nil {
			return err
		}
	}
	return nil
}

// CreateBatch persists items at version 0 with one audit row each
// (none for Immutable-Reference kinds). The whole batch fails, with
// nothing written, if any id is already live, repeats within the
// batch, or claims a unique key that is already taken.
func (s *Store[T, PT]) CreateBatch(ctx context.Context, items []PT, auditLogID uuid.UUID) ([]PT, error) {
	if len(items) == 0 {
		return nil, nil
	}
	start := time.Now()

	var present []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		id := item.Key()
		if _, dup := seen[id]; dup {
			present = append(present, id)
			continue
		}
		seen[id] = struct{}{}
		if s.cache.Contains(id) {
			present = append(present, id)
		}
	}
	if len(present) > 0 {
		StoreOps.WithLabelValues(s.kind.String(), "create", "precheck").Inc()
		return nil, idsErr(bankstore_errors.ErrAlreadyExists, present)
	}

	taken := make(map[uint64]uuid.UUID)
	for _, item := range items {
		for _, k := range item.IndexKeys().Unique {
			if id, ok := s.cache.GetByUnique(k); ok {
				StoreOps.WithLabelValues(s.kind.String(), "create", "duplicate_key").Inc()
				return nil, errors.Join(bankstore_errors.ErrDuplicateKey,
					fmt.Errorf("key %016x held by %s", k, id))
			}
			if prev, ok := taken[k]; ok {
				StoreOps.WithLabelValues(s.kind.String(), "create", "duplicate_key").Inc()
				return nil, errors.Join(bankstore_errors.ErrDuplicateKey,
					fmt.Errorf("key %016x claimed by both %s and %s", k, prev, item.Key()))
			}
			taken[k] = item.Key()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := s.db.db.NewBatch()
	defer batch.Close()
	recs := make([]indexes.Record, len(items))
	rowBytes := make([][]byte, len(items))
	for i, item := range items {
		item.SetVersion(0)
		fp := Fingerprint(item.AppendCanonical(nil))
		row, err := item.EncodeRow(nil)
		if err != nil {
			StoreOps.WithLabelValues(s.kind.String(), "create", "encode_error").Inc()
			return nil, errors.Join(bankstore_errors.ErrSerializationFailure, err)
		}
		id := item.Key()
		rec := indexes.Record{ID: id, Keys: item.IndexKeys(), Version: 0, Hash: fp}
		_ = batch.Set(EKey(s.kind, id), row, nil)
		_ = batch.Set(XKey(s.kind, id), encodeIndexRow(rec), nil)
		if s.life != entities.ImmutableReference {
			_ = batch.Set(AKey(s.kind, id, 0), encodeAuditRow(auditLogID, fp, row), nil)
		}
		recs[i] = rec
		rowBytes[i] = row
	}
	if err := batch.Commit(s.db.wo); err != nil {
		StoreOps.WithLabelValues(s.kind.String(), "create", "io_error").Inc()
		return nil, errors.Join(bankstore_errors.ErrPersistenceFailure, err)
	}

	for i := range recs {
		if err := s.cache.Add(recs[i]); err != nil {
			// lost the residual race to a concurrent writer between
			// pre-check and commit; rows are written, surface it
			s.db.log.ErrorCtx(ctx, "cache add after commit failed",
				"kind", s.kind.String(), "id", recs[i].ID, "err", err)
			return nil, err
		}
		s.rows.Add(recs[i].ID, rowBytes[i])
	}
	StoreOps.WithLabelValues(s.kind.String(), "create", "ok").Inc()
	StoreBatchDuration.WithLabelValues(s.kind.String(), "create").
		Observe(float64(time.Since(start).Milliseconds()))
	return items, nil
}

// maxVersion is the version counter ceiling; a mutation that would pass
// it is rejected, since the next audit key would wrap onto version 0.
const maxVersion = ^uint16(0)

type updatePlan struct {
	idx     int
	rec     indexes.Record
	row     []byte
	repoint bool
}

// UpdateBatch replaces the content of existing entities. An id may
// appear at most once per batch; conflicting instructions for the same
// row fail the batch rather than last-write-wins inside it. Items whose
// fingerprint and index keys match the cache are dropped from the
// write set and returned as-is at their cached version. Changed items
// advance by exactly one version with one audit row. For
// Immutable-Shared-Object kinds only the repointable index key may
// differ; the index row is rewritten with no version bump and no audit
// row. Immutable-Reference kinds reject updates.
func (s *Store[T, PT]) UpdateBatch(ctx context.Context, items []PT, auditLogID uuid.UUID) ([]PT, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if s.life == entities.ImmutableReference {
		return nil, errors.Join(bankstore_errors.ErrImmutableKind,
			fmt.Errorf("kind %s", s.kind))
	}
	start := time.Now()

	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		id := item.Key()
		if _, dup := seen[id]; dup {
			StoreOps.WithLabelValues(s.kind.String(), "update", "precheck").Inc()
			return nil, idsErr(bankstore_errors.ErrRepeatedID, []uuid.UUID{id})
		}
		seen[id] = struct{}{}
		if !s.cache.Contains(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		StoreOps.WithLabelValues(s.kind.String(), "update", "precheck").Inc()
		return nil, idsErr(bankstore_errors.ErrNotFound, missing)
	}

	var plans []updatePlan
	for i, item := range items {
		id := item.Key()
		cached, _ := s.cache.GetByPrimary(id)
		fp := Fingerprint(item.AppendCanonical(nil))
		keys := item.IndexKeys()

		if fp == cached.Hash && keysEqual(keys, cached.Keys) {
			// idempotent no-op: no version bump, no audit row
			item.SetVersion(cached.Version)
			StoreNoopSkips.WithLabelValues(s.kind.String()).Inc()
			continue
		}
		if fp == cached.Hash {
			// content unchanged, index key repointed
			item.SetVersion(cached.Version)
			row, err := item.EncodeRow(nil)
			if err != nil {
				StoreOps.WithLabelValues(s.kind.String(), "update", "encode_error").Inc()
				return nil, errors.Join(bankstore_errors.ErrSerializationFailure, err)
			}
			plans = append(plans, updatePlan{
				idx:     i,
				rec:     indexes.Record{ID: id, Keys: keys, Version: cached.Version, Hash: cached.Hash},
				row:     row,
				repoint: true,
			})
			continue
		}
		if s.life == entities.ImmutableShared {
			StoreOps.WithLabelValues(s.kind.String(), "update", "immutable").Inc()
			return nil, errors.Join(bankstore_errors.ErrImmutableContent,
				fmt.Errorf("kind %s, id %s", s.kind, id))
		}
		if cached.Version == maxVersion {
			StoreOps.WithLabelValues(s.kind.String(), "update", "overflow").Inc()
			return nil, errors.Join(bankstore_errors.ErrVersionOverflow,
				fmt.Errorf("id %s at version %d", id, cached.Version))
		}
		item.SetVersion(cached.Version + 1)
		row, err := item.EncodeRow(nil)
		if err != nil {
			StoreOps.WithLabelValues(s.kind.String(), "update", "encode_error").Inc()
			return nil, errors.Join(bankstore_errors.ErrSerializationFailure, err)
		}
		plans = append(plans, updatePlan{
			idx: i,
			rec: indexes.Record{ID: id, Keys: keys, Version: cached.Version + 1, Hash: fp},
			row: row,
		})
	}
	if len(plans) == 0 {
		StoreOps.WithLabelValues(s.kind.String(), "update", "noop").Inc()
		return items, nil
	}

	// unique-key conflicts are rejected before any I/O
	taken := make(map[uint64]uuid.UUID)
	for _, p := range plans {
		for _, k := range p.rec.Keys.Unique {
			if id, ok := s.cache.GetByUnique(k); ok && id != p.rec.ID {
				StoreOps.WithLabelValues(s.kind.String(), "update", "duplicate_key").Inc()
				return nil, errors.Join(bankstore_errors.ErrDuplicateKey,
					fmt.Errorf("key %016x held by %s, wanted by %s", k, id, p.rec.ID))
			}
			if prev, ok := taken[k]; ok && prev != p.rec.ID {
				StoreOps.WithLabelValues(s.kind.String(), "update", "duplicate_key").Inc()
				return nil, errors.Join(bankstore_errors.ErrDuplicateKey,
					fmt.Errorf("key %016x claimed by both %s and %s", k, prev, p.rec.ID))
			}
			taken[k] = p.rec.ID
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := s.db.db.NewBatch()
	defer batch.Close()
	for _, p := range plans {
		_ = batch.Set(EKey(s.kind, p.rec.ID), p.row, nil)
		_ = batch.Set(XKey(s.kind, p.rec.ID), encodeIndexRow(p.rec), nil)
		if !p.repoint {
			_ = batch.Set(AKey(s.kind, p.rec.ID, p.rec.Version),
				encodeAuditRow(auditLogID, p.rec.Hash, p.row), nil)
		}
	}
	if err := batch.Commit(s.db.wo); err != nil {
		StoreOps.WithLabelValues(s.kind.String(), "update", "io_error").Inc()
		return nil, errors.Join(bankstore_errors.ErrPersistenceFailure, err)
	}

	for _, p := range plans {
		if err := s.cache.Update(p.rec); err != nil {
			s.db.log.ErrorCtx(ctx, "cache update after commit failed",
				"kind", s.kind.String(), "id", p.rec.ID, "err", err)
			return nil, err
		}
		s.rows.Add(p.rec.ID, p.row)
	}
	StoreOps.WithLabelValues(s.kind.String(), "update", "ok").Inc()
	StoreBatchDuration.WithLabelValues(s.kind.String(), "update").
		Observe(float64(time.Since(start).Milliseconds()))
	return items, nil
}

// DeleteBatch removes entities after appending a terminal audit row
// per id: fingerprint 0, snapshot of the last live row, version one
// past the last content version so the ledger key stays unique and the
// history gapless. Returns the count removed. Immutable-Reference
// kinds reject deletes.
func (s *Store[T, PT]) DeleteBatch(ctx context.Context, ids []uuid.UUID, auditLogID uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if s.life == entities.ImmutableReference {
		return 0, errors.Join(bankstore_errors.ErrImmutableKind,
			fmt.Errorf("kind %s", s.kind))
	}
	start := time.Now()

	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			StoreOps.WithLabelValues(s.kind.String(), "delete", "precheck").Inc()
			return 0, idsErr(bankstore_errors.ErrRepeatedID, []uuid.UUID{id})
		}
		seen[id] = struct{}{}
		if !s.cache.Contains(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		StoreOps.WithLabelValues(s.kind.String(), "delete", "precheck").Inc()
		return 0, idsErr(bankstore_errors.ErrNotFound, missing)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	batch := s.db.db.NewBatch()
	defer batch.Close()
	for _, id := range ids {
		cached, _ := s.cache.GetByPrimary(id)
		if cached.Version == maxVersion {
			StoreOps.WithLabelValues(s.kind.String(), "delete", "overflow").Inc()
			return 0, errors.Join(bankstore_errors.ErrVersionOverflow,
				fmt.Errorf("id %s at version %d", id, cached.Version))
		}
		row, err := s.getRow(id)
		if err != nil {
			StoreOps.WithLabelValues(s.kind.String(), "delete", "io_error").Inc()
			return 0, err
		}
		_ = batch.Set(AKey(s.kind, id, cached.Version+1),
			encodeAuditRow(auditLogID, TombstoneFingerprint, row), nil)
		_ = batch.Delete(XKey(s.kind, id), nil)
		_ = batch.Delete(EKey(s.kind, id), nil)
	}
	if err := batch.Commit(s.db.wo); err != nil {
		StoreOps.WithLabelValues(s.kind.String(), "delete", "io_error").Inc()
		return 0, errors.Join(bankstore_errors.ErrPersistenceFailure, err)
	}

	removed := 0
	for _, id := range ids {
		if _, ok := s.cache.Remove(id); ok {
			removed++
		}
		s.rows.Remove(id)
	}
	StoreOps.WithLabelValues(s.kind.String(), "delete", "ok").Inc()
	StoreBatchDuration.WithLabelValues(s.kind.String(), "delete").
		Observe(float64(time.Since(start).Milliseconds()))
	return removed, nil
}

// LoadBatch reads entities in request order; an id with no live row
// yields nil at its position rather than shortening the result. Each
// call decodes fresh values, so callers own what they get.
func (s *Store[T, PT]) LoadBatch(ctx context.Context, ids []uuid.UUID) ([]PT, error) {
	out := make([]PT, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := s.getRow(id)
		if errors.Is(err, bankstore_errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var v T
		pt := PT(&v)
		if err := pt.DecodeRow(row); err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}

// getRow returns the encoded current row of id, read through the LRU.
func (s *Store[T, PT]) getRow(id uuid.UUID) ([]byte, error) {
	if row, ok := s.rows.Get(id); ok {
		return row, nil
	}
	val, closer, err := s.db.db.Get(EKey(s.kind, id))
	if err == pebble.ErrNotFound {
		return nil, errors.Join(bankstore_errors.ErrNotFound, fmt.Errorf("id %s", id))
	}
	if err != nil {
		return nil, errors.Join(bankstore_errors.ErrPersistenceFailure, err)
	}
	row := make([]byte, len(val))
	copy(row, val)
	_ = closer.Close()
	s.rows.Add(id, row)
	return row, nil
}

// AuditTrail returns the full history of id in version order; empty
// for ids never created and for Immutable-Reference kinds.
func (s *Store[T, PT]) AuditTrail(ctx context.Context, id uuid.UUID) ([]AuditRecord, error) {
	return auditTrail(ctx, s.db, s.kind, id)
}

// FindByUniqueKey resolves a unique secondary key (see the key builder
// funcs in package entities) to the owning id.
func (s *Store[T, PT]) FindByUniqueKey(key uint64) (uuid.UUID, bool) {
	return s.cache.GetByUnique(key)
}

// FindIDsByNonuniqueKey lists ids under a non-unique secondary key in
// insertion order.
func (s *Store[T, PT]) FindIDsByNonuniqueKey(key uint64) []uuid.UUID {
	return s.cache.GetByNonunique(key)
}

func (s *Store[T, PT]) ExistsByID(id uuid.UUID) bool {
	return s.cache.Contains(id)
}

// ExistsByIDs reports liveness position by position.
func (s *Store[T, PT]) ExistsByIDs(ids []uuid.UUID) []bool {
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = s.cache.Contains(id)
	}
	return out
}

// IndexRecord exposes the cached index record of id, mainly for
// cache/store agreement checks.
func (s *Store[T, PT]) IndexRecord(id uuid.UUID) (indexes.Record, bool) {
	return s.cache.GetByPrimary(id)
}

func (s *Store[T, PT]) Len() int {
	return s.cache.Len()
}

func keysEqual(a, b indexes.Keys) bool {
	if len(a.Unique) != len(b.Unique) || len(a.Nonunique) != len(b.Nonunique) {
		return false
	}
	for i := range a.Unique {
		if a.Unique[i] != b.Unique[i] {
			return false
		}
	}
	for i := range a.Nonunique {
		if a.Nonunique[i] != b.Nonunique[i] {
			return false
		}
	}
	return true
}

func idsErr(sentinel error, ids []uuid.UUID) error {
	return errors.Join(sentinel, fmt.Errorf("ids %v", ids))
}
