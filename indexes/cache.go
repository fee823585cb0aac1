package indexes

import (
	"errors"
	"fmt"
	"sync"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/cespare/xxhash"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
)

var CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bankstore",
	Subsystem: "index_cache",
	Name:      "lookups",
}, []string{"kind", "lookup", "result"})

var CacheRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "bankstore",
	Subsystem: "index_cache",
	Name:      "records",
}, []string{"kind"})

var CacheMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bankstore",
	Subsystem: "index_cache",
	Name:      "mutations",
}, []string{"kind", "op", "result"})

// Keys are the hashed secondary lookup keys of one entity.
// Nonunique keys preserve the order the entity declared them in.
type Keys struct {
	Unique    []uint64
	Nonunique []uint64
}

// Record is the cached index entry of one live entity; it is the unit
// of cache mutation.
type Record struct {
	ID      uuid.UUID
	Keys    Keys
	Version uint16
	Hash    int64
}

// KeyHash reduces a secondary key to 64 bits. Parts are length-prefixed
// before hashing so ("ab","c") and ("a","bc") hash differently.
func KeyHash(parts ...string) uint64 {
	d := xxhash.New()
	var lenbuf [4]byte
	for _, p := range parts {
		lenbuf[0] = byte(len(p) >> 24)
		lenbuf[1] = byte(len(p) >> 16)
		lenbuf[2] = byte(len(p) >> 8)
		lenbuf[3] = byte(len(p))
		_, _ = d.Write(lenbuf[:])
		_, _ = d.Write([]byte(p))
	}
	return d.Sum64()
}

type Cache struct {
	kind string

	byID   *xsync.MapOf[uuid.UUID, Record]
	unique *xsync.MapOf[uint64, uuid.UUID]
	multi  *xsync.MapOf[uint64, []uuid.UUID]

	// serializes mutations only; readers go through xsync directly
	wlock sync.Mutex
}

func NewCache(kind string) *Cache {
	return &Cache{
		kind:   kind,
		byID:   xsync.NewMapOf[uuid.UUID, Record](),
		unique: xsync.NewMapOf[uint64, uuid.UUID](),
		multi:  xsync.NewMapOf[uint64, []uuid.UUID](),
	}
}

func (c *Cache) GetByPrimary(id uuid.UUID) (Record, bool) {
	rec, ok := c.byID.Load(id)
	CacheLookups.WithLabelValues(c.kind, "primary", result(ok)).Inc()
	return rec, ok
}

func (c *Cache) GetByUnique(key uint64) (uuid.UUID, bool) {
	id, ok := c.unique.Load(key)
	CacheLookups.WithLabelValues(c.kind, "unique", result(ok)).Inc()
	return id, ok
}

// GetByNonunique returns the ids registered under key in insertion
// order. The returned slice is the caller's to keep.
func (c *Cache) GetByNonunique(key uint64) []uuid.UUID {
	ids, ok := c.multi.Load(key)
	CacheLookups.WithLabelValues(c.kind, "nonunique", result(ok)).Inc()
	if !ok {
		return nil
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func (c *Cache) Contains(id uuid.UUID) bool {
	_, ok := c.byID.Load(id)
	return ok
}

func (c *Cache) Len() int {
	return c.byID.Size()
}

func (c *Cache) Range(f func(rec Record) bool) {
	c.byID.Range(func(_ uuid.UUID, rec Record) bool {
		return f(rec)
	})
}

// Add registers a new record. Fails without touching any map if the id
// is already present or any unique key belongs to another id.
func (c *Cache) Add(rec Record) error {
	c.wlock.Lock()
	defer c.wlock.Unlock()

	if _, ok := c.byID.Load(rec.ID); ok {
		CacheMutations.WithLabelValues(c.kind, "add", "exists").Inc()
		return errors.Join(bankstore_errors.ErrAlreadyExists, fmt.Errorf("id %s", rec.ID))
	}
	if err := c.uniqueFree(rec.Keys.Unique, rec.ID); err != nil {
		CacheMutations.WithLabelValues(c.kind, "add", "duplicate_key").Inc()
		return err
	}

	for _, k := range rec.Keys.Unique {
		c.unique.Store(k, rec.ID)
	}
	for _, k := range rec.Keys.Nonunique {
		c.multiAdd(k, rec.ID)
	}
	c.byID.Store(rec.ID, rec)
	CacheMutations.WithLabelValues(c.kind, "add", "ok").Inc()
	CacheRecords.WithLabelValues(c.kind).Set(float64(c.byID.Size()))
	return nil
}

// Update replaces the record of an existing id, keeping every secondary
// map consistent with the new keys. All-or-nothing.
func (c *Cache) Update(rec Record) error {
	c.wlock.Lock()
	defer c.wlock.Unlock()

	old, ok := c.byID.Load(rec.ID)
	if !ok {
		CacheMutations.WithLabelValues(c.kind, "update", "missing").Inc()
		return errors.Join(bankstore_errors.ErrNotFound, fmt.Errorf("id %s", rec.ID))
	}
	if err := c.uniqueFree(rec.Keys.Unique, rec.ID); err != nil {
		CacheMutations.WithLabelValues(c.kind, "update", "duplicate_key").Inc()
		return err
	}

	for _, k := range old.Keys.Unique {
		if !containsKey(rec.Keys.Unique, k) {
			c.unique.Delete(k)
		}
	}
	for _, k := range rec.Keys.Unique {
		c.unique.Store(k, rec.ID)
	}
	for _, k := range old.Keys.Nonunique {
		if !containsKey(rec.Keys.Nonunique, k) {
			c.multiRemove(k, rec.ID)
		}
	}
	for _, k := range rec.Keys.Nonunique {
		if !containsKey(old.Keys.Nonunique, k) {
			c.multiAdd(k, rec.ID)
		}
	}
	c.byID.Store(rec.ID, rec)
	CacheMutations.WithLabelValues(c.kind, "update", "ok").Inc()
	return nil
}

// Remove drops the record and all its secondary entries. Returns the
// removed record, or ok=false if the id was not cached.
func (c *Cache) Remove(id uuid.UUID) (Record, bool) {
	c.wlock.Lock()
	defer c.wlock.Unlock()

	rec, ok := c.byID.Load(id)
	if !ok {
		CacheMutations.WithLabelValues(c.kind, "remove", "missing").Inc()
		return Record{}, false
	}
	for _, k := range rec.Keys.Unique {
		if cur, ok := c.unique.Load(k); ok && cur == id {
			c.unique.Delete(k)
		}
	}
	for _, k := range rec.Keys.Nonunique {
		c.multiRemove(k, id)
	}
	c.byID.Delete(id)
	CacheMutations.WithLabelValues(c.kind, "remove", "ok").Inc()
	CacheRecords.WithLabelValues(c.kind).Set(float64(c.byID.Size()))
	return rec, true
}

// uniqueFree reports a conflict if any key maps to an id other than
// self. Called under wlock before any map is mutated.
func (c *Cache) uniqueFree(keys []uint64, self uuid.UUID) error {
	for _, k := range keys {
		if cur, ok := c.unique.Load(k); ok && cur != self {
			return errors.Join(bankstore_errors.ErrDuplicateKey,
				fmt.Errorf("key %016x held by %s, wanted by %s", k, cur, self))
		}
	}
	return nil
}

// multi lists are copy-on-write so concurrent readers never observe a
// partially edited slice.
func (c *Cache) multiAdd(key uint64, id uuid.UUID) {
	old, _ := c.multi.Load(key)
	next := make([]uuid.UUID, 0, len(old)+1)
	next = append(next, old...)
	next = append(next, id)
	c.multi.Store(key, next)
}

func (c *Cache) multiRemove(key uint64, id uuid.UUID) {
	old, ok := c.multi.Load(key)
	if !ok {
		return
	}
	next := make([]uuid.UUID, 0, len(old))
	for _, v := range old {
		if v != id {
			next = append(next, v)
		}
	}
	if len(next) == 0 {
		c.multi.Delete(key)
	} else {
		c.multi.Store(key, next)
	}
}

func containsKey(keys []uint64, k uint64) bool {
	for _, v := range keys {
		if v == k {
			return true
		}
	}
	return false
}

func result(ok bool) string {
	if ok {
		return "hit"
	}
	return "miss"
}
