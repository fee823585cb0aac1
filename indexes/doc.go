/*
Package indexes implements the in-memory secondary-index cache that
fronts every entity store.

One Cache exists per entity kind. It maps the primary key (UUID) to a
compact index record holding the entity's secondary lookup keys, its
current version and its current content fingerprint. Secondary keys are
stored as 64-bit hashes (see KeyHash), which bounds memory and keeps
externally identifying strings out of the cache.

Reads are lock-free: the three underlying maps are xsync.MapOf
instances, so lookups never block on writers, for related and unrelated
keys alike. Mutations serialize on a cache-local mutex and are
all-or-nothing: a unique-key conflict is detected before any map is
touched, so a failed Add or Update leaves the cache exactly as it was.

The cache is built once, from a full scan of the persisted index table,
before the owning store accepts calls. After that it is only mutated
incrementally, never rebuilt: a rebuild would race concurrent writers
and briefly serve stale unique-key lookups.
*/
package indexes
