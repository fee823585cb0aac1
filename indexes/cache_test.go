package indexes

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyHash(t *testing.T) {
	assert.Equal(t, KeyHash("ext", "X-1"), KeyHash("ext", "X-1"))
	assert.NotEqual(t, KeyHash("ext", "X-1"), KeyHash("ext", "X-2"))
	// length prefixing keeps part boundaries significant
	assert.NotEqual(t, KeyHash("ab", "c"), KeyHash("a", "bc"))
}

func rec(id uuid.UUID, unique, multi uint64, ver uint16, hash int64) Record {
	return Record{
		ID:      id,
		Keys:    Keys{Unique: []uint64{unique}, Nonunique: []uint64{multi}},
		Version: ver,
		Hash:    hash,
	}
}

func TestCacheAddAndLookups(t *testing.T) {
	c := NewCache("test")
	a, b := uuid.New(), uuid.New()
	shared := KeyHash("locality", "L-1")

	require.NoError(t, c.Add(rec(a, KeyHash("ext", "A"), shared, 0, 11)))
	require.NoError(t, c.Add(rec(b, KeyHash("ext", "B"), shared, 0, 22)))
	assert.Equal(t, 2, c.Len())

	got, ok := c.GetByPrimary(a)
	require.True(t, ok)
	assert.Equal(t, int64(11), got.Hash)

	id, ok := c.GetByUnique(KeyHash("ext", "B"))
	require.True(t, ok)
	assert.Equal(t, b, id)

	_, ok = c.GetByUnique(KeyHash("ext", "C"))
	assert.False(t, ok)

	assert.Equal(t, []uuid.UUID{a, b}, c.GetByNonunique(shared))
	assert.True(t, c.Contains(a))
	assert.False(t, c.Contains(uuid.New()))
}

func TestCacheAddConflicts(t *testing.T) {
	c := NewCache("test")
	a := uuid.New()
	require.NoError(t, c.Add(rec(a, KeyHash("ext", "A"), KeyHash("loc", "1"), 0, 1)))

	err := c.Add(rec(a, KeyHash("ext", "A2"), KeyHash("loc", "1"), 0, 1))
	assert.Error(t, err)

	// a failed add must not leave partial secondary entries
	b := uuid.New()
	err = c.Add(rec(b, KeyHash("ext", "A"), KeyHash("loc", "2"), 0, 2))
	assert.Error(t, err)
	assert.False(t, c.Contains(b))
	assert.Nil(t, c.GetByNonunique(KeyHash("loc", "2")))

	id, ok := c.GetByUnique(KeyHash("ext", "A"))
	require.True(t, ok)
	assert.Equal(t, a, id)
	assert.Equal(t, 1, c.Len())
}

func TestCacheUpdateMovesKeys(t *testing.T) {
	c := NewCache("test")
	a := uuid.New()
	require.NoError(t, c.Add(rec(a, KeyHash("ext", "A"), KeyHash("loc", "1"), 0, 1)))

	require.NoError(t, c.Update(rec(a, KeyHash("ext", "A'"), KeyHash("loc", "2"), 1, 2)))

	_, ok := c.GetByUnique(KeyHash("ext", "A"))
	assert.False(t, ok)
	id, ok := c.GetByUnique(KeyHash("ext", "A'"))
	require.True(t, ok)
	assert.Equal(t, a, id)
	assert.Nil(t, c.GetByNonunique(KeyHash("loc", "1")))
	assert.Equal(t, []uuid.UUID{a}, c.GetByNonunique(KeyHash("loc", "2")))

	got, _ := c.GetByPrimary(a)
	assert.Equal(t, uint16(1), got.Version)

	err := c.Update(rec(uuid.New(), KeyHash("ext", "Z"), 0, 0, 0))
	assert.Error(t, err)
}

func TestCacheUpdateUniqueConflict(t *testing.T) {
	c := NewCache("test")
	a, b := uuid.New(), uuid.New()
	require.NoError(t, c.Add(rec(a, KeyHash("ext", "A"), KeyHash("loc", "1"), 0, 1)))
	require.NoError(t, c.Add(rec(b, KeyHash("ext", "B"), KeyHash("loc", "1"), 0, 2)))

	err := c.Update(rec(b, KeyHash("ext", "A"), KeyHash("loc", "1"), 1, 3))
	assert.Error(t, err)

	// conflict leaves b fully intact
	got, _ := c.GetByPrimary(b)
	assert.Equal(t, uint16(0), got.Version)
	id, _ := c.GetByUnique(KeyHash("ext", "B"))
	assert.Equal(t, b, id)
}

func TestCacheRemove(t *testing.T) {
	c := NewCache("test")
	a, b := uuid.New(), uuid.New()
	shared := KeyHash("loc", "1")
	require.NoError(t, c.Add(rec(a, KeyHash("ext", "A"), shared, 0, 1)))
	require.NoError(t, c.Add(rec(b, KeyHash("ext", "B"), shared, 0, 2)))

	removed, ok := c.Remove(a)
	require.True(t, ok)
	assert.Equal(t, a, removed.ID)
	assert.False(t, c.Contains(a))
	_, ok = c.GetByUnique(KeyHash("ext", "A"))
	assert.False(t, ok)
	assert.Equal(t, []uuid.UUID{b}, c.GetByNonunique(shared))

	_, ok = c.Remove(a)
	assert.False(t, ok)
}

func TestCacheNonuniqueCopy(t *testing.T) {
	c := NewCache("test")
	a := uuid.New()
	shared := KeyHash("loc", "1")
	require.NoError(t, c.Add(rec(a, KeyHash("ext", "A"), shared, 0, 1)))

	ids := c.GetByNonunique(shared)
	ids[0] = uuid.New()
	assert.Equal(t, []uuid.UUID{a}, c.GetByNonunique(shared))
}

func TestCacheConcurrentReadersAndWriters(t *testing.T) {
	c := NewCache("test")
	shared := KeyHash("loc", "shared")

	const writers = 8
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				id := uuid.New()
				assert.NoError(t, c.Add(rec(id, KeyHash("ext", fmt.Sprintf("%d-%d", w, i)), shared, 0, 1)))
				_, ok := c.GetByPrimary(id)
				assert.True(t, ok)
			}
		}(w)
	}

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				c.GetByNonunique(shared)
				c.Contains(uuid.New())
				c.Range(func(Record) bool { return true })
			}
		}()
	}
	wg.Wait()
	close(stop)
	readers.Wait()

	assert.Equal(t, writers*perWriter, c.Len())
	assert.Len(t, c.GetByNonunique(shared), writers*perWriter)
}

func TestCacheRange(t *testing.T) {
	c := NewCache("test")
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Add(rec(uuid.New(), uint64(i), uint64(100+i), 0, int64(i))))
	}
	seen := 0
	c.Range(func(Record) bool {
		seen++
		return true
	})
	assert.Equal(t, 5, seen)
}
