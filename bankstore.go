// Package bankstore is a core-banking persistence substrate: per-kind
// entity stores over one embedded pebble database, each fronted by a
// concurrency-safe secondary-index cache and backed by an append-only,
// version-keyed audit ledger.
package bankstore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/adorsys-gis/bankstore/utils"
	"github.com/cockroachdb/pebble"
)

type Options struct {
	Logger utils.Logger

	// Sync forces an fsync per committed batch.
	Sync bool

	// RowCacheSize bounds the per-store LRU of encoded entity rows
	// serving the read path.
	RowCacheSize int
}

func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
	if o.RowCacheSize == 0 {
		o.RowCacheSize = 10000
	}
}

// DB owns the pebble instance every store of one process shares.
// Construct with Open, hand to OpenStore per entity kind.
type DB struct {
	db   *pebble.DB
	dir  string
	log  utils.Logger
	wo   *pebble.WriteOptions
	opts Options
}

func Open(dir string, opts Options) (*DB, error) {
	opts.SetDefaults()
	pdb, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Join(bankstore_errors.ErrPersistenceFailure,
			fmt.Errorf("open %s: %w", dir, err))
	}
	return &DB{
		db:   pdb,
		dir:  dir,
		log:  opts.Logger,
		wo:   &pebble.WriteOptions{Sync: opts.Sync},
		opts: opts,
	}, nil
}

func (d *DB) Database() *pebble.DB               { return d.db }
func (d *DB) Dir() string                        { return d.dir }
func (d *DB) Logger() utils.Logger               { return d.log }
func (d *DB) WriteOptions() *pebble.WriteOptions { return d.wo }

func (d *DB) Close() error {
	if d.db == nil {
		return bankstore_errors.ErrClosed
	}
	err := d.db.Close()
	d.db = nil
	return err
}
