// Package entities declares the entity catalog of the store: the
// concrete kinds, their lifecycle classification, their enum codecs and
// their row/canonical encodings.
package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// Kind is the single-byte tag of an entity type, used in persisted keys.
type Kind byte

const (
	KindPerson      Kind = 'P'
	KindLocation    Kind = 'L'
	KindMessaging   Kind = 'M'
	KindReference   Kind = 'R'
	KindCountry     Kind = 'C'
	KindSubdivision Kind = 'S'
	KindLocality    Kind = 'Y'
	KindAccount     Kind = 'A'
)

var kindNames = map[Kind]string{
	KindPerson:      "person",
	KindLocation:    "location",
	KindMessaging:   "messaging",
	KindReference:   "entity_reference",
	KindCountry:     "country",
	KindSubdivision: "country_subdivision",
	KindLocality:    "locality",
	KindAccount:     "account",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Lifecycle classifies how a kind is versioned and audited.
type Lifecycle byte

const (
	// MutableVersioned entities change content under a monotonic
	// version counter with a full audit history.
	MutableVersioned Lifecycle = iota
	// ImmutableReference entities are catalog data: no version, no
	// audit, cache rebuilt on process start, appends only.
	ImmutableReference
	// ImmutableShared entities never change content after creation;
	// only the foreign key cached in their index row may be repointed.
	ImmutableShared
)

var lifecycles = map[Kind]Lifecycle{
	KindPerson:      MutableVersioned,
	KindReference:   MutableVersioned,
	KindAccount:     MutableVersioned,
	KindLocation:    ImmutableShared,
	KindMessaging:   ImmutableShared,
	KindCountry:     ImmutableReference,
	KindSubdivision: ImmutableReference,
	KindLocality:    ImmutableReference,
}

func (k Kind) Lifecycle() Lifecycle {
	return lifecycles[k]
}

// Entity is the store-facing contract of every entity type.
//
// AppendCanonical must be deterministic for identical logical content
// and must exclude the version counter plus any field documented as a
// repointable index key on the concrete type. EncodeRow carries the
// full current state, version included.
type Entity interface {
	Key() uuid.UUID
	Kind() Kind
	Version() uint16
	SetVersion(v uint16)
	IndexKeys() indexes.Keys
	AppendCanonical(buf []byte) []byte
	EncodeRow(buf []byte) ([]byte, error)
	DecodeRow(data []byte) error
}

// Ptr constrains a pointer-to-entity type parameter, the same shape the
// generic store instantiates with (*Person, *Account, ...).
type Ptr[T any] interface {
	*T
	Entity
}

// Versioned supplies the version counter accessors; entity types embed
// it. The counter tops out at 65535; the store rejects mutations that
// would pass the ceiling.
type Versioned struct {
	Ver uint16
}

func (v *Versioned) Version() uint16     { return v.Ver }
func (v *Versioned) SetVersion(n uint16) { v.Ver = n }
