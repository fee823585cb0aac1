package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// Location is a postal address. Immutable-Shared-Object: once created
// its content never changes; holders re-point to a new Location instead.
//
// LocalityID is the repointable foreign key cached in the index row. It
// is excluded from the canonical form, so correcting it rewrites the
// index without bumping a content version.
type Location struct {
	ID uuid.UUID
	Versioned
	Type       LocationType
	Line1      string
	Line2      string
	PostalCode string
	LocalityID uuid.UUID
}

func (l *Location) Key() uuid.UUID { return l.ID }
func (l *Location) Kind() Kind     { return KindLocation }

func (l *Location) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Nonunique: []uint64{indexes.KeyHash("location_locality", l.LocalityID.String())},
	}
}

func (l *Location) AppendCanonical(buf []byte) []byte {
	buf = appendOrdinal(buf, 'T', l.Type)
	buf = appendString(buf, 'S', l.Line1)
	buf = appendString(buf, 'S', l.Line2)
	buf = appendString(buf, 'S', l.PostalCode)
	return buf
}

func (l *Location) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', l.ID)
	buf = appendU16(buf, 'V', l.Ver)
	buf, err := appendEnum(buf, 'T', locationTypes, l.Type)
	if err != nil {
		return nil, err
	}
	buf = appendString(buf, 'S', l.Line1)
	buf = appendString(buf, 'S', l.Line2)
	buf = appendString(buf, 'S', l.PostalCode)
	buf = appendUUID(buf, 'I', l.LocalityID)
	return buf, nil
}

func (l *Location) DecodeRow(data []byte) error {
	r := newRowReader(data)
	l.ID = r.uuid('I')
	l.Ver = r.u16('V')
	l.Type = readEnum(r, 'T', locationTypes)
	l.Line1 = r.str('S')
	l.Line2 = r.str('S')
	l.PostalCode = r.str('S')
	l.LocalityID = r.uuid('I')
	return r.finish("location row")
}
