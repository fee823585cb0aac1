package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// Geographic reference catalog: Country, CountrySubdivision, Locality.
// All three are Immutable-Reference kinds: no audit trail, version
// pinned at 0, caches rebuilt wholesale at process start and only ever
// appended to. A restart picks up catalog changes.

// Country keys its unique index on the ISO 3166-1 alpha-2 code.
type Country struct {
	ID uuid.UUID
	Versioned
	ISO2 string
	Name string
}

func (c *Country) Key() uuid.UUID { return c.ID }
func (c *Country) Kind() Kind     { return KindCountry }

func (c *Country) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Unique: []uint64{indexes.KeyHash("country_iso2", c.ISO2)},
	}
}

func (c *Country) AppendCanonical(buf []byte) []byte {
	buf = appendString(buf, 'S', c.ISO2)
	buf = appendString(buf, 'S', c.Name)
	return buf
}

func (c *Country) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', c.ID)
	buf = appendU16(buf, 'V', c.Ver)
	buf = appendString(buf, 'S', c.ISO2)
	buf = appendString(buf, 'S', c.Name)
	return buf, nil
}

func (c *Country) DecodeRow(data []byte) error {
	r := newRowReader(data)
	c.ID = r.uuid('I')
	c.Ver = r.u16('V')
	c.ISO2 = r.str('S')
	c.Name = r.str('S')
	return r.finish("country row")
}

// CountrySubdivision is unique on (country, code); code alone repeats
// across countries.
type CountrySubdivision struct {
	ID uuid.UUID
	Versioned
	CountryID uuid.UUID
	Code      string
	Name      string
}

func (s *CountrySubdivision) Key() uuid.UUID { return s.ID }
func (s *CountrySubdivision) Kind() Kind     { return KindSubdivision }

func (s *CountrySubdivision) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Unique:    []uint64{indexes.KeyHash("subdivision_code", s.CountryID.String(), s.Code)},
		Nonunique: []uint64{indexes.KeyHash("subdivision_country", s.CountryID.String())},
	}
}

func (s *CountrySubdivision) AppendCanonical(buf []byte) []byte {
	buf = appendUUID(buf, 'I', s.CountryID)
	buf = appendString(buf, 'S', s.Code)
	buf = appendString(buf, 'S', s.Name)
	return buf
}

func (s *CountrySubdivision) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', s.ID)
	buf = appendU16(buf, 'V', s.Ver)
	buf = appendUUID(buf, 'I', s.CountryID)
	buf = appendString(buf, 'S', s.Code)
	buf = appendString(buf, 'S', s.Name)
	return buf, nil
}

func (s *CountrySubdivision) DecodeRow(data []byte) error {
	r := newRowReader(data)
	s.ID = r.uuid('I')
	s.Ver = r.u16('V')
	s.CountryID = r.uuid('I')
	s.Code = r.str('S')
	s.Name = r.str('S')
	return r.finish("country subdivision row")
}

// Locality is unique on (subdivision, name).
type Locality struct {
	ID uuid.UUID
	Versioned
	SubdivisionID uuid.UUID
	Name          string
}

func (l *Locality) Key() uuid.UUID { return l.ID }
func (l *Locality) Kind() Kind     { return KindLocality }

func (l *Locality) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Unique:    []uint64{indexes.KeyHash("locality_name", l.SubdivisionID.String(), l.Name)},
		Nonunique: []uint64{indexes.KeyHash("locality_subdivision", l.SubdivisionID.String())},
	}
}

func (l *Locality) AppendCanonical(buf []byte) []byte {
	buf = appendUUID(buf, 'I', l.SubdivisionID)
	buf = appendString(buf, 'S', l.Name)
	return buf
}

func (l *Locality) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', l.ID)
	buf = appendU16(buf, 'V', l.Ver)
	buf = appendUUID(buf, 'I', l.SubdivisionID)
	buf = appendString(buf, 'S', l.Name)
	return buf, nil
}

func (l *Locality) DecodeRow(data []byte) error {
	r := newRowReader(data)
	l.ID = r.uuid('I')
	l.Ver = r.u16('V')
	l.SubdivisionID = r.uuid('I')
	l.Name = r.str('S')
	return r.finish("locality row")
}
