package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// Person is an account holder, natural or legal. Mutable-Versioned.
//
// Secondary keys: ExternalIdentifier (unique), LocalityID (non-unique).
type Person struct {
	ID uuid.UUID
	Versioned
	Type               PersonType
	DisplayName        string
	ExternalIdentifier string
	DateOfBirth        string // ISO-8601 date, empty for legal persons
	LocalityID         uuid.UUID
}

func (p *Person) Key() uuid.UUID { return p.ID }
func (p *Person) Kind() Kind     { return KindPerson }

func (p *Person) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Unique:    []uint64{indexes.KeyHash("person_ext", p.ExternalIdentifier)},
		Nonunique: []uint64{indexes.KeyHash("person_locality", p.LocalityID.String())},
	}
}

func (p *Person) AppendCanonical(buf []byte) []byte {
	buf = appendOrdinal(buf, 'T', p.Type)
	buf = appendString(buf, 'S', p.DisplayName)
	buf = appendString(buf, 'S', p.ExternalIdentifier)
	buf = appendString(buf, 'S', p.DateOfBirth)
	buf = appendUUID(buf, 'I', p.LocalityID)
	return buf
}

func (p *Person) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', p.ID)
	buf = appendU16(buf, 'V', p.Ver)
	buf, err := appendEnum(buf, 'T', personTypes, p.Type)
	if err != nil {
		return nil, err
	}
	buf = appendString(buf, 'S', p.DisplayName)
	buf = appendString(buf, 'S', p.ExternalIdentifier)
	buf = appendString(buf, 'S', p.DateOfBirth)
	buf = appendUUID(buf, 'I', p.LocalityID)
	return buf, nil
}

func (p *Person) DecodeRow(data []byte) error {
	r := newRowReader(data)
	p.ID = r.uuid('I')
	p.Ver = r.u16('V')
	p.Type = readEnum(r, 'T', personTypes)
	p.DisplayName = r.str('S')
	p.ExternalIdentifier = r.str('S')
	p.DateOfBirth = r.str('S')
	p.LocalityID = r.uuid('I')
	return r.finish("person row")
}
