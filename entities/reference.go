package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// EntityReference links a person to a role they play against the bank
// (customer, signatory, ...). Mutable-Versioned.
//
// Secondary keys: ExternalRef (unique), PersonID (non-unique, so all
// roles of one person resolve in one lookup).
type EntityReference struct {
	ID uuid.UUID
	Versioned
	PersonID    uuid.UUID
	Role        ReferenceRole
	ExternalRef string
}

func (e *EntityReference) Key() uuid.UUID { return e.ID }
func (e *EntityReference) Kind() Kind     { return KindReference }

func (e *EntityReference) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Unique:    []uint64{indexes.KeyHash("reference_ext", e.ExternalRef)},
		Nonunique: []uint64{indexes.KeyHash("reference_person", e.PersonID.String())},
	}
}

func (e *EntityReference) AppendCanonical(buf []byte) []byte {
	buf = appendUUID(buf, 'I', e.PersonID)
	buf = appendOrdinal(buf, 'T', e.Role)
	buf = appendString(buf, 'S', e.ExternalRef)
	return buf
}

func (e *EntityReference) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', e.ID)
	buf = appendU16(buf, 'V', e.Ver)
	buf = appendUUID(buf, 'I', e.PersonID)
	buf, err := appendEnum(buf, 'T', referenceRoles, e.Role)
	if err != nil {
		return nil, err
	}
	buf = appendString(buf, 'S', e.ExternalRef)
	return buf, nil
}

func (e *EntityReference) DecodeRow(data []byte) error {
	r := newRowReader(data)
	e.ID = r.uuid('I')
	e.Ver = r.u16('V')
	e.PersonID = r.uuid('I')
	e.Role = readEnum(r, 'T', referenceRoles)
	e.ExternalRef = r.str('S')
	return r.finish("entity reference row")
}
