package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// Messaging is a delivery endpoint (email, phone, sms, swift).
// Immutable-Shared-Object: the address value is frozen at creation.
//
// HolderID is the repointable foreign key cached in the index row and
// excluded from the canonical form. The address value forms a unique
// key hashed together with the endpoint type, so the raw value is not
// stored a second time in the cache.
type Messaging struct {
	ID uuid.UUID
	Versioned
	Type     MessagingType
	Value    string
	HolderID uuid.UUID
}

func (m *Messaging) Key() uuid.UUID { return m.ID }
func (m *Messaging) Kind() Kind     { return KindMessaging }

func (m *Messaging) IndexKeys() indexes.Keys {
	typeName, _ := messagingTypes.Name(m.Type)
	return indexes.Keys{
		Unique:    []uint64{indexes.KeyHash("messaging_value", typeName, m.Value)},
		Nonunique: []uint64{indexes.KeyHash("messaging_holder", m.HolderID.String())},
	}
}

func (m *Messaging) AppendCanonical(buf []byte) []byte {
	buf = appendOrdinal(buf, 'T', m.Type)
	buf = appendString(buf, 'S', m.Value)
	return buf
}

func (m *Messaging) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', m.ID)
	buf = appendU16(buf, 'V', m.Ver)
	buf, err := appendEnum(buf, 'T', messagingTypes, m.Type)
	if err != nil {
		return nil, err
	}
	buf = appendString(buf, 'S', m.Value)
	buf = appendUUID(buf, 'I', m.HolderID)
	return buf, nil
}

func (m *Messaging) DecodeRow(data []byte) error {
	r := newRowReader(data)
	m.ID = r.uuid('I')
	m.Ver = r.u16('V')
	m.Type = readEnum(r, 'T', messagingTypes)
	m.Value = r.str('S')
	m.HolderID = r.uuid('I')
	return r.finish("messaging row")
}
