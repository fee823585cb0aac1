package entities

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/google/uuid"
)

// Account is a ledger account of one holder. Mutable-Versioned: status
// and balance changes advance the version with a full audit snapshot.
//
// Secondary keys: Number (unique), HolderID (non-unique).
type Account struct {
	ID uuid.UUID
	Versioned
	Number       string
	HolderID     uuid.UUID
	Currency     string
	Status       AccountStatus
	ProductCode  string
	BalanceMinor int64
}

func (a *Account) Key() uuid.UUID { return a.ID }
func (a *Account) Kind() Kind     { return KindAccount }

func (a *Account) IndexKeys() indexes.Keys {
	return indexes.Keys{
		Unique:    []uint64{indexes.KeyHash("account_number", a.Number)},
		Nonunique: []uint64{indexes.KeyHash("account_holder", a.HolderID.String())},
	}
}

func (a *Account) AppendCanonical(buf []byte) []byte {
	buf = appendString(buf, 'S', a.Number)
	buf = appendUUID(buf, 'I', a.HolderID)
	buf = appendString(buf, 'S', a.Currency)
	buf = appendOrdinal(buf, 'T', a.Status)
	buf = appendString(buf, 'S', a.ProductCode)
	buf = appendI64(buf, 'C', a.BalanceMinor)
	return buf
}

func (a *Account) EncodeRow(buf []byte) ([]byte, error) {
	buf = appendUUID(buf, 'I', a.ID)
	buf = appendU16(buf, 'V', a.Ver)
	buf = appendString(buf, 'S', a.Number)
	buf = appendUUID(buf, 'I', a.HolderID)
	buf = appendString(buf, 'S', a.Currency)
	buf, err := appendEnum(buf, 'T', accountStatuses, a.Status)
	if err != nil {
		return nil, err
	}
	buf = appendString(buf, 'S', a.ProductCode)
	buf = appendI64(buf, 'C', a.BalanceMinor)
	return buf, nil
}

func (a *Account) DecodeRow(data []byte) error {
	r := newRowReader(data)
	a.ID = r.uuid('I')
	a.Ver = r.u16('V')
	a.Number = r.str('S')
	a.HolderID = r.uuid('I')
	a.Currency = r.str('S')
	a.Status = readEnum(r, 'T', accountStatuses)
	a.ProductCode = r.str('S')
	a.BalanceMinor = r.i64('C')
	return r.finish("account row")
}
