package entities

import (
	"encoding/binary"
	stderrors "errors"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/adorsys-gis/bankstore/tlv"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Row and canonical encodings are TLV records in the order the entity
// declares its fields. Record letters used here:
//
//	I  uuid, 16 bytes
//	V  version, big-endian uint16
//	S  string
//	T  enum name
//	C  int64, big-endian two's complement

func appendUUID(buf []byte, lit byte, id uuid.UUID) []byte {
	return tlv.Append(buf, lit, id[:])
}

func appendString(buf []byte, lit byte, s string) []byte {
	return tlv.Append(buf, lit, []byte(s))
}

func appendU16(buf []byte, lit byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return tlv.Append(buf, lit, b[:])
}

func appendI64(buf []byte, lit byte, v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return tlv.Append(buf, lit, b[:])
}

// appendOrdinal encodes an enum by ordinal; used only in canonical
// form, where renaming an enum label must not change fingerprints.
func appendOrdinal[E ~uint8](buf []byte, lit byte, e E) []byte {
	return tlv.Append(buf, lit, []byte{byte(e)})
}

func appendEnum[E ~uint8](buf []byte, lit byte, c *enumCodec[E], e E) ([]byte, error) {
	name, err := c.Name(e)
	if err != nil {
		return nil, err
	}
	return appendString(buf, lit, name), nil
}

// rowReader consumes TLV records sequentially, latching the first error
// so decode methods chain without per-field checks.
type rowReader struct {
	rest []byte
	err  error
}

func newRowReader(data []byte) *rowReader {
	return &rowReader{rest: data}
}

func (r *rowReader) take(lit byte) []byte {
	if r.err != nil {
		return nil
	}
	body, rest, err := tlv.TakeWary(lit, r.rest)
	if err != nil {
		r.err = stderrors.Join(bankstore_errors.ErrBadRow, err)
		return nil
	}
	r.rest = rest
	return body
}

func (r *rowReader) uuid(lit byte) (id uuid.UUID) {
	body := r.take(lit)
	if r.err != nil {
		return
	}
	if len(body) != 16 {
		r.err = stderrors.Join(bankstore_errors.ErrBadRow,
			errors.Errorf("uuid record has %d bytes", len(body)))
		return
	}
	copy(id[:], body)
	return
}

func (r *rowReader) str(lit byte) string {
	return string(r.take(lit))
}

func (r *rowReader) u16(lit byte) uint16 {
	body := r.take(lit)
	if r.err != nil || len(body) != 2 {
		if r.err == nil {
			r.err = stderrors.Join(bankstore_errors.ErrBadRow,
				errors.Errorf("u16 record has %d bytes", len(body)))
		}
		return 0
	}
	return binary.BigEndian.Uint16(body)
}

func (r *rowReader) i64(lit byte) int64 {
	body := r.take(lit)
	if r.err != nil || len(body) != 8 {
		if r.err == nil {
			r.err = stderrors.Join(bankstore_errors.ErrBadRow,
				errors.Errorf("i64 record has %d bytes", len(body)))
		}
		return 0
	}
	return int64(binary.BigEndian.Uint64(body))
}

func readEnum[E ~uint8](r *rowReader, lit byte, c *enumCodec[E]) E {
	name := r.str(lit)
	if r.err != nil {
		return 0
	}
	e, err := c.Parse(name)
	if err != nil {
		r.err = err
	}
	return e
}

func (r *rowReader) finish(context string) error {
	if r.err != nil {
		return errors.Wrap(r.err, context)
	}
	return nil
}
