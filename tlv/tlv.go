// Record format based on ToyTLV (MIT licence) written by Victor Grishchenko in 2024
// Original project: https://github.com/learn-decentralized-systems/toytlv

// Package tlv implements the compact TLV (Type-Length-Value) record
// encoding used for entity rows, index rows, audit rows and canonical
// fingerprint input.
//
// Three header formats are selected automatically from the body size:
//
//  1. Tiny (1 byte): bodies of 0-9 bytes, header is '0'+len, the type
//     letter is not preserved. Only produced for lowercase type args.
//  2. Short (2 bytes): bodies up to 255 bytes, lowercase type letter
//     followed by a 1-byte length.
//  3. Long (5 bytes): bodies up to 2GB, uppercase type letter followed
//     by a 4-byte little-endian length.
//
// Record types are uppercase letters A-Z. Passing a lowercase letter to
// the encoding functions permits the tiny format for small bodies.
package tlv

import (
	"encoding/binary"
	"errors"
)

const caseBit byte = 'a' - 'A'

var (
	ErrIncomplete = errors.New("tlv: incomplete data")
	ErrBadRecord  = errors.New("tlv: bad record format")
)

// ProbeHeader reads a record header without consuming it.
// lit is 'A'-'Z', '0' for a tiny record, '-' for garbage, 0 for
// insufficient data.
func ProbeHeader(data []byte) (lit byte, hdrlen, bodylen int) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	b := data[0]
	switch {
	case b >= '0' && b <= '9':
		return '0', 1, int(b - '0')
	case b >= 'a' && b <= 'z':
		if len(data) < 2 {
			return 0, 0, 0
		}
		return b - caseBit, 2, int(data[1])
	case b >= 'A' && b <= 'Z':
		if len(data) < 5 {
			return 0, 0, 0
		}
		bl := binary.LittleEndian.Uint32(data[1:5])
		if bl > 0x7fffffff {
			return '-', 0, 0
		}
		return b, 5, int(bl)
	default:
		return '-', 0, 0
	}
}

// AppendHeader appends a record header, picking the smallest format the
// body length and type case allow.
func AppendHeader(into []byte, lit byte, bodylen int) []byte {
	big := lit &^ caseBit
	if big < 'A' || big > 'Z' {
		panic("tlv record type is A..Z")
	}
	if bodylen < 10 && (lit&caseBit) != 0 {
		return append(into, byte('0'+bodylen))
	}
	if bodylen > 0xff {
		if bodylen > 0x7fffffff {
			panic("oversized tlv record")
		}
		into = append(into, big)
		return binary.LittleEndian.AppendUint32(into, uint32(bodylen))
	}
	return append(into, lit|caseBit, byte(bodylen))
}

// Take extracts the body of the next record if its type matches lit
// (tiny records match any type). Returns nil body and the original data
// on incomplete input, nil/nil on a type mismatch.
func Take(lit byte, data []byte) (body, rest []byte) {
	flit, hdrlen, bodylen := ProbeHeader(data)
	if flit == 0 || hdrlen+bodylen > len(data) {
		return nil, data
	}
	if flit != lit && flit != '0' {
		return nil, nil
	}
	return data[hdrlen : hdrlen+bodylen], data[hdrlen+bodylen:]
}

// TakeAny extracts the next record regardless of type.
func TakeAny(data []byte) (lit byte, body, rest []byte) {
	if len(data) == 0 {
		return 0, nil, nil
	}
	lit = data[0] & ^caseBit
	body, rest = Take(lit, data)
	return
}

// TakeWary is Take with explicit errors, for data read back from disk.
func TakeWary(lit byte, data []byte) (body, rest []byte, err error) {
	flit, hdrlen, bodylen := ProbeHeader(data)
	if flit == 0 || hdrlen+bodylen > len(data) {
		return nil, data, ErrIncomplete
	}
	if flit != lit && flit != '0' {
		return nil, nil, ErrBadRecord
	}
	return data[hdrlen : hdrlen+bodylen], data[hdrlen+bodylen:], nil
}

// TotalLen sums the lengths of the given slices.
func TotalLen(inputs [][]byte) (sum int) {
	for _, input := range inputs {
		sum += len(input)
	}
	return
}

// Append appends a complete record to the buffer.
func Append(into []byte, lit byte, body ...[]byte) []byte {
	into = AppendHeader(into, lit, TotalLen(body))
	for _, b := range body {
		into = append(into, b...)
	}
	return into
}

// Record builds a complete record in a fresh buffer.
func Record(lit byte, body ...[]byte) []byte {
	total := TotalLen(body)
	ret := make([]byte, 0, total+5)
	return Append(ret, lit, body...)
}

// TinyRecord builds a record permitting the tiny format.
func TinyRecord(lit byte, body []byte) []byte {
	return Record((lit&^caseBit)|caseBit, body)
}

// Concat joins byte slices with a single allocation.
func Concat(msg ...[]byte) []byte {
	ret := make([]byte, 0, TotalLen(msg))
	for _, b := range msg {
		ret = append(ret, b...)
	}
	return ret
}
