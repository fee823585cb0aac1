package tlv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppend(t *testing.T) {
	buf := []byte{}
	buf = Append(buf, 'A', []byte{'A'})
	buf = Append(buf, 'b', []byte{'B', 'B'})
	correct2 := []byte{'a', 1, 'A', '2', 'B', 'B'}
	assert.Equal(t, correct2, buf, "basic TLV fail")

	var c256 [256]byte
	for n := range c256 {
		c256[n] = 'c'
	}
	buf = Append(buf, 'C', c256[:])
	assert.Equal(t, len(correct2)+1+4+len(c256), len(buf))
	assert.Equal(t, uint8(67), buf[len(correct2)])
	assert.Equal(t, uint8(1), buf[len(correct2)+2])

	lit, body, buf := TakeAny(buf)
	assert.Equal(t, uint8('A'), lit)
	assert.Equal(t, []byte{'A'}, body)

	body2, buf, err2 := TakeWary('B', buf)
	assert.Nil(t, err2)
	assert.Equal(t, []byte{'B', 'B'}, body2)

	body3, rest, err3 := TakeWary('C', buf)
	assert.Nil(t, err3)
	assert.Equal(t, c256[:], body3)
	assert.Equal(t, 0, len(rest))
}

func TestTakeWary(t *testing.T) {
	rec := Record('A', []byte("some text"))

	_, rest, err := TakeWary('B', rec)
	assert.Equal(t, ErrBadRecord, err)
	assert.Nil(t, rest)

	_, rest, err = TakeWary('A', rec[:4])
	assert.Equal(t, ErrIncomplete, err)
	assert.Equal(t, rec[:4], rest)

	body, rest, err := TakeWary('A', rec)
	assert.Nil(t, err)
	assert.Equal(t, "some text", string(body))
	assert.Equal(t, 0, len(rest))
}

func TestProbeHeader(t *testing.T) {
	lit, hdrlen, bodylen := ProbeHeader([]byte{})
	assert.Equal(t, uint8(0), lit)

	lit, hdrlen, bodylen = ProbeHeader([]byte{'3', 'a', 'b', 'c'})
	assert.Equal(t, uint8('0'), lit)
	assert.Equal(t, 1, hdrlen)
	assert.Equal(t, 3, bodylen)

	lit, _, _ = ProbeHeader([]byte{0xff})
	assert.Equal(t, uint8('-'), lit)
}

func TestTinyRecord(t *testing.T) {
	body := "12"
	tiny := TinyRecord('X', []byte(body))
	assert.Equal(t, "212", string(tiny))
}

func TestConcat(t *testing.T) {
	joined := Concat([]byte("ab"), []byte("cd"), nil, []byte("e"))
	assert.Equal(t, "abcde", string(joined))
}
