// Package rlp implements the canonical, self-describing encoding used for
// every transaction, parcel and signature hash in the module.
//
// An encoded value is either a byte string or a list of encoded values:
//   - a single byte below 0x80 encodes as itself
//   - a byte string of up to 55 bytes is prefixed by 0x80+len
//   - a longer byte string is prefixed by 0xb7+len(len) and the big-endian length
//   - a list whose payload is up to 55 bytes is prefixed by 0xc0+len
//   - a longer list is prefixed by 0xf7+len(len) and the big-endian length
//
// Integers are encoded as their minimal big-endian byte string, so zero is
// the empty string (0x80).
//
// Headers are always minimal. Decode rejects every non-minimal form, which
// keeps decode(encode(x)) == x and encode(decode(b)) == b for all accepted b.
package rlp

import (
	"fmt"
	"math/bits"

	"github.com/suffix-labs/shardtx/pkg/types"
)

const (
	offsetShortString = 0x80
	offsetLongString  = 0xb7
	offsetShortList   = 0xc0
	offsetLongList    = 0xf7

	maxShortLength = 55
)

// Item is one node of an encodable tree: Bytes, Uint or List.
type Item interface {
	appendTo(buf []byte) []byte
}

// Bytes is a raw byte string.
type Bytes []byte

// Uint is a non-negative integer, encoded as its minimal big-endian bytes.
type Uint uint64

// List is an ordered sequence of items.
type List []Item

// String is a convenience constructor for text fields.
func String(s string) Bytes { return Bytes(s) }

// Encode returns the canonical encoding of item.
func Encode(item Item) []byte {
	return item.appendTo(nil)
}

func (b Bytes) appendTo(buf []byte) []byte {
	if len(b) == 1 && b[0] < offsetShortString {
		return append(buf, b[0])
	}
	buf = appendHeader(buf, offsetShortString, offsetLongString, len(b))
	return append(buf, b...)
}

func (u Uint) appendTo(buf []byte) []byte {
	return Bytes(bigEndian(uint64(u))).appendTo(buf)
}

func (l List) appendTo(buf []byte) []byte {
	var payload []byte
	for _, item := range l {
		payload = item.appendTo(payload)
	}
	buf = appendHeader(buf, offsetShortList, offsetLongList, len(payload))
	return append(buf, payload...)
}

func appendHeader(buf []byte, short, long byte, n int) []byte {
	if n <= maxShortLength {
		return append(buf, short+byte(n))
	}
	lenBytes := bigEndian(uint64(n))
	buf = append(buf, long+byte(len(lenBytes)))
	return append(buf, lenBytes...)
}

// bigEndian returns the minimal big-endian bytes of v (empty for zero).
func bigEndian(v uint64) []byte {
	n := (bits.Len64(v) + 7) / 8
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// DecodeError reports a malformed or non-canonical encoding.
type DecodeError struct {
	Offset  int    // Byte offset of the offending header
	Message string // Human-readable error message
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rlp: %s at offset %d", e.Message, e.Offset)
}

// Decode parses a canonical encoding. Byte strings decode to Bytes and
// lists to List; integers come back as Bytes (see Bytes.Uint64).
//
// The error is a *types.Error with code INVALID_FIELD_VALUE wrapping a
// *DecodeError.
func Decode(b []byte) (Item, error) {
	item, n, err := decodeItem(b, 0)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, decodeErr(n, "%d trailing bytes", len(b)-n)
	}
	return item, nil
}

// decodeItem decodes the item starting at b[off:], returning it together
// with the offset just past it.
func decodeItem(b []byte, off int) (Item, int, error) {
	if off >= len(b) {
		return nil, 0, decodeErr(off, "unexpected end of input")
	}
	prefix := b[off]

	switch {
	case prefix < offsetShortString:
		return Bytes{prefix}, off + 1, nil

	case prefix <= offsetLongString:
		n := int(prefix - offsetShortString)
		data, end, err := slice(b, off, off+1, n)
		if err != nil {
			return nil, 0, err
		}
		if n == 1 && data[0] < offsetShortString {
			return nil, 0, decodeErr(off, "single byte 0x%02x must encode as itself", data[0])
		}
		return append(Bytes{}, data...), end, nil

	case prefix < offsetShortList:
		n, start, err := readLength(b, off, int(prefix-offsetLongString))
		if err != nil {
			return nil, 0, err
		}
		data, end, err := slice(b, off, start, n)
		if err != nil {
			return nil, 0, err
		}
		return append(Bytes{}, data...), end, nil

	case prefix <= offsetLongList:
		n := int(prefix - offsetShortList)
		payload, end, err := slice(b, off, off+1, n)
		if err != nil {
			return nil, 0, err
		}
		list, err := decodeList(payload, off+1)
		return list, end, err

	default:
		n, start, err := readLength(b, off, int(prefix-offsetLongList))
		if err != nil {
			return nil, 0, err
		}
		payload, end, err := slice(b, off, start, n)
		if err != nil {
			return nil, 0, err
		}
		list, err := decodeList(payload, start)
		return list, end, err
	}
}

// decodeList decodes every item of a list payload. base is the payload's
// offset in the original input, for error reporting.
func decodeList(payload []byte, base int) (List, error) {
	list := List{}
	off := 0
	for off < len(payload) {
		item, next, err := decodeItem(payload, off)
		if err != nil {
			if de, ok := unwrapDecodeError(err); ok {
				return nil, decodeErr(base+de.Offset, "%s", de.Message)
			}
			return nil, err
		}
		list = append(list, item)
		off = next
	}
	return list, nil
}

// readLength reads the big-endian length of a long-form header at b[off]
// with lenOfLen length bytes.
func readLength(b []byte, off int, lenOfLen int) (int, int, error) {
	start := off + 1
	if lenOfLen > 8 {
		return 0, 0, decodeErr(off, "length of length %d exceeds 8", lenOfLen)
	}
	if len(b)-start < lenOfLen {
		return 0, 0, decodeErr(off, "truncated length")
	}
	lenBytes := b[start : start+lenOfLen]
	if lenBytes[0] == 0 {
		return 0, 0, decodeErr(off, "length has leading zero byte")
	}
	var n uint64
	for _, c := range lenBytes {
		n = n<<8 | uint64(c)
	}
	if n <= maxShortLength {
		return 0, 0, decodeErr(off, "length %d must use the short form", n)
	}
	if n > uint64(len(b)) {
		return 0, 0, decodeErr(off, "length %d exceeds input", n)
	}
	return int(n), start + lenOfLen, nil
}

func slice(b []byte, off, start, n int) ([]byte, int, error) {
	if len(b)-start < n {
		return nil, 0, decodeErr(off, "content of %d bytes is truncated", n)
	}
	return b[start : start+n], start + n, nil
}

func decodeErr(off int, format string, args ...interface{}) error {
	de := &DecodeError{Offset: off, Message: fmt.Sprintf(format, args...)}
	return types.Wrap(types.CodeInvalidFieldValue, de, "non-canonical encoding")
}

func unwrapDecodeError(err error) (*DecodeError, bool) {
	if te, ok := err.(*types.Error); ok {
		de, ok := te.Cause.(*DecodeError)
		return de, ok
	}
	return nil, false
}

// Uint64 interprets b as a minimal big-endian integer.
func (b Bytes) Uint64() (uint64, error) {
	if len(b) > 8 {
		return 0, types.Errorf(types.CodeInvalidFieldValue, "rlp: integer of %d bytes exceeds 64 bits", len(b))
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, types.Errorf(types.CodeInvalidFieldValue, "rlp: integer has leading zero byte")
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}
