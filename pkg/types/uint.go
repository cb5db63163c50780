package types

import (
	"encoding/json"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// U64 is an unsigned 64-bit amount, nonce or fee.
//
// Canonical bytes are the minimal big-endian form (zero encodes as no bytes).
// Text form is "0x"-prefixed minimal hex; parsing also accepts decimal.
type U64 uint64

// MaxU64 is the sentinel used for unlimited asset supply.
const MaxU64 = U64(math.MaxUint64)

// Bytes returns the minimal big-endian encoding of u.
func (u U64) Bytes() []byte {
	n := (bits.Len64(uint64(u)) + 7) / 8
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(u)
		u >>= 8
	}
	return out
}

// U64FromBytes parses a minimal big-endian encoding.
func U64FromBytes(b []byte) (U64, error) {
	if len(b) > 8 {
		return 0, Errorf(CodeInvalidFieldValue, "U64: %d bytes exceeds 8", len(b))
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, Errorf(CodeInvalidFieldValue, "U64: leading zero byte")
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return U64(v), nil
}

// CheckedAdd returns u+v, or an AmountOverflow error.
func (u U64) CheckedAdd(v U64) (U64, error) {
	sum, carry := bits.Add64(uint64(u), uint64(v), 0)
	if carry != 0 {
		return 0, Errorf(CodeAmountOverflow, "%s + %s overflows U64", u, v)
	}
	return U64(sum), nil
}

// SaturatingAdd returns u+v clamped to MaxU64.
func (u U64) SaturatingAdd(v U64) U64 {
	sum, carry := bits.Add64(uint64(u), uint64(v), 0)
	if carry != 0 {
		return MaxU64
	}
	return U64(sum)
}

func (u U64) String() string { return "0x" + strconv.FormatUint(uint64(u), 16) }

func (u U64) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *U64) UnmarshalText(b []byte) error {
	v, err := ParseU64(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// UnmarshalJSON accepts both quoted text and bare JSON numbers.
func (u *U64) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return Wrap(CodeInvalidFieldValue, err, "U64")
		}
		return u.UnmarshalText([]byte(s))
	}
	return u.UnmarshalText(b)
}

// ParseU64 parses "0x"-prefixed hex or decimal text.
func ParseU64(s string) (U64, error) {
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, Wrap(CodeInvalidFieldValue, err, "U64: cannot parse %q", s)
	}
	return U64(v), nil
}

// U256 is an unsigned 256-bit integer. It serves as the wide accumulator
// when summing asset amounts so that overflow is detected on narrowing
// instead of wrapping.
type U256 struct {
	i uint256.Int
}

// NewU256 returns a U256 holding v.
func NewU256(v uint64) U256 {
	var u U256
	u.i.SetUint64(v)
	return u
}

// Add returns u+v, or an AmountOverflow error past 2^256-1.
func (u U256) Add(v U256) (U256, error) {
	var out U256
	if _, overflow := out.i.AddOverflow(&u.i, &v.i); overflow {
		return U256{}, Errorf(CodeAmountOverflow, "%s + %s overflows U256", u, v)
	}
	return out, nil
}

// U64 narrows u, failing with AmountOverflow when it does not fit.
func (u U256) U64() (U64, error) {
	if !u.i.IsUint64() {
		return 0, Errorf(CodeAmountOverflow, "%s does not fit in U64", u)
	}
	return U64(u.i.Uint64()), nil
}

// Cmp compares u and v, returning -1, 0 or +1.
func (u U256) Cmp(v U256) int { return u.i.Cmp(&v.i) }

// Bytes returns the minimal big-endian encoding of u.
func (u U256) Bytes() []byte { return u.i.Bytes() }

func (u U256) String() string { return u.i.Hex() }

func (u U256) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *U256) UnmarshalText(b []byte) error {
	s := string(b)
	var err error
	if strings.HasPrefix(s, "0x") {
		err = u.i.SetFromHex(s)
	} else {
		err = u.i.SetFromDecimal(s)
	}
	if err != nil {
		return Wrap(CodeInvalidFieldValue, err, "U256: cannot parse %q", s)
	}
	return nil
}
