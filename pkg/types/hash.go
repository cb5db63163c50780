// Package types defines the fixed-width value types shared by every other
// package: hashes and keys (H128, H160, H256, H512, H520), unsigned
// integers (U64, U256) and network identifiers.
//
// All values are immutable big-endian byte arrays or integers with:
//   - a canonical byte form (Bytes)
//   - a lowercase hex form without prefix (Hex)
//   - a "0x"-prefixed text form used in JSON (String, MarshalText)
//
// Parsing accepts hex with or without the "0x" prefix and rejects any other
// length than the exact width of the type.
package types

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// H128 is a 128-bit value, used as the key of the keyed BLAKE2b hash.
type H128 [16]byte

// H160 is a 160-bit value, used for account ids and lock script hashes.
type H160 [20]byte

// H256 is a 256-bit value: transaction hashes, asset types and addresses.
type H256 [32]byte

// H512 is an uncompressed secp256k1 public key without the 0x04 prefix.
type H512 [64]byte

// H520 is a recoverable ECDSA signature laid out as r || s || v.
type H520 [65]byte

// parseHex decodes s (optionally "0x"-prefixed) into dst, requiring an
// exact length match.
func parseHex(name string, s string, dst []byte) error {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 2*len(dst) {
		return Errorf(CodeInvalidFieldValue, "%s: expected %d hex characters, got %d", name, 2*len(dst), len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return Wrap(CodeInvalidFieldValue, err, "%s: malformed hex", name)
	}
	return nil
}

// ParseH128 parses a hex string into an H128.
func ParseH128(s string) (H128, error) {
	var h H128
	err := parseHex("H128", s, h[:])
	return h, err
}

func (h H128) Bytes() []byte  { return h[:] }
func (h H128) Hex() string    { return hex.EncodeToString(h[:]) }
func (h H128) String() string { return "0x" + h.Hex() }

func (h H128) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *H128) UnmarshalText(b []byte) error { return parseHex("H128", string(b), h[:]) }

// ParseH160 parses a hex string into an H160.
func ParseH160(s string) (H160, error) {
	var h H160
	err := parseHex("H160", s, h[:])
	return h, err
}

// H160FromBytes copies b into an H160. b must be exactly 20 bytes.
func H160FromBytes(b []byte) (H160, error) {
	var h H160
	if len(b) != len(h) {
		return h, Errorf(CodeInvalidFieldValue, "H160: expected %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h H160) Bytes() []byte  { return h[:] }
func (h H160) Hex() string    { return hex.EncodeToString(h[:]) }
func (h H160) String() string { return "0x" + h.Hex() }
func (h H160) IsZero() bool   { return h == H160{} }

func (h H160) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *H160) UnmarshalText(b []byte) error { return parseHex("H160", string(b), h[:]) }

// ParseH256 parses a hex string into an H256.
func ParseH256(s string) (H256, error) {
	var h H256
	err := parseHex("H256", s, h[:])
	return h, err
}

// H256FromBytes copies b into an H256. b must be exactly 32 bytes.
func H256FromBytes(b []byte) (H256, error) {
	var h H256
	if len(b) != len(h) {
		return h, Errorf(CodeInvalidFieldValue, "H256: expected %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h H256) Bytes() []byte  { return h[:] }
func (h H256) Hex() string    { return hex.EncodeToString(h[:]) }
func (h H256) String() string { return "0x" + h.Hex() }
func (h H256) IsZero() bool   { return h == H256{} }

func (h H256) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *H256) UnmarshalText(b []byte) error { return parseHex("H256", string(b), h[:]) }

// ParseH512 parses a hex string into an H512.
func ParseH512(s string) (H512, error) {
	var h H512
	err := parseHex("H512", s, h[:])
	return h, err
}

// H512FromBytes copies b into an H512. b must be exactly 64 bytes.
func H512FromBytes(b []byte) (H512, error) {
	var h H512
	if len(b) != len(h) {
		return h, Errorf(CodeInvalidFieldValue, "H512: expected %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h H512) Bytes() []byte  { return h[:] }
func (h H512) Hex() string    { return hex.EncodeToString(h[:]) }
func (h H512) String() string { return "0x" + h.Hex() }

func (h H512) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *H512) UnmarshalText(b []byte) error { return parseHex("H512", string(b), h[:]) }

// ParseH520 parses a hex string into an H520.
func ParseH520(s string) (H520, error) {
	var h H520
	err := parseHex("H520", s, h[:])
	return h, err
}

// H520FromBytes copies b into an H520. b must be exactly 65 bytes.
func H520FromBytes(b []byte) (H520, error) {
	var h H520
	if len(b) != len(h) {
		return h, Errorf(CodeInvalidFieldValue, "H520: expected %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h H520) Bytes() []byte  { return h[:] }
func (h H520) Hex() string    { return hex.EncodeToString(h[:]) }
func (h H520) String() string { return "0x" + h.Hex() }

func (h H520) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *H520) UnmarshalText(b []byte) error { return parseHex("H520", string(b), h[:]) }

// HexBytes is a variable-length byte buffer whose JSON form is a
// "0x"-prefixed hex string. Scripts and lock script parameters use it.
// A nil buffer is JSON null and an empty one is "0x", so the two survive a
// round trip.
type HexBytes []byte

func (b HexBytes) String() string { return "0x" + hex.EncodeToString(b) }

func (b HexBytes) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *HexBytes) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "0x")
	if len(s)%2 != 0 {
		return Errorf(CodeInvalidFieldValue, "bytes: odd hex length %d", len(s))
	}
	if s == "" {
		*b = HexBytes{}
		return nil
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		return Wrap(CodeInvalidFieldValue, err, "bytes: malformed hex")
	}
	*b = out
	return nil
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.String())
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return Wrap(CodeInvalidFieldValue, err, "bytes: expected hex string")
	}
	return b.UnmarshalText([]byte(s))
}
