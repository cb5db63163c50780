package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"lukechampine.com/frand"

	"github.com/suffix-labs/shardtx/pkg/types"
)

// Key formats:
//   - Private keys: raw 32 bytes, hex, or WIF (Wallet Import Format)
//   - Public keys: 64-byte uncompressed form without the 0x04 prefix (H512)
//   - Signatures: recoverable, laid out as r (32) || s (32) || v (1), v in 0..3

// compactRecoveryOffset is the header byte base of a compact signature for
// an uncompressed key.
const compactRecoveryOffset = 27

// PrivateKey wraps secp256k1 private key
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GeneratePrivateKey creates a new random private key.
func GeneratePrivateKey() *PrivateKey {
	for {
		key := secp256k1.PrivKeyFromBytes(frand.Bytes(32))
		if !key.Key.IsZero() {
			return &PrivateKey{key: key}
		}
	}
}

// ParsePrivateKeyWIF parses a WIF-encoded private key
func ParsePrivateKeyWIF(wif string) (*PrivateKey, error) {
	decoded, err := decodeWIF(wif)
	if err != nil {
		return nil, err
	}

	return PrivateKeyFromBytes(decoded)
}

// ParsePrivateKeyHex parses a hex private key, with or without "0x".
func ParsePrivateKeyHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("malformed private key hex: %w", err)
	}
	return PrivateKeyFromBytes(b)
}

// ParsePrivateKey accepts either hex or WIF.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) == 64 {
		if _, err := hex.DecodeString(trimmed); err == nil {
			return ParsePrivateKeyHex(trimmed)
		}
	}
	return ParsePrivateKeyWIF(s)
}

// PrivateKeyFromBytes creates a private key from raw bytes
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(keyBytes); overflow || scalar.IsZero() {
		return nil, errors.New("private key out of range")
	}

	key := secp256k1.NewPrivateKey(&scalar)
	return &PrivateKey{key: key}, nil
}

// Sign creates a recoverable ECDSA signature over hash.
func (pk *PrivateKey) Sign(hash types.H256) (types.H520, error) {
	compact := ecdsa.SignCompact(pk.key, hash[:], false)
	return fromCompact(compact)
}

// PublicKey derives the uncompressed public key
func (pk *PrivateKey) PublicKey() types.H512 {
	var out types.H512
	copy(out[:], pk.key.PubKey().SerializeUncompressed()[1:])
	return out
}

// Bytes returns the raw 32-byte private key
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// RecoverPublicKey recovers the signer's public key from a signature and
// the hash it signs.
func RecoverPublicKey(hash types.H256, sig types.H520) (types.H512, error) {
	var out types.H512

	compact, err := toCompact(sig)
	if err != nil {
		return out, err
	}

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return out, fmt.Errorf("failed to recover public key: %w", err)
	}

	copy(out[:], pub.SerializeUncompressed()[1:])
	return out, nil
}

// VerifySignature reports whether sig over hash was produced by pub.
func VerifySignature(pub types.H512, hash types.H256, sig types.H520) bool {
	recovered, err := RecoverPublicKey(hash, sig)
	if err != nil {
		return false
	}
	return recovered == pub
}

// fromCompact converts the [27+v] || r || s layout to r || s || v.
func fromCompact(compact []byte) (types.H520, error) {
	var sig types.H520
	if len(compact) != 65 {
		return sig, fmt.Errorf("compact signature must be 65 bytes, got %d", len(compact))
	}
	v := compact[0] - compactRecoveryOffset
	if v > 3 {
		return sig, fmt.Errorf("unexpected compact signature header 0x%02x", compact[0])
	}
	copy(sig[:64], compact[1:])
	sig[64] = v
	return sig, nil
}

// toCompact converts r || s || v to the [27+v] || r || s layout.
func toCompact(sig types.H520) ([]byte, error) {
	v := sig[64]
	if v > 3 {
		return nil, fmt.Errorf("invalid recovery id %d", v)
	}
	compact := make([]byte, 65)
	compact[0] = compactRecoveryOffset + v
	copy(compact[1:], sig[:64])
	return compact, nil
}

// WIF version bytes.
const (
	wifMainnet = 0x80
	wifTestnet = 0xef
)

// decodeWIF returns the 32-byte secret of a WIF string. A trailing
// compression flag is accepted and dropped, since keys are always used
// uncompressed here.
func decodeWIF(wif string) ([]byte, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("malformed WIF: %w", err)
	}
	if version != wifMainnet && version != wifTestnet {
		return nil, fmt.Errorf("invalid WIF version byte: 0x%02x", version)
	}
	switch {
	case len(payload) == 32:
		return payload, nil
	case len(payload) == 33 && payload[32] == 0x01:
		return payload[:32], nil
	default:
		return nil, fmt.Errorf("invalid WIF payload length %d", len(payload))
	}
}

// EncodeWIF renders a 32-byte secret as an uncompressed-key WIF string.
func EncodeWIF(privateKey []byte, testnet bool) (string, error) {
	if len(privateKey) != 32 {
		return "", errors.New("private key must be 32 bytes")
	}
	version := byte(wifMainnet)
	if testnet {
		version = wifTestnet
	}
	return base58.CheckEncode(privateKey, version), nil
}
