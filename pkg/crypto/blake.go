// Package crypto implements the hash engine and recoverable secp256k1
// signatures used for transaction hashing, signing and address derivation.
//
// All hashes are BLAKE2b with different digest sizes:
//   - Blake256: unkeyed 256-bit hash, identifies transactions and parcels
//   - Blake256WithKey: 256-bit hash keyed with a 128-bit key, used for
//     signing hashes and asset addresses so the same input under different
//     keys gives unrelated digests
//   - Blake128: unkeyed 128-bit hash, derives signing keys from tag bytes
//   - Blake160: unkeyed 160-bit hash, derives account ids from public keys
//
// The functions are pure and safe for concurrent use.
package crypto

import (
	"hash"

	blake2b "github.com/minio/blake2b-simd"

	"github.com/suffix-labs/shardtx/pkg/types"
)

// blake2bNew creates a BLAKE2b hash with the given digest size and
// optional key. The key is a real BLAKE2b key (it changes the initial
// state and prepends a key block), not a personalization.
func blake2bNew(size uint8, key []byte) hash.Hash {
	h, err := blake2b.New(&blake2b.Config{
		Size: size,
		Key:  key,
	})
	if err != nil {
		// Only reachable with an invalid size or an oversized key, both
		// of which are fixed at compile time here.
		panic("crypto: blake2b config: " + err.Error())
	}
	return h
}

func sum(size uint8, key []byte, data []byte) []byte {
	h := blake2bNew(size, key)
	h.Write(data)
	return h.Sum(nil)
}

// Blake256 returns the unkeyed BLAKE2b-256 digest of data.
func Blake256(data []byte) types.H256 {
	var out types.H256
	copy(out[:], sum(32, nil, data))
	return out
}

// Blake256WithKey returns the BLAKE2b-256 digest of data keyed with key.
func Blake256WithKey(data []byte, key types.H128) types.H256 {
	var out types.H256
	copy(out[:], sum(32, key[:], data))
	return out
}

// Blake128 returns the unkeyed BLAKE2b-128 digest of data.
func Blake128(data []byte) types.H128 {
	var out types.H128
	copy(out[:], sum(16, nil, data))
	return out
}

// Blake160 returns the unkeyed BLAKE2b-160 digest of data.
func Blake160(data []byte) types.H160 {
	var out types.H160
	copy(out[:], sum(20, nil, data))
	return out
}

// AccountID derives the account id of a public key.
func AccountID(pub types.H512) types.H160 {
	return Blake160(pub[:])
}
