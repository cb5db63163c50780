// Package address derives asset and asset-scheme addresses from
// transaction hashes and encodes platform (account) addresses.
//
// Asset addresses are 256-bit values whose first four bytes are a
// self-describing prefix:
//
//	0x53 0x00 <shard id, big-endian 16 bits>   asset scheme
//	0x41 0x00 <shard id, big-endian 16 bits>   asset
//
// The remaining 28 bytes come from BLAKE2b-256 of the transaction hash
// keyed with a fixed 128-bit key.
package address

import (
	"encoding/binary"

	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// Type markers written in the first byte of a derived address.
const (
	SchemePrefix byte = 0x53 // 'S'
	AssetPrefix  byte = 0x41 // 'A'
)

// schemeKey is the fixed key for scheme address derivation: 00*8 ff*8.
var schemeKey = types.H128{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// assetKey returns the key for the asset created at output index: eight
// zero bytes followed by the big-endian index. Index 0 yields the all-zero
// key used by single-output transactions.
func assetKey(index uint64) types.H128 {
	var key types.H128
	binary.BigEndian.PutUint64(key[8:], index)
	return key
}

// AssetSchemeAddress derives the address of the asset scheme created by the
// transaction with the given hash.
func AssetSchemeAddress(txHash types.H256, shardID uint16) types.H256 {
	return derive(txHash, schemeKey, SchemePrefix, shardID)
}

// AssetAddress derives the address (asset type) of the asset created at
// output index of the transaction with the given hash.
func AssetAddress(txHash types.H256, index uint64, shardID uint16) types.H256 {
	return derive(txHash, assetKey(index), AssetPrefix, shardID)
}

func derive(txHash types.H256, key types.H128, marker byte, shardID uint16) types.H256 {
	full := crypto.Blake256WithKey(txHash[:], key)
	full[0] = marker
	full[1] = 0x00
	binary.BigEndian.PutUint16(full[2:4], shardID)
	return full
}

// ShardID reads the shard id embedded in a derived address.
func ShardID(addr types.H256) uint16 {
	return binary.BigEndian.Uint16(addr[2:4])
}

// IsSchemeAddress reports whether addr carries the scheme prefix.
func IsSchemeAddress(addr types.H256) bool {
	return addr[0] == SchemePrefix && addr[1] == 0x00
}

// IsAssetAddress reports whether addr carries the asset prefix.
func IsAssetAddress(addr types.H256) bool {
	return addr[0] == AssetPrefix && addr[1] == 0x00
}
